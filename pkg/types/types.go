// Package types defines the core data model of the slide generation engine.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Tone is the voice an outline is written in.
type Tone string

const (
	ToneFormal    Tone = "formal"
	ToneCasual    Tone = "casual"
	ToneTechnical Tone = "technical"
)

// Valid reports whether t is one of the known tones.
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneCasual, ToneTechnical:
		return true
	}
	return false
}

// ParseTone maps free-form model or user input onto a Tone.
// Unknown values map to ToneFormal.
func ParseTone(s string) Tone {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return ToneFormal
}

// LayoutType is an enumerated visual arrangement for one slide.
type LayoutType string

const (
	LayoutTitle         LayoutType = "title-slide"
	LayoutContentOnly   LayoutType = "content-only"
	LayoutBulletList    LayoutType = "bullet-list"
	LayoutTwoColumn     LayoutType = "two-column"
	LayoutImageLeft     LayoutType = "image-left"
	LayoutImageRight    LayoutType = "image-right"
	LayoutFullImage     LayoutType = "full-image"
	LayoutQuote         LayoutType = "quote"
	LayoutCode          LayoutType = "code"
	LayoutSectionHeader LayoutType = "section-header"
	LayoutClosing       LayoutType = "closing"
)

// Limits shared by the outline and request validators.
const (
	MinTotalSlides = 3
	MaxTotalSlides = 50

	MaxDurationMinutes = 240
)

// TopicResearch is the structured topic summary produced by the research stage.
type TopicResearch struct {
	KeyPoints  []string `json:"keyPoints" validate:"dive,required"`
	Confidence float64  `json:"confidence" validate:"gte=0,lte=1"`
}

// EmptyResearch is used when research is unavailable.
func EmptyResearch() TopicResearch {
	return TopicResearch{KeyPoints: []string{}, Confidence: 0}
}

// OutlineSection groups related points mapped to one or more slides.
type OutlineSection struct {
	Title      string   `json:"title"`
	Points     []string `json:"points"`
	SlideCount int      `json:"slideCount"`
	HasVisuals bool     `json:"hasVisuals"`
}

// Outline is the structured plan content generation expands into slides.
type Outline struct {
	Title                    string           `json:"title"`
	Sections                 []OutlineSection `json:"sections"`
	TotalSlides              int              `json:"totalSlides"`
	EstimatedDurationMinutes int              `json:"estimatedDurationMinutes"`
	Tone                     Tone             `json:"tone"`
}

// SumSlideCounts returns Σ section.SlideCount.
func (o *Outline) SumSlideCounts() int {
	sum := 0
	for _, s := range o.Sections {
		sum += s.SlideCount
	}
	return sum
}

// Recount restores TotalSlides == Σ section.SlideCount.
func (o *Outline) Recount() {
	o.TotalSlides = o.SumSlideCounts()
}

// Clone returns a deep copy of the outline.
func (o Outline) Clone() Outline {
	out := o
	out.Sections = make([]OutlineSection, len(o.Sections))
	for i, s := range o.Sections {
		s.Points = append([]string(nil), s.Points...)
		out.Sections[i] = s
	}
	return out
}

// SlotKind identifies what a deck position holds.
type SlotKind string

const (
	SlotTitle   SlotKind = "title"
	SlotSection SlotKind = "section"
	SlotClosing SlotKind = "closing"
)

// SlideSlot maps one deck position onto the outline.
type SlideSlot struct {
	Kind    SlotKind `json:"kind"`
	Section int      `json:"section"` // -1 for title and closing slots
	Part    int      `json:"part"`    // 0-based chunk index within the section
	Parts   int      `json:"parts"`   // section.SlideCount
}

// Slots lays out the deck: one title slot, every section expanded into
// SlideCount slots in order, then one closing slot.
func (o *Outline) Slots() []SlideSlot {
	slots := make([]SlideSlot, 0, o.SumSlideCounts()+2)
	slots = append(slots, SlideSlot{Kind: SlotTitle, Section: -1})
	for i, s := range o.Sections {
		for p := 0; p < s.SlideCount; p++ {
			slots = append(slots, SlideSlot{Kind: SlotSection, Section: i, Part: p, Parts: s.SlideCount})
		}
	}
	slots = append(slots, SlideSlot{Kind: SlotClosing, Section: -1})
	return slots
}

// AssetType is the kind of visual element.
type AssetType string

const (
	AssetImage   AssetType = "image"
	AssetIcon    AssetType = "icon"
	AssetChart   AssetType = "chart"
	AssetDiagram AssetType = "diagram"
)

// Placement describes where an asset sits on a slide.
type Placement struct {
	Position string `json:"position"` // left | right | top | bottom | center | background
	Width    string `json:"width"`
	Height   string `json:"height"`
	X        *int   `json:"x,omitempty"`
	Y        *int   `json:"y,omitempty"`
}

// AssetSize is the intrinsic size of an asset.
type AssetSize struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Unit   string `json:"unit"`
}

// Asset is a visual element attached to a slide.
type Asset struct {
	Type        AssetType `json:"type"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description"`
	Placement   Placement `json:"placement"`
	Size        AssetSize `json:"size"`
	Alt         string    `json:"alt"`
}

// ThemeColors is the palette of a theme.
type ThemeColors struct {
	Primary       string `json:"primary" yaml:"primary"`
	Secondary     string `json:"secondary" yaml:"secondary"`
	Accent        string `json:"accent" yaml:"accent"`
	Background    string `json:"background" yaml:"background"`
	Text          string `json:"text" yaml:"text"`
	TextSecondary string `json:"textSecondary" yaml:"textSecondary"`
	Border        string `json:"border,omitempty" yaml:"border,omitempty"`
}

// HeadingSizes holds heading font sizes.
type HeadingSizes struct {
	H1 string `json:"h1" yaml:"h1"`
	H2 string `json:"h2" yaml:"h2"`
	H3 string `json:"h3" yaml:"h3"`
}

// FontWeights holds the weight scale.
type FontWeights struct {
	Normal int `json:"normal" yaml:"normal"`
	Medium int `json:"medium" yaml:"medium"`
	Bold   int `json:"bold" yaml:"bold"`
}

// Typography describes the fonts of a theme.
type Typography struct {
	FontFamily   string       `json:"fontFamily" yaml:"fontFamily"`
	HeadingFont  string       `json:"headingFont,omitempty" yaml:"headingFont,omitempty"`
	BaseSize     string       `json:"baseSize" yaml:"baseSize"`
	LineHeight   float64      `json:"lineHeight" yaml:"lineHeight"`
	HeadingSizes HeadingSizes `json:"headingSizes" yaml:"headingSizes"`
	Weights      FontWeights  `json:"weights" yaml:"weights"`
}

// Spacing is the spacing scale of a theme.
type Spacing struct {
	Base   string `json:"base" yaml:"base"`
	Small  string `json:"small" yaml:"small"`
	Medium string `json:"medium" yaml:"medium"`
	Large  string `json:"large" yaml:"large"`
	XLarge string `json:"xlarge" yaml:"xlarge"`
}

// Effects are optional visual toggles.
type Effects struct {
	Shadows      bool   `json:"shadows" yaml:"shadows"`
	Gradients    bool   `json:"gradients" yaml:"gradients"`
	BorderRadius string `json:"borderRadius" yaml:"borderRadius"`
	Animations   bool   `json:"animations" yaml:"animations"`
}

// Theme is a bundle of colors, typography, spacing and effects applied to a
// whole deck. Themes are values; once bound to a DesignDecision they are not
// modified.
type Theme struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Colors     ThemeColors `json:"colors" yaml:"colors"`
	Typography Typography  `json:"typography" yaml:"typography"`
	Spacing    Spacing     `json:"spacing" yaml:"spacing"`
	Effects    *Effects    `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// AssetStrategy tells asset resolution what kind of visuals to look for.
type AssetStrategy struct {
	PreferImages  bool     `json:"preferImages"`
	PreferIcons   bool     `json:"preferIcons"`
	AllowCharts   bool     `json:"allowCharts"`
	Style         string   `json:"style"`
	Keywords      []string `json:"keywords,omitempty"`
	MaxPerSlide   int      `json:"maxPerSlide"`
	SkipTitle     bool     `json:"skipTitle"`
	VisualIndexes []int    `json:"visualIndexes,omitempty"` // slides whose section declares visuals
}

// PreferredTypes returns asset types in preference order.
func (s AssetStrategy) PreferredTypes() []AssetType {
	var out []AssetType
	if s.PreferImages {
		out = append(out, AssetImage)
	}
	if s.PreferIcons {
		out = append(out, AssetIcon)
	}
	if s.AllowCharts {
		out = append(out, AssetChart, AssetDiagram)
	}
	if len(out) == 0 {
		out = append(out, AssetIcon)
	}
	return out
}

// DesignDecision is computed once per generation and consumed by asset
// resolution and composition.
type DesignDecision struct {
	Theme         Theme              `json:"theme"`
	LayoutMap     map[int]LayoutType `json:"layoutMap"`
	AssetStrategy AssetStrategy      `json:"assetStrategy"`
}

// LayoutFor returns the layout for slide index i, defaulting to content-only.
func (d DesignDecision) LayoutFor(i int) LayoutType {
	if l, ok := d.LayoutMap[i]; ok && l != "" {
		return l
	}
	return LayoutContentOnly
}

// SlideMetadata is per-slide bookkeeping.
type SlideMetadata struct {
	Order       int      `json:"order"`
	Duration    int      `json:"duration,omitempty"` // seconds
	Transitions string   `json:"transitions,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Slide is the final composed unit of a deck.
type Slide struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Layout   LayoutType    `json:"layout"`
	Theme    Theme         `json:"theme"`
	Assets   []Asset       `json:"assets,omitempty"`
	Metadata SlideMetadata `json:"metadata"`
}

// TaskType identifies the stage an AgentTask belongs to.
type TaskType string

const (
	TaskResearch  TaskType = "research"
	TaskContent   TaskType = "content"
	TaskDesign    TaskType = "design"
	TaskAsset     TaskType = "asset"
	TaskGenerator TaskType = "generator"
)

// TaskStatus is the lifecycle state of an AgentTask.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// AgentTask is an audit record of one stage invocation.
type AgentTask struct {
	ID        string     `json:"id"`
	Type      TaskType   `json:"type"`
	Operation string     `json:"operation"`
	Status    TaskStatus `json:"status"`
	Input     any        `json:"input,omitempty"`
	Output    any        `json:"output,omitempty"`
	Error     string     `json:"error,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// Duration returns EndTime-StartTime, or zero while the task is open.
func (t AgentTask) Duration() time.Duration {
	if t.EndTime == nil {
		return 0
	}
	return t.EndTime.Sub(t.StartTime)
}

// GenerationMetadata describes one pipeline run.
type GenerationMetadata struct {
	ID                 string           `json:"id"`
	Topic              string           `json:"topic"`
	Tone               Tone             `json:"tone"`
	Audience           string           `json:"audience,omitempty"`
	Model              string           `json:"model,omitempty"`
	GeneratedAt        time.Time        `json:"generatedAt"`
	ElapsedMillis      int64            `json:"elapsedMs"`
	StageMillis        map[string]int64 `json:"stageMs"`
	SlideCount         int              `json:"slideCount"`
	AssetCount         int              `json:"assetCount"`
	ResearchConfidence float64          `json:"researchConfidence"`
	Warnings           []string         `json:"warnings"`
}

// GenerationResult is the terminal artifact of the pipeline.
type GenerationResult struct {
	Slides   []Slide            `json:"slides"`
	Outline  Outline            `json:"outline"`
	Theme    Theme              `json:"theme"`
	Metadata GenerationMetadata `json:"metadata"`
	HTML     string             `json:"html"`
}

// SlideGenerationRequest is the single input of a generation.
type SlideGenerationRequest struct {
	Topic           string `json:"topic"`
	SlideCount      int    `json:"slideCount,omitempty"`
	Tone            Tone   `json:"tone,omitempty"`
	Audience        string `json:"audience,omitempty"`
	IncludeImages   bool   `json:"includeImages,omitempty"`
	ThemePreference string `json:"themePreference,omitempty"`
	// DurationMinutes, when set, rescales the outline to fit the talk length.
	DurationMinutes int `json:"durationMinutes,omitempty"`
}

// Normalize trims free text and defaults the tone.
func (r SlideGenerationRequest) Normalize() SlideGenerationRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Audience = strings.TrimSpace(r.Audience)
	r.ThemePreference = strings.TrimSpace(r.ThemePreference)
	if r.Tone == "" {
		r.Tone = ToneFormal
	}
	return r
}

// Validate checks the request contract.
func (r SlideGenerationRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if r.SlideCount != 0 && (r.SlideCount < 1 || r.SlideCount > MaxTotalSlides) {
		return fmt.Errorf("slideCount must be between 1 and %d, got %d", MaxTotalSlides, r.SlideCount)
	}
	if r.Tone != "" && !r.Tone.Valid() {
		return fmt.Errorf("unknown tone %q", r.Tone)
	}
	if r.DurationMinutes < 0 || r.DurationMinutes > MaxDurationMinutes {
		return fmt.Errorf("durationMinutes must be between 0 and %d, got %d", MaxDurationMinutes, r.DurationMinutes)
	}
	return nil
}
