package agent

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cpunion/slidegen/pkg/design"
	"github.com/cpunion/slidegen/pkg/render"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

// UntitledSlide is the title given to slides without any text line.
const UntitledSlide = "Untitled Slide"

// GeneratorConfig holds composition configuration.
type GeneratorConfig struct {
	MaxAssetsPerSlide int
	MaxWordsPerSlide  int // above this a slide gets a warning
}

// DefaultGeneratorConfig returns default configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxAssetsPerSlide: design.DefaultMaxAssetsPerSlide,
		MaxWordsPerSlide:  150,
	}
}

// Composition is the output of the composition stage.
type Composition struct {
	Slides   []types.Slide
	HTML     string
	Warnings []string
}

// GeneratorAgent assembles, validates and renders slides.
type GeneratorAgent struct {
	recorder
	cfg GeneratorConfig
}

// NewGeneratorAgent creates a composition stage.
func NewGeneratorAgent(tasks *tasklog.Log, logger zerolog.Logger, cfg GeneratorConfig) *GeneratorAgent {
	def := DefaultGeneratorConfig()
	if cfg.MaxAssetsPerSlide <= 0 {
		cfg.MaxAssetsPerSlide = def.MaxAssetsPerSlide
	}
	if cfg.MaxWordsPerSlide <= 0 {
		cfg.MaxWordsPerSlide = def.MaxWordsPerSlide
	}
	return &GeneratorAgent{
		recorder: newRecorder(types.TaskGenerator, tasks, logger),
		cfg:      cfg,
	}
}

// Compose builds and validates the slides and renders the deck document.
// Validation problems that leave the deck usable come back as warnings.
func (a *GeneratorAgent) Compose(outline types.Outline, contents []string, decision types.DesignDecision, assetMap map[int][]types.Asset) (Composition, error) {
	task := a.start("compose", map[string]any{"title": outline.Title, "slides": len(contents)})

	slides := a.BuildSlides(outline, contents, decision, assetMap)
	warnings, err := a.ValidateSlides(slides)
	if err != nil {
		a.finish(task, map[string]any{"warnings": warnings}, err)
		return Composition{}, err
	}

	html := render.Document(outline.Title, decision.Theme, slides)
	a.finish(task, map[string]any{"slides": len(slides), "warnings": len(warnings), "htmlBytes": len(html)}, nil)
	return Composition{Slides: slides, HTML: html, Warnings: warnings}, nil
}

// BuildSlides turns content strings into slides.
func (a *GeneratorAgent) BuildSlides(outline types.Outline, contents []string, decision types.DesignDecision, assetMap map[int][]types.Asset) []types.Slide {
	slots := outline.Slots()
	last := len(contents) - 1
	slides := make([]types.Slide, 0, len(contents))
	for i, content := range contents {
		title, body := ExtractTitle(content)
		slide := types.Slide{
			ID:      uuid.NewString(),
			Title:   title,
			Content: body,
			Layout:  decision.LayoutFor(i),
			Theme:   decision.Theme,
			Metadata: types.SlideMetadata{
				Order:       i + 1,
				Transitions: "slide",
			},
		}
		if as := assetMap[i]; len(as) > 0 {
			slide.Assets = append([]types.Asset(nil), as[:min(len(as), a.cfg.MaxAssetsPerSlide)]...)
		}

		var slot *types.SlideSlot
		if i < len(slots) && slots[i].Kind == types.SlotSection && i != 0 && i != last {
			slot = &slots[i]
		}
		switch {
		case i == 0:
			slide.Metadata.Tags = []string{"title", "intro"}
			slide.Metadata.Transitions = "fade"
			slide.Metadata.Duration = 30
			slide.Metadata.Notes = fmt.Sprintf("Introduce %s and outline the %d sections.", outline.Title, len(outline.Sections))
		case i == last:
			slide.Metadata.Tags = []string{"conclusion", "closing"}
			slide.Metadata.Transitions = "fade"
			slide.Metadata.Duration = 30
			slide.Metadata.Notes = "Recap the key takeaways and invite questions."
		case slot != nil:
			sec := outline.Sections[slot.Section]
			slug := SectionSlug(sec.Title)
			if slug == "" {
				slug = fmt.Sprintf("section-%d", slot.Section+1)
			}
			slide.Metadata.Tags = []string{slug}
			if sec.HasVisuals {
				slide.Metadata.Tags = append(slide.Metadata.Tags, "visual")
			}
			slide.Metadata.Duration = slideSeconds(outline.Tone)
			chunk := ChunkPoints(sec.Points, sec.SlideCount)[slot.Part]
			if len(chunk) > 0 {
				slide.Metadata.Notes = "Talking points: " + strings.Join(chunk, "; ")
			}
		default:
			slide.Metadata.Duration = slideSeconds(outline.Tone)
		}
		slides = append(slides, slide)
	}
	return slides
}

func slideSeconds(tone types.Tone) int {
	mps, ok := minutesPerSlide[tone]
	if !ok {
		mps = minutesPerSlide[types.ToneFormal]
	}
	return int(mps * 60)
}

// ValidateSlides fails only when the deck is unusable: fewer than three
// slides or a slide without content. Everything else is a warning.
func (a *GeneratorAgent) ValidateSlides(slides []types.Slide) ([]string, error) {
	if len(slides) < types.MinTotalSlides {
		return nil, &AgentError{
			Stage:   StageComposition,
			Message: fmt.Sprintf("deck has %d slides, need at least %d", len(slides), types.MinTotalSlides),
		}
	}

	var warnings []string
	for i, s := range slides {
		if strings.TrimSpace(s.Content) == "" {
			return warnings, &AgentError{
				Stage:   StageComposition,
				Message: fmt.Sprintf("slide %d has no content", i+1),
				Details: s.Title,
			}
		}
		if i > 0 && s.Layout != types.LayoutTitle {
			if t := strings.TrimSpace(s.Title); t == "" || t == UntitledSlide {
				warnings = append(warnings, fmt.Sprintf("slide %d has no title", i+1))
			}
		}
		if n := len(strings.Fields(s.Content)); n > a.cfg.MaxWordsPerSlide {
			warnings = append(warnings, fmt.Sprintf("slide %d has %d words, more than %d", i+1, n, a.cfg.MaxWordsPerSlide))
		}
		if len(s.Assets) > a.cfg.MaxAssetsPerSlide {
			warnings = append(warnings, fmt.Sprintf("slide %d has %d assets, more than %d", i+1, len(s.Assets), a.cfg.MaxAssetsPerSlide))
		}
	}
	return warnings, nil
}

// ExtractTitle returns the first "#" or "##" heading as the title and the
// content without that line. Otherwise the first non-empty line is the title:
// a deeper heading is dropped from the body, plain text stays. Empty content
// is untitled.
func ExtractTitle(content string) (string, string) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "# ") && !strings.HasPrefix(t, "## ") {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(t, "#"))
		if title == "" {
			continue
		}
		rest := append(lines[:i:i], lines[i+1:]...)
		return title, strings.TrimSpace(strings.Join(rest, "\n"))
	}
	for i, line := range lines {
		raw := strings.TrimSpace(line)
		t := strings.TrimSpace(strings.TrimLeft(raw, "#"))
		if t == "" {
			continue
		}
		if strings.HasPrefix(raw, "#") {
			return t, strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
		return t, strings.TrimSpace(content)
	}
	return UntitledSlide, strings.TrimSpace(content)
}
