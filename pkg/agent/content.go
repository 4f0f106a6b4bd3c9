package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

// OutlineOptions shape outline generation.
type OutlineOptions struct {
	TargetSlides int // content slides, excluding title and closing; 0 = model's choice
	Tone         types.Tone
	Audience     string
}

// ContentConfig holds content stage configuration.
type ContentConfig struct {
	Concurrency int // parallel slide requests
	SlideTokens int // token budget per slide
}

// DefaultContentConfig returns default configuration.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{Concurrency: 4, SlideTokens: 600}
}

type outlineResponse struct {
	Title                    string            `json:"title"`
	Sections                 []sectionResponse `json:"sections" validate:"min=1"`
	EstimatedDurationMinutes int               `json:"estimatedDurationMinutes"`
}

type sectionResponse struct {
	Title      string   `json:"title"`
	Points     []string `json:"points"`
	SlideCount int      `json:"slideCount" jsonschema:"minimum=1"`
	HasVisuals bool     `json:"hasVisuals"`
}

func (r outlineResponse) outline(tone types.Tone) types.Outline {
	o := types.Outline{
		Title:                    strings.TrimSpace(r.Title),
		Tone:                     tone,
		EstimatedDurationMinutes: r.EstimatedDurationMinutes,
	}
	for i, s := range r.Sections {
		sec := types.OutlineSection{
			Title:      strings.TrimSpace(s.Title),
			Points:     dedupePoints(s.Points),
			SlideCount: max(s.SlideCount, 1),
			HasVisuals: s.HasVisuals,
		}
		if sec.Title == "" {
			if len(sec.Points) == 0 {
				continue
			}
			sec.Title = fmt.Sprintf("Part %d", i+1)
		}
		o.Sections = append(o.Sections, sec)
	}
	if len(o.Sections) > types.MaxTotalSlides {
		o.Sections = o.Sections[:types.MaxTotalSlides]
	}
	o.Recount()
	return o
}

// ContentAgent plans the outline and writes per-slide content.
type ContentAgent struct {
	recorder
	gen llm.Generator
	cfg ContentConfig
}

// NewContentAgent creates a content stage.
func NewContentAgent(gen llm.Generator, tasks *tasklog.Log, logger zerolog.Logger, cfg ContentConfig) *ContentAgent {
	def := DefaultContentConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.SlideTokens <= 0 {
		cfg.SlideTokens = def.SlideTokens
	}
	return &ContentAgent{
		recorder: newRecorder(types.TaskContent, tasks, logger),
		gen:      gen,
		cfg:      cfg,
	}
}

// GenerateOutline asks the model for an outline, merges research into it and
// fits it to the target slide count. When the model fails and research has
// key points, an outline is synthesized from them and a warning returned.
func (a *ContentAgent) GenerateOutline(ctx context.Context, topic string, research types.TopicResearch, opts OutlineOptions) (types.Outline, []string, error) {
	if !opts.Tone.Valid() {
		opts.Tone = types.ToneFormal
	}
	task := a.start("generate-outline", map[string]any{
		"topic":        topic,
		"targetSlides": opts.TargetSlides,
		"tone":         opts.Tone,
		"keyPoints":    len(research.KeyPoints),
	})

	var (
		outline  types.Outline
		warnings []string
	)
	resp, err := llm.Structured[outlineResponse](ctx, a.gen, buildOutlinePrompt(topic, research, opts))
	switch {
	case err == nil:
		outline = resp.outline(opts.Tone)
	case ctx.Err() != nil:
		aerr := stageError(StageOutline, "outline generation canceled", err)
		a.finish(task, nil, aerr)
		return types.Outline{}, nil, aerr
	case len(research.KeyPoints) > 0:
		a.logger.Warn().Err(err).Msg("outline from model unusable, synthesizing from research")
		warnings = append(warnings, fmt.Sprintf("outline generation failed (%v); outline synthesized from research", err))
		outline = OutlineFromResearch(topic, research, opts.Tone)
	default:
		aerr := stageError(StageOutline, "no usable outline", err)
		a.finish(task, nil, aerr)
		return types.Outline{}, nil, aerr
	}

	outline = MergeResearch(outline, research)

	target := outline.SumSlideCounts()
	if opts.TargetSlides > 0 {
		target = opts.TargetSlides
	}
	target = clampTarget(target)
	if len(outline.Sections) > target {
		warnings = append(warnings, fmt.Sprintf("outline has %d sections, more than the %d slides requested", len(outline.Sections), target))
	}
	outline = FitSlideCount(outline, target)
	outline.EstimatedDurationMinutes = EstimateDuration(outline)

	a.finish(task, map[string]any{
		"title":       outline.Title,
		"sections":    len(outline.Sections),
		"totalSlides": outline.TotalSlides,
	}, nil)
	return outline, warnings, nil
}

// GenerateSlideContents returns exactly 1 + Σ slideCount + 1 markdown
// strings: a title slide, one per outline slot and a closing slide. A slide
// whose request fails falls back to a bullet rendering of its points and adds
// a warning; only cancellation aborts.
func (a *ContentAgent) GenerateSlideContents(ctx context.Context, outline types.Outline) ([]string, []string, error) {
	slots := outline.Slots()
	task := a.start("generate-slide-contents", map[string]any{
		"title": outline.Title,
		"slots": len(slots),
	})

	chunks := make([][][]string, len(outline.Sections))
	for i, s := range outline.Sections {
		chunks[i] = ChunkPoints(s.Points, s.SlideCount)
	}

	contents := make([]string, len(slots))
	notes := make([]string, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i, slot := range slots {
		switch slot.Kind {
		case types.SlotTitle:
			contents[i] = TitleSlide(outline)
			continue
		case types.SlotClosing:
			contents[i] = ClosingSlide(outline)
			continue
		}
		section := outline.Sections[slot.Section]
		g.Go(func() error {
			text, note, err := a.slideContent(gctx, outline, section, slot, chunks[slot.Section][slot.Part])
			if err != nil {
				return err
			}
			contents[i] = text
			if note != "" {
				notes[i] = fmt.Sprintf("slide %d: %s", i+1, note)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		aerr := stageError(StageContent, "slide content generation aborted", err)
		a.finish(task, nil, aerr)
		return nil, nil, aerr
	}

	var warnings []string
	for _, n := range notes {
		if n != "" {
			warnings = append(warnings, n)
		}
	}
	a.finish(task, map[string]any{"slides": len(contents), "fallbacks": len(warnings)}, nil)
	return contents, warnings, nil
}

func (a *ContentAgent) slideContent(ctx context.Context, outline types.Outline, section types.OutlineSection, slot types.SlideSlot, points []string) (string, string, error) {
	title := section.Title
	if slot.Parts > 1 {
		title = fmt.Sprintf("%s (%d/%d)", section.Title, slot.Part+1, slot.Parts)
	}

	// A slot past the last point still goes to the model, with the whole
	// section as context.
	prompt := buildSlidePrompt(outline, section, title, points)
	fallback := func() string { return BulletSlide(title, points) }
	if len(points) == 0 {
		prompt = buildContinuationPrompt(outline, section, title, slot)
		fallback = func() string { return ContinuationSlide(title, section.Title) }
	}

	text, err := a.gen.GenerateText(ctx, prompt, a.cfg.SlideTokens)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		a.logger.Warn().Err(err).Str("slide", title).Msg("slide content fallback")
		return fallback(), fmt.Sprintf("content generation failed (%v); used fallback content", err), nil
	}

	text = normalizeSlideMarkdown(text, title)
	if text == "" {
		a.logger.Warn().Str("slide", title).Msg("empty slide content, using fallback")
		return fallback(), "model returned no usable content; used fallback content", nil
	}
	return text, "", nil
}

// normalizeSlideMarkdown strips code fences around the whole answer and makes
// sure the slide starts with a heading. It returns "" when nothing but
// headings remain.
func normalizeSlideMarkdown(text, title string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) > 6 {
		text = strings.TrimSpace(text[3 : len(text)-3])
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], " #") {
			text = strings.TrimSpace(text[nl+1:]) // language tag
		}
	}

	hasBody := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			hasBody = true
			break
		}
	}
	if !hasBody {
		return ""
	}
	if !strings.HasPrefix(text, "#") {
		text = "## " + title + "\n\n" + text
	}
	return text
}

// BulletSlide renders points as a literal bullet list under title.
func BulletSlide(title string, points []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	for _, p := range points {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ContinuationSlide is the fallback for a slot whose chunk has no points.
func ContinuationSlide(title, section string) string {
	return fmt.Sprintf("## %s\n\nContinued discussion of %s.", title, section)
}

// TitleSlide is the deterministic opening slide.
func TitleSlide(o types.Outline) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", o.Title)
	titles := make([]string, 0, len(o.Sections))
	for _, s := range o.Sections {
		titles = append(titles, s.Title)
	}
	if len(titles) > 0 {
		fmt.Fprintf(&sb, "*%s*", strings.Join(titles, " · "))
	} else {
		sb.WriteString("*An overview*")
	}
	return sb.String()
}

// ClosingSlide is the deterministic final slide.
func ClosingSlide(o types.Outline) string {
	var sb strings.Builder
	sb.WriteString("# Thank You\n\n")
	if len(o.Sections) > 0 {
		sb.WriteString("### Key Takeaways\n\n")
		for _, s := range o.Sections {
			fmt.Fprintf(&sb, "- %s\n", s.Title)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("**Questions?**")
	return sb.String()
}
