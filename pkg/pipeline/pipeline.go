// Package pipeline runs a generation request through the stages:
// research, outline, slide contents, design decision, assets and composition.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cpunion/slidegen/pkg/agent"
	"github.com/cpunion/slidegen/pkg/assets"
	"github.com/cpunion/slidegen/pkg/design"
	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

// PhaseDone is reported once a generation succeeds.
const PhaseDone = "done"

// ProgressFunc observes a generation. It must not block.
type ProgressFunc func(phase string, percent int, message string)

type options struct {
	logger           zerolog.Logger
	source           assets.Source
	tasks            *tasklog.Log
	metrics          *Metrics
	engine           *design.Engine
	catalog          *design.Catalog
	maxAssets        int
	assetConcurrency int
	depth            agent.Depth
}

// Option configures a Pipeline.
type Option func(*options)

// WithLogger sets the logger shared by all stages.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// WithAssetSource sets where assets are looked up. Without one no assets are attached.
func WithAssetSource(s assets.Source) Option { return func(o *options) { o.source = s } }

// WithTaskLog shares a task history across pipelines.
func WithTaskLog(l *tasklog.Log) Option { return func(o *options) { o.tasks = l } }

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) Option { return func(o *options) { o.metrics = m } }

// WithEngine replaces the layout rule engine.
func WithEngine(e *design.Engine) Option { return func(o *options) { o.engine = e } }

// WithCatalog replaces the theme catalog.
func WithCatalog(c *design.Catalog) Option { return func(o *options) { o.catalog = c } }

// WithMaxAssetsPerSlide caps attached assets per slide.
func WithMaxAssetsPerSlide(n int) Option { return func(o *options) { o.maxAssets = n } }

// WithAssetConcurrency bounds parallel asset lookups.
func WithAssetConcurrency(n int) Option { return func(o *options) { o.assetConcurrency = n } }

// WithResearchDepth sets how many key points research gathers.
func WithResearchDepth(d agent.Depth) Option { return func(o *options) { o.depth = d } }

// Pipeline owns one instance of every stage. It is safe for concurrent use;
// the task history is the only state shared between requests.
type Pipeline struct {
	gen     llm.Generator
	logger  zerolog.Logger
	metrics *Metrics
	depth   agent.Depth
	tasks   *tasklog.Log

	maxAssets int

	research  *agent.ResearchAgent
	content   *agent.ContentAgent
	design    *agent.DesignAgent
	assets    *agent.AssetAgent
	generator *agent.GeneratorAgent
}

// New constructs the stages once.
func New(gen llm.Generator, opts ...Option) *Pipeline {
	o := options{
		logger:           zerolog.Nop(),
		maxAssets:        design.DefaultMaxAssetsPerSlide,
		assetConcurrency: agent.DefaultAssetConfig().Concurrency,
		depth:            agent.DepthStandard,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tasks == nil {
		o.tasks = tasklog.New(tasklog.DefaultConfig())
	}
	if o.maxAssets <= 0 {
		o.maxAssets = design.DefaultMaxAssetsPerSlide
	}

	return &Pipeline{
		gen:       gen,
		logger:    o.logger,
		metrics:   o.metrics,
		depth:     o.depth,
		tasks:     o.tasks,
		maxAssets: o.maxAssets,
		research:  agent.NewResearchAgent(gen, o.tasks, o.logger),
		content:   agent.NewContentAgent(gen, o.tasks, o.logger, agent.DefaultContentConfig()),
		design:    agent.NewDesignAgent(design.NewDesigner(o.engine, o.catalog), o.tasks, o.logger),
		assets:    agent.NewAssetAgent(o.source, o.tasks, o.logger, agent.AssetConfig{Concurrency: o.assetConcurrency}),
		generator: agent.NewGeneratorAgent(o.tasks, o.logger, agent.GeneratorConfig{MaxAssetsPerSlide: o.maxAssets}),
	}
}

// Catalog returns the theme catalog used for theme selection.
func (p *Pipeline) Catalog() *design.Catalog {
	return p.design.Catalog()
}

// Tasks returns the shared task history.
func (p *Pipeline) Tasks() *tasklog.Log {
	return p.tasks
}

// Generate runs a request to completion.
func (p *Pipeline) Generate(ctx context.Context, req types.SlideGenerationRequest) (*types.GenerationResult, error) {
	return p.GenerateWithProgress(ctx, req, nil)
}

// GenerateWithProgress runs a request and reports fixed checkpoints to fn.
// Any error is a *GenerationError.
func (p *Pipeline) GenerateWithProgress(ctx context.Context, req types.SlideGenerationRequest, fn ProgressFunc) (*types.GenerationResult, error) {
	run := &run{
		p:        p,
		started:  time.Now(),
		progress: fn,
		stageMs:  make(map[string]int64),
	}
	req = req.Normalize()
	run.logger = p.logger.With().Str("topic", req.Topic).Logger()

	if err := req.Validate(); err != nil {
		return nil, run.fail(req.Topic, StageRequest, err)
	}

	result, err := run.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	p.metrics.generation("success")
	run.logger.Info().
		Int("slides", len(result.Slides)).
		Int("warnings", len(result.Metadata.Warnings)).
		Int64("elapsedMs", result.Metadata.ElapsedMillis).
		Msg("generation finished")
	return result, nil
}

type run struct {
	p        *Pipeline
	logger   zerolog.Logger
	started  time.Time
	progress ProgressFunc
	stageMs  map[string]int64
	warnings []string
}

func (r *run) report(phase string, percent int, format string, args ...any) {
	if r.progress != nil {
		r.progress(phase, percent, fmt.Sprintf(format, args...))
	}
}

func (r *run) timed(stage string, start time.Time) {
	d := time.Since(start)
	r.stageMs[stage] = d.Milliseconds()
	r.p.metrics.observeStage(stage, d)
}

func (r *run) warn(stage string, ws ...string) {
	for _, w := range ws {
		r.logger.Warn().Str("stage", stage).Msg(w)
	}
	r.warnings = append(r.warnings, ws...)
	r.p.metrics.fallbacks(stage, len(ws))
}

func (r *run) fail(topic, stage string, err error) error {
	status := "failed"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = "canceled"
	}
	r.p.metrics.generation(status)
	gerr := &GenerationError{Topic: topic, Stage: stage, Err: err, Elapsed: time.Since(r.started)}
	r.logger.Error().Err(err).Str("stage", stage).Dur("elapsed", gerr.Elapsed).Msg("generation failed")
	return gerr
}

func (r *run) generate(ctx context.Context, req types.SlideGenerationRequest) (*types.GenerationResult, error) {
	p := r.p

	r.report(agent.StageResearch, 10, "Researching %s", req.Topic)
	start := time.Now()
	research, err := p.research.Research(ctx, req.Topic, p.depth)
	r.timed(agent.StageResearch, start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, r.fail(req.Topic, agent.StageResearch, err)
		}
		r.warn(agent.StageResearch, fmt.Sprintf("research failed, continuing without it: %v", err))
		research = types.EmptyResearch()
	}
	r.report(agent.StageResearch, 20, "Found %d key points", len(research.KeyPoints))

	r.report(agent.StageOutline, 30, "Planning the outline")
	start = time.Now()
	outline, err := r.outline(ctx, req, research)
	r.timed(agent.StageOutline, start)
	if err != nil {
		return nil, r.fail(req.Topic, agent.StageOutline, err)
	}
	r.report(agent.StageOutline, 40, "Outline has %d sections and %d slides", len(outline.Sections), outline.TotalSlides)

	r.report(agent.StageContent, 50, "Writing %d slides", outline.TotalSlides+2)
	start = time.Now()
	contents, warnings, err := p.content.GenerateSlideContents(ctx, outline)
	r.timed(agent.StageContent, start)
	if err != nil {
		return nil, r.fail(req.Topic, agent.StageContent, err)
	}
	r.warn(agent.StageContent, warnings...)
	r.report(agent.StageContent, 60, "Wrote %d slides", len(contents))

	r.report(agent.StageDesign, 70, "Choosing theme and layouts")
	start = time.Now()
	decision := p.design.Decide(outline, contents, design.DecisionInput{
		Tone:            req.Tone,
		ThemePreference: req.ThemePreference,
		IncludeImages:   req.IncludeImages,
		MaxPerSlide:     p.maxAssets,
	})
	r.timed(agent.StageDesign, start)
	r.report(agent.StageDesign, 75, "Selected the %s theme", decision.Theme.Name)

	r.report(agent.StageAssets, 80, "Finding visual assets")
	start = time.Now()
	assetMap, err := p.assets.BatchFindAssets(ctx, contents, decision.AssetStrategy, p.maxAssets)
	r.timed(agent.StageAssets, start)
	if err != nil {
		return nil, r.fail(req.Topic, agent.StageAssets, err)
	}
	assetCount := 0
	for _, as := range assetMap {
		assetCount += min(len(as), p.maxAssets)
	}
	r.report(agent.StageAssets, 85, "Found %d assets", assetCount)

	r.report(agent.StageComposition, 90, "Composing the deck")
	start = time.Now()
	comp, err := p.generator.Compose(outline, contents, decision, assetMap)
	r.timed(agent.StageComposition, start)
	if err != nil {
		return nil, r.fail(req.Topic, agent.StageComposition, err)
	}
	r.warn(agent.StageComposition, comp.Warnings...)

	elapsed := time.Since(r.started)
	result := &types.GenerationResult{
		Slides:  comp.Slides,
		Outline: outline,
		Theme:   decision.Theme,
		HTML:    comp.HTML,
		Metadata: types.GenerationMetadata{
			ID:                 uuid.NewString(),
			Topic:              req.Topic,
			Tone:               req.Tone,
			Audience:           req.Audience,
			Model:              p.gen.Model(),
			GeneratedAt:        time.Now().UTC(),
			ElapsedMillis:      elapsed.Milliseconds(),
			StageMillis:        r.stageMs,
			SlideCount:         len(comp.Slides),
			AssetCount:         assetCount,
			ResearchConfidence: research.Confidence,
			Warnings:           append([]string{}, r.warnings...),
		},
	}
	r.report(PhaseDone, 100, "Generated %d slides", len(comp.Slides))
	return result, nil
}

// outline generates, repairs and checks the outline. Only an outline without
// sections is fatal; other validation problems become warnings.
func (r *run) outline(ctx context.Context, req types.SlideGenerationRequest, research types.TopicResearch) (types.Outline, error) {
	outline, warnings, err := r.p.content.GenerateOutline(ctx, req.Topic, research, agent.OutlineOptions{
		TargetSlides: req.SlideCount,
		Tone:         req.Tone,
		Audience:     req.Audience,
	})
	if err != nil {
		return types.Outline{}, err
	}
	r.warn(agent.StageOutline, warnings...)

	outline, repairs := agent.RepairOutline(outline, req.Topic)
	r.warn(agent.StageOutline, repairs...)
	if len(outline.Sections) == 0 {
		return types.Outline{}, &agent.AgentError{Stage: agent.StageOutline, Message: "outline has no sections"}
	}
	if v := agent.ValidateOutline(outline); !v.Valid {
		r.warn(agent.StageOutline, v.Errors...)
	}
	outline.EstimatedDurationMinutes = agent.EstimateDuration(outline)
	if req.DurationMinutes > 0 {
		outline = agent.OptimizeForDuration(outline, req.DurationMinutes)
		if outline.TotalSlides > types.MaxTotalSlides {
			outline = agent.FitSlideCount(outline, types.MaxTotalSlides)
			outline.EstimatedDurationMinutes = agent.EstimateDuration(outline)
		}
	}
	return outline, nil
}

// Stats aggregates the task history of every stage.
type Stats struct {
	Overall tasklog.Stats                    `json:"overall"`
	ByStage map[types.TaskType]tasklog.Stats `json:"byStage"`
}

// Stats summarizes the shared task history.
func (p *Pipeline) Stats() Stats {
	by := map[types.TaskType]tasklog.Stats{
		types.TaskResearch:  p.research.Stats(),
		types.TaskContent:   p.content.Stats(),
		types.TaskDesign:    p.design.Stats(),
		types.TaskAsset:     p.assets.Stats(),
		types.TaskGenerator: p.generator.Stats(),
	}
	var overall tasklog.Stats
	for _, s := range by {
		overall = overall.Merge(s)
	}
	return Stats{Overall: overall, ByStage: by}
}
