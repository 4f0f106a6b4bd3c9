// Package app wires configuration into a ready-to-use pipeline for the
// slidegen commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpunion/slidegen/pkg/assets"
	"github.com/cpunion/slidegen/pkg/config"
	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/pipeline"
	"github.com/cpunion/slidegen/pkg/tasklog"
)

// App is a configured pipeline plus the resources it owns.
type App struct {
	Pipeline *pipeline.Pipeline
	Client   *llm.Client // nil when built around a custom generator

	archive *tasklog.Archive
}

// New connects to the configured Gemini model and builds the pipeline. The
// gateway client is wrapped with the configured retry policy.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics *pipeline.Metrics) (*App, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	m, err := llm.NewGeminiModel(ctx, cfg.Gemini())
	if err != nil {
		return nil, err
	}
	client := llm.NewClient(m, cfg.Client())

	retry := cfg.Retry()
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("model call failed, retrying")
	}

	a, err := NewWithGenerator(llm.WithRetry(client, retry), cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	a.Client = client
	return a, nil
}

// NewWithGenerator builds the pipeline around gen.
func NewWithGenerator(gen llm.Generator, cfg *config.Config, logger zerolog.Logger, metrics *pipeline.Metrics) (*App, error) {
	a := &App{}
	logCfg := tasklog.Config{Limit: cfg.TaskHistoryLimit}
	if cfg.TaskArchiveDir != "" {
		archive, err := tasklog.OpenArchive(tasklog.ArchiveConfig{Dir: cfg.TaskArchiveDir, Append: true})
		if err != nil {
			return nil, fmt.Errorf("open task archive: %w", err)
		}
		a.archive = archive
		logCfg.Sink = archive
	}

	source := assets.Chain{assets.NewIconSource(), assets.NewModelSource(gen)}
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithAssetSource(source),
		pipeline.WithTaskLog(tasklog.New(logCfg)),
		pipeline.WithMaxAssetsPerSlide(cfg.MaxAssetsPerSlide),
		pipeline.WithAssetConcurrency(cfg.AssetConcurrency),
	}
	if metrics != nil {
		opts = append(opts, pipeline.WithMetrics(metrics))
	}
	a.Pipeline = pipeline.New(gen, opts...)
	return a, nil
}

// Close releases the task archive.
func (a *App) Close() error {
	if a.archive == nil {
		return nil
	}
	return a.archive.Close()
}
