package agent

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cpunion/slidegen/pkg/assets"
	"github.com/cpunion/slidegen/pkg/design"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

// AssetConfig holds asset stage configuration.
type AssetConfig struct {
	Concurrency int
}

// DefaultAssetConfig returns default configuration.
func DefaultAssetConfig() AssetConfig {
	return AssetConfig{Concurrency: 4}
}

// AssetAgent resolves visual assets for slides.
type AssetAgent struct {
	recorder
	source assets.Source
	cfg    AssetConfig
}

// NewAssetAgent creates an asset stage. A nil source finds nothing.
func NewAssetAgent(source assets.Source, tasks *tasklog.Log, logger zerolog.Logger, cfg AssetConfig) *AssetAgent {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultAssetConfig().Concurrency
	}
	return &AssetAgent{
		recorder: newRecorder(types.TaskAsset, tasks, logger),
		source:   source,
		cfg:      cfg,
	}
}

// BatchFindAssets looks up assets for every body slide in parallel. The
// result is keyed by slide index; slides without assets are absent. A failed
// lookup is logged and only affects its own slide. The error is non-nil only
// when ctx is done.
func (a *AssetAgent) BatchFindAssets(ctx context.Context, contents []string, strategy types.AssetStrategy, maxPerSlide int) (map[int][]types.Asset, error) {
	if maxPerSlide <= 0 {
		maxPerSlide = strategy.MaxPerSlide
	}
	if maxPerSlide <= 0 {
		maxPerSlide = design.DefaultMaxAssetsPerSlide
	}
	task := a.start("batch-find-assets", map[string]any{"slides": len(contents), "maxPerSlide": maxPerSlide})

	out := make(map[int][]types.Asset)
	if a.source == nil {
		a.finish(task, map[string]any{"slides": 0}, nil)
		return out, nil
	}

	var (
		mu     sync.Mutex
		failed []int
	)
	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Concurrency)
	for i, content := range contents {
		if (i == 0 && strategy.SkipTitle) || (i == len(contents)-1 && len(contents) > 1) {
			continue
		}
		q := slideQuery(i, content, strategy, maxPerSlide)
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			found, err := a.source.Search(ctx, q)
			if err != nil {
				a.logger.Warn().Err(err).Int("slide", i).Msg("asset lookup failed")
				mu.Lock()
				failed = append(failed, i)
				mu.Unlock()
				return nil
			}
			picked := rankAssets(found, q.Types, maxPerSlide)
			if len(picked) > 0 {
				mu.Lock()
				out[i] = picked
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		a.finish(task, nil, err)
		return nil, stageError(StageAssets, "asset lookup canceled", err)
	}
	sort.Ints(failed)
	a.finish(task, map[string]any{"slides": len(out), "failed": failed}, nil)
	return out, nil
}

func slideQuery(i int, content string, s types.AssetStrategy, limit int) assets.Query {
	typesWanted := s.PreferredTypes()
	if !slices.Contains(s.VisualIndexes, i) {
		typesWanted = []types.AssetType{types.AssetIcon}
	}
	keywords := design.Keywords(content, 5)
	for _, k := range s.Keywords {
		if len(keywords) >= 8 {
			break
		}
		if !slices.Contains(keywords, k) {
			keywords = append(keywords, k)
		}
	}
	text := content
	if r := []rune(text); len(r) > 400 {
		text = string(r[:400])
	}
	return assets.Query{
		Text:     strings.TrimSpace(text),
		Keywords: keywords,
		Types:    typesWanted,
		Style:    s.Style,
		Limit:    limit,
	}
}

// rankAssets orders candidates by preferred type, then score, and truncates.
func rankAssets(found []assets.Candidate, preferred []types.AssetType, limit int) []types.Asset {
	rank := func(t types.AssetType) int {
		if i := slices.Index(preferred, t); i >= 0 {
			return i
		}
		return len(preferred)
	}
	sorted := slices.Clone(found)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank(sorted[i].Asset.Type), rank(sorted[j].Asset.Type)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Score > sorted[j].Score
	})
	out := make([]types.Asset, 0, min(limit, len(sorted)))
	for _, c := range sorted {
		if len(out) == limit {
			break
		}
		out = append(out, c.Asset)
	}
	return out
}
