package design

import (
	"slices"

	"github.com/cpunion/slidegen/pkg/types"
)

// DecisionInput carries the request-level choices that shape a decision.
type DecisionInput struct {
	Tone            types.Tone
	ThemePreference string
	IncludeImages   bool
	MaxPerSlide     int
}

// Designer combines a rule engine and a theme catalog.
type Designer struct {
	Engine  *Engine
	Catalog *Catalog
}

// NewDesigner returns a designer; nil arguments select the defaults.
func NewDesigner(engine *Engine, catalog *Catalog) *Designer {
	if engine == nil {
		engine = NewEngine()
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Designer{Engine: engine, Catalog: catalog}
}

// Decide computes the theme, per-slide layouts and asset strategy for a deck.
// contents are indexed like outline.Slots().
func (d *Designer) Decide(outline types.Outline, contents []string, in DecisionInput) types.DesignDecision {
	strategy := DecideAssetStrategy(in.Tone, in.IncludeImages, outline)
	if in.MaxPerSlide > 0 {
		strategy.MaxPerSlide = in.MaxPerSlide
	}

	layouts := make(map[int]types.LayoutType, len(contents))
	for i, content := range contents {
		requiresImage := in.IncludeImages && slices.Contains(strategy.VisualIndexes, i)
		f := ExtractFeatures(content, i, len(contents), requiresImage)
		layouts[i] = d.Engine.DecideLayout(f)
	}

	return types.DesignDecision{
		Theme:         d.Catalog.SelectTheme(in.Tone, in.ThemePreference),
		LayoutMap:     layouts,
		AssetStrategy: strategy,
	}
}
