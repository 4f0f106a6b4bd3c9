package agent

import (
	"github.com/rs/zerolog"

	"github.com/cpunion/slidegen/pkg/design"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

// DesignAgent records the rule engine's decisions as tasks.
type DesignAgent struct {
	recorder
	designer *design.Designer
}

// NewDesignAgent creates a design stage; a nil designer uses the defaults.
func NewDesignAgent(designer *design.Designer, tasks *tasklog.Log, logger zerolog.Logger) *DesignAgent {
	if designer == nil {
		designer = design.NewDesigner(nil, nil)
	}
	return &DesignAgent{
		recorder: newRecorder(types.TaskDesign, tasks, logger),
		designer: designer,
	}
}

// Decide computes the deck's design decision. It never fails.
func (a *DesignAgent) Decide(outline types.Outline, contents []string, in design.DecisionInput) types.DesignDecision {
	task := a.start("decide", map[string]any{
		"slides":          len(contents),
		"tone":            in.Tone,
		"themePreference": in.ThemePreference,
		"includeImages":   in.IncludeImages,
	})
	d := a.designer.Decide(outline, contents, in)

	counts := make(map[types.LayoutType]int)
	for _, l := range d.LayoutMap {
		counts[l]++
	}
	a.finish(task, map[string]any{"theme": d.Theme.Name, "layouts": counts}, nil)
	return d
}

// Catalog returns the theme catalog in use.
func (a *DesignAgent) Catalog() *design.Catalog {
	return a.designer.Catalog
}
