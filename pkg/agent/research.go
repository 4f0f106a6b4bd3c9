package agent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

// Depth selects how many key points research gathers.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// KeyPoints returns the number of key points requested at this depth.
func (d Depth) KeyPoints() int {
	switch d {
	case DepthQuick:
		return 3
	case DepthDeep:
		return 8
	default:
		return 5
	}
}

type researchResponse struct {
	KeyPoints  []string `json:"keyPoints"`
	Confidence float64  `json:"confidence" jsonschema:"minimum=0,maximum=1"`
}

// ResearchAgent produces the topic summary later stages build on.
type ResearchAgent struct {
	recorder
	gen llm.Generator
}

// NewResearchAgent creates a research stage.
func NewResearchAgent(gen llm.Generator, tasks *tasklog.Log, logger zerolog.Logger) *ResearchAgent {
	return &ResearchAgent{
		recorder: newRecorder(types.TaskResearch, tasks, logger),
		gen:      gen,
	}
}

// Research makes one structured model call. Malformed output or a gateway
// failure is returned as an AgentError; callers decide whether to continue.
func (a *ResearchAgent) Research(ctx context.Context, topic string, depth Depth) (types.TopicResearch, error) {
	want := depth.KeyPoints()
	task := a.start("research", map[string]any{"topic": topic, "depth": depth})

	resp, err := llm.Structured[researchResponse](ctx, a.gen, buildResearchPrompt(topic, want))
	if err != nil {
		aerr := stageError(StageResearch, "research failed", err)
		a.finish(task, nil, aerr)
		return types.TopicResearch{}, aerr
	}

	out := types.TopicResearch{
		KeyPoints:  dedupePoints(resp.KeyPoints),
		Confidence: clamp01(resp.Confidence),
	}
	if len(out.KeyPoints) > want {
		out.KeyPoints = out.KeyPoints[:want]
	}
	a.finish(task, out, nil)
	return out, nil
}

// dedupePoints trims points and drops blanks and case-insensitive repeats.
func dedupePoints(points []string) []string {
	seen := make(map[string]bool, len(points))
	out := make([]string, 0, len(points))
	for _, p := range points {
		p = strings.TrimSpace(p)
		key := pointKey(p)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func pointKey(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func clamp01(v float64) float64 {
	switch {
	case v != v || v < 0: // NaN
		return 0
	case v > 1:
		return 1
	}
	return v
}
