package assets

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/types"
)

// DefaultPlaceholderURL renders a placeholder image; the first two verbs are
// width and height, the third the escaped caption.
const DefaultPlaceholderURL = "https://placehold.co/%dx%d?text=%s"

type visualSuggestions struct {
	Visuals []visualSuggestion `json:"visuals" validate:"dive"`
}

type visualSuggestion struct {
	Type        string   `json:"type" jsonschema:"enum=image,enum=chart,enum=diagram"`
	Description string   `json:"description" validate:"required"`
	Alt         string   `json:"alt"`
	SearchTerms []string `json:"searchTerms"`
}

// ModelSource asks the model gateway to describe fitting visuals.
type ModelSource struct {
	gen            llm.Generator
	PlaceholderURL string
}

// NewModelSource creates a model-backed source.
func NewModelSource(gen llm.Generator) *ModelSource {
	return &ModelSource{gen: gen, PlaceholderURL: DefaultPlaceholderURL}
}

// Search implements Source. Queries that accept none of image, chart or
// diagram are answered without a model call.
func (s *ModelSource) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if !q.Accepts(types.AssetImage) && !q.Accepts(types.AssetChart) && !q.Accepts(types.AssetDiagram) {
		return nil, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 3
	}

	resp, err := llm.Structured[visualSuggestions](ctx, s.gen, buildVisualPrompt(q, limit))
	if err != nil {
		return nil, fmt.Errorf("suggest visuals: %w", err)
	}

	var out []Candidate
	for _, v := range resp.Visuals {
		t := types.AssetType(strings.ToLower(strings.TrimSpace(v.Type)))
		if t != types.AssetChart && t != types.AssetDiagram {
			t = types.AssetImage
		}
		if !q.Accepts(t) {
			continue
		}
		alt := strings.TrimSpace(v.Alt)
		if alt == "" {
			alt = v.Description
		}
		a := types.Asset{
			Type:        t,
			Description: strings.TrimSpace(v.Description),
			Alt:         alt,
			Placement:   types.Placement{Position: "right", Width: "45%", Height: "auto"},
			Size:        types.AssetSize{Width: 1600, Height: 900, Unit: "px"},
		}
		if t == types.AssetImage {
			caption := strings.Join(v.SearchTerms, " ")
			if caption == "" {
				caption = a.Description
			}
			a.URL = fmt.Sprintf(s.PlaceholderURL, a.Size.Width, a.Size.Height, url.QueryEscape(caption))
		}
		out = append(out, Candidate{
			Asset:  a,
			Score:  1 - 0.1*float64(len(out)),
			Source: "model",
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func buildVisualPrompt(q Query, limit int) string {
	var sb strings.Builder
	sb.WriteString("You are a presentation designer choosing visuals for one slide.\n\n")
	sb.WriteString("Slide content:\n")
	sb.WriteString(q.Text)
	sb.WriteString("\n\n")
	if len(q.Keywords) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(q.Keywords, ", "))
	}
	if q.Style != "" {
		fmt.Fprintf(&sb, "Visual style: %s\n", q.Style)
	}
	var kinds []string
	for _, t := range q.Types {
		if t != types.AssetIcon {
			kinds = append(kinds, string(t))
		}
	}
	if len(kinds) > 0 {
		fmt.Fprintf(&sb, "Allowed visual types: %s\n", strings.Join(kinds, ", "))
	}
	fmt.Fprintf(&sb, "\nSuggest at most %d visuals, best first. For each give a concrete description, ", limit)
	sb.WriteString("short alt text and two to four search terms.")
	return sb.String()
}
