// Package assets provides the visual asset sources consulted by the asset stage.
package assets

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/cpunion/slidegen/pkg/types"
)

// Query describes the visuals wanted for one slide.
type Query struct {
	Text     string
	Keywords []string
	Types    []types.AssetType // acceptable types, preferred first
	Style    string
	Limit    int
}

// Accepts reports whether t is one of the requested types. An empty Types
// list accepts anything.
func (q Query) Accepts(t types.AssetType) bool {
	if len(q.Types) == 0 {
		return true
	}
	for _, want := range q.Types {
		if want == t {
			return true
		}
	}
	return false
}

// Candidate is a scored asset suggestion.
type Candidate struct {
	Asset  types.Asset `json:"asset"`
	Score  float64     `json:"score"` // 0..1
	Source string      `json:"source"`
}

// Source finds candidate assets for a query.
type Source interface {
	Search(ctx context.Context, q Query) ([]Candidate, error)
}

// Chain queries every source in order and merges the results by score.
// A failing source is skipped; the chain fails only when all of them fail.
type Chain []Source

// Search implements Source.
func (c Chain) Search(ctx context.Context, q Query) ([]Candidate, error) {
	var (
		out  []Candidate
		errs []error
	)
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := s.Search(ctx, q)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, found...)
	}
	if len(errs) > 0 && len(errs) == len(c) {
		return nil, errors.Join(errs...)
	}

	out = dedupe(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func dedupe(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		key := string(c.Asset.Type) + "|" + c.Asset.URL + "|" + strings.ToLower(c.Asset.Description)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
