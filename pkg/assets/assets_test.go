package assets

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunion/slidegen/pkg/llm/llmtest"
	"github.com/cpunion/slidegen/pkg/types"
)

func TestIconSource(t *testing.T) {
	s := NewIconSource()

	got, err := s.Search(context.Background(), Query{
		Keywords: []string{"healthcare", "patients", "data", "health"},
		Types:    []types.AssetType{types.AssetIcon},
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "https://unpkg.com/lucide-static@latest/icons/heart-pulse.svg", got[0].Asset.URL)
	assert.InDelta(t, 0.5, got[0].Score, 1e-9)
	for _, c := range got {
		assert.Equal(t, types.AssetIcon, c.Asset.Type)
	}

	got, err = s.Search(context.Background(), Query{Keywords: []string{"health"}, Types: []types.AssetType{types.AssetImage}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestModelSource(t *testing.T) {
	fake := &llmtest.Fake{JSONFunc: func(prompt string) (string, error) {
		return `{"visuals":[
			{"type":"image","description":"Doctor reviewing a scan","searchTerms":["radiology","ai"]},
			{"type":"chart","description":"Adoption by year","alt":"Bar chart"},
			{"type":"icon","description":"ignored icon becomes image"}
		]}`, nil
	}}
	s := NewModelSource(fake)

	got, err := s.Search(context.Background(), Query{
		Text:  "## Diagnostics\n- Imaging",
		Types: []types.AssetType{types.AssetImage, types.AssetChart},
		Style: "clean professional photography",
		Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.AssetImage, got[0].Asset.Type)
	assert.Equal(t, "https://placehold.co/1600x900?text=radiology+ai", got[0].Asset.URL)
	assert.Equal(t, "Doctor reviewing a scan", got[0].Asset.Alt)
	assert.Equal(t, types.AssetChart, got[1].Asset.Type)
	assert.Empty(t, got[1].Asset.URL)
	assert.Greater(t, got[0].Score, got[1].Score)

	prompts := fake.PromptsContaining("clean professional photography")
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "at most 2 visuals")
}

func TestModelSource_IconOnlySkipsModel(t *testing.T) {
	fake := &llmtest.Fake{}
	got, err := NewModelSource(fake).Search(context.Background(), Query{Types: []types.AssetType{types.AssetIcon}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, fake.Prompts())
}

func TestModelSource_Malformed(t *testing.T) {
	fake := &llmtest.Fake{JSONFunc: func(string) (string, error) { return "no idea", nil }}
	_, err := NewModelSource(fake).Search(context.Background(), Query{})
	assert.Error(t, err)
}

type staticSource struct {
	out []Candidate
	err error
}

func (s staticSource) Search(context.Context, Query) ([]Candidate, error) {
	return s.out, s.err
}

func cand(desc string, score float64) Candidate {
	return Candidate{Asset: types.Asset{Type: types.AssetIcon, Description: desc}, Score: score}
}

func TestChain(t *testing.T) {
	c := Chain{
		staticSource{err: errors.New("down")},
		staticSource{out: []Candidate{cand("a", 0.2), cand("b", 0.9)}},
		staticSource{out: []Candidate{cand("B", 0.5), cand("c", 0.7)}},
	}
	got, err := c.Search(context.Background(), Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Asset.Description)
	assert.Equal(t, "c", got[1].Asset.Description)

	_, err = Chain{staticSource{err: errors.New("x")}, staticSource{err: errors.New("y")}}.Search(context.Background(), Query{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "x") && strings.Contains(err.Error(), "y"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Search(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
}
