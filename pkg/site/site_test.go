package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunion/slidegen/pkg/types"
)

func sampleResult(id, title string, at time.Time) *types.GenerationResult {
	return &types.GenerationResult{
		Slides: []types.Slide{
			{ID: "s1", Title: title, Content: "*intro*", Layout: types.LayoutTitle},
			{ID: "s2", Title: "Body", Content: "- point", Layout: types.LayoutBulletList},
			{ID: "s3", Title: "Thank You", Content: "**Questions?**", Layout: types.LayoutClosing},
		},
		Outline: types.Outline{
			Title:                    title,
			Sections:                 []types.OutlineSection{{Title: "Body", Points: []string{"point"}, SlideCount: 1}},
			TotalSlides:              1,
			EstimatedDurationMinutes: 2,
		},
		Theme: types.Theme{ID: "professional", Name: "Professional"},
		HTML:  "<!DOCTYPE html><title>" + title + "</title>",
		Metadata: types.GenerationMetadata{
			ID:          id,
			Topic:       "topic " + title,
			Tone:        types.ToneFormal,
			Model:       "fake",
			GeneratedAt: at,
			AssetCount:  2,
			Warnings:    []string{"slide 2 has no title"},
		},
	}
}

func TestDeckDirName(t *testing.T) {
	r := sampleResult("0123456789abcdef", "AI in Healthcare!", time.Now())
	assert.Equal(t, "ai-in-healthcare-01234567", DeckDirName(r))

	r.Outline.Title = "???"
	r.Metadata.Topic = ""
	r.Metadata.ID = ""
	assert.Equal(t, "deck", DeckDirName(r))
}

func TestWriteDeck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deck")
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	m, err := WriteDeck(dir, sampleResult("id-1", "Cloud Costs", at))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Version)
	assert.Equal(t, 3, m.Stats.SlideCount)
	assert.Equal(t, 1, m.Stats.Warnings)
	assert.Equal(t, "Professional", m.Theme)

	html, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Cloud Costs")

	slides, err := ReadSlides(dir)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	assert.Equal(t, types.LayoutClosing, slides[2].Layout)

	var outline types.Outline
	data, err := os.ReadFile(filepath.Join(dir, OutlineFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &outline))
	assert.Equal(t, "Cloud Costs", outline.Title)

	back, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "id-1", back.ID)
	assert.True(t, at.Equal(back.GeneratedAt))
}

func TestWriteDeck_NilResult(t *testing.T) {
	_, err := WriteDeck(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestWriteDeckCatalog(t *testing.T) {
	root := t.TempDir()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	_, err := WriteDeck(filepath.Join(root, "a"), sampleResult("a", "Older", older))
	require.NoError(t, err)
	_, err = WriteDeck(filepath.Join(root, "b"), sampleResult("b", "Newer", newer))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-deck"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0644))

	cat, err := WriteDeckCatalog(root)
	require.NoError(t, err)
	require.Len(t, cat.Decks, 2)
	assert.Equal(t, "b", cat.Decks[0].Dir)
	assert.Equal(t, "Newer", cat.Decks[0].Title)
	assert.Equal(t, 3, cat.Decks[1].SlideCount)

	data, err := os.ReadFile(filepath.Join(root, CatalogFile))
	require.NoError(t, err)
	var back DeckCatalog
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Len(t, back.Decks, 2)
}

func TestWriteDeckCatalog_MissingRoot(t *testing.T) {
	cat, err := ScanDecks(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, cat.Decks)
}
