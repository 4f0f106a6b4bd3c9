package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunion/slidegen/pkg/types"
)

func outlineOf(counts ...int) types.Outline {
	o := types.Outline{Title: "Deck", Tone: types.ToneFormal}
	for i, c := range counts {
		o.Sections = append(o.Sections, types.OutlineSection{
			Title:      "Section " + string(rune('A'+i)),
			Points:     []string{"p1", "p2"},
			SlideCount: c,
		})
	}
	o.Recount()
	o.EstimatedDurationMinutes = EstimateDuration(o)
	return o
}

func TestChunkPoints_Partition(t *testing.T) {
	points := []string{"1", "2", "3", "4", "5", "6", "7"}
	chunks := ChunkPoints(points, 3)

	require.Len(t, chunks, 3)
	sizes := []int{len(chunks[0]), len(chunks[1]), len(chunks[2])}
	assert.Equal(t, []int{3, 3, 1}, sizes)

	var joined []string
	for _, c := range chunks {
		joined = append(joined, c...)
	}
	assert.Equal(t, points, joined)
}

func TestChunkPoints_MoreSlidesThanPoints(t *testing.T) {
	chunks := ChunkPoints([]string{"a", "b"}, 4)
	require.Len(t, chunks, 4)
	assert.Equal(t, []string{"a"}, chunks[0])
	assert.Equal(t, []string{"b"}, chunks[1])
	assert.Empty(t, chunks[2])
	assert.Empty(t, chunks[3])

	assert.Len(t, ChunkPoints(nil, 0), 1)
}

func TestMergeResearch_Idempotent(t *testing.T) {
	o := types.Outline{
		Title: "Deck",
		Sections: []types.OutlineSection{
			{Title: "A", Points: []string{"Cost savings"}, SlideCount: 1},
			{Title: "B", Points: []string{"Risks"}, SlideCount: 1},
		},
	}
	r := types.TopicResearch{KeyPoints: []string{"cost SAVINGS", "Adoption", "Regulation", " ", "adoption", "Talent"}}

	once := MergeResearch(o, r)
	twice := MergeResearch(once, r)

	assert.Equal(t, []string{"Cost savings", "Adoption", "Talent"}, once.Sections[0].Points)
	assert.Equal(t, []string{"Risks", "Regulation"}, once.Sections[1].Points)
	assert.Equal(t, once.Sections, twice.Sections)

	// input is not mutated
	assert.Equal(t, []string{"Cost savings"}, o.Sections[0].Points)
}

func TestValidateOutline_ReportsEveryError(t *testing.T) {
	o := types.Outline{
		Title: "",
		Sections: []types.OutlineSection{
			{Title: "Empty", SlideCount: 1},
			{Title: "Full", Points: []string{"x"}, SlideCount: 50},
		},
		TotalSlides: 51,
	}
	res := ValidateOutline(o)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 3)

	assert.True(t, ValidateOutline(outlineOf(1, 1, 1)).Valid)

	res = ValidateOutline(types.Outline{Title: "x"})
	assert.Equal(t, []string{"outline has no sections", "totalSlides 0 is outside [3, 50]"}, res.Errors)
}

func TestRepairOutline(t *testing.T) {
	o := types.Outline{Sections: []types.OutlineSection{{Title: "Intro", SlideCount: 0}}}
	fixed, notes := RepairOutline(o, "  Topic ")

	assert.Equal(t, "Topic", fixed.Title)
	assert.Equal(t, []string{"Intro"}, fixed.Sections[0].Points)
	assert.Equal(t, 1, fixed.Sections[0].SlideCount)
	assert.Equal(t, 1, fixed.TotalSlides)
	assert.Len(t, notes, 3)
	assert.Empty(t, o.Sections[0].Points)
}

func TestFitSlideCount(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		target int
		want   []int
	}{
		{"unchanged", []int{2, 3}, 5, []int{2, 3}},
		{"scale up", []int{1, 1, 2}, 10, []int{3, 3, 4}},
		{"scale down", []int{4, 4, 4}, 6, []int{2, 2, 2}},
		{"floor of one", []int{10, 1}, 3, []int{2, 1}},
		{"too many sections", []int{1, 1, 1, 1}, 3, []int{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitSlideCount(outlineOf(tt.counts...), tt.target)
			var counts []int
			for _, s := range got.Sections {
				counts = append(counts, s.SlideCount)
			}
			assert.Equal(t, tt.want, counts)
			assert.Equal(t, got.SumSlideCounts(), got.TotalSlides)
		})
	}
}

func TestOptimizeForDuration_KeepsInvariant(t *testing.T) {
	o := outlineOf(2, 3, 1)
	require.Equal(t, 12, o.EstimatedDurationMinutes)

	for _, target := range []int{1, 5, 12, 20, 45, 90} {
		got := OptimizeForDuration(o, target)
		assert.Equal(t, got.SumSlideCounts(), got.TotalSlides, "target %d", target)
		for _, s := range got.Sections {
			assert.GreaterOrEqual(t, s.SlideCount, 1)
		}
	}

	doubled := OptimizeForDuration(o, 24)
	assert.Equal(t, 12, doubled.TotalSlides)
	assert.Equal(t, 24, doubled.EstimatedDurationMinutes)

	same := OptimizeForDuration(o, 0)
	assert.Equal(t, o.Sections, same.Sections)
}

func TestOutlineFromResearch(t *testing.T) {
	r := types.TopicResearch{KeyPoints: []string{
		"AI reads medical images faster than radiologists today.",
		"b", "c", "d",
	}}
	o := OutlineFromResearch("AI in Healthcare", r, types.ToneFormal)

	assert.Equal(t, "AI in Healthcare", o.Title)
	require.Len(t, o.Sections, 2)
	assert.Equal(t, "AI reads medical images faster than", o.Sections[0].Title)
	assert.Equal(t, []string{"d"}, o.Sections[1].Points)
	assert.Equal(t, 2, o.TotalSlides)
}

func TestSectionSlug(t *testing.T) {
	assert.Equal(t, "ai-in-healthcare", SectionSlug("AI in Healthcare!"))
	assert.Equal(t, "q3-results-2026", SectionSlug("  Q3 Results / 2026 "))
	assert.Equal(t, "", SectionSlug("¿¡"))
}
