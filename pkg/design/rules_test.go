package design

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cpunion/slidegen/pkg/types"
)

func TestDecideLayout_Table(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name string
		f    SlideFeatures
		want types.LayoutType
	}{
		{"first slide", SlideFeatures{Position: PositionFirst, HasCode: true}, types.LayoutTitle},
		{"last slide", SlideFeatures{Position: PositionLast, HasList: true}, types.LayoutClosing},
		{"code beats list", SlideFeatures{Position: PositionMiddle, HasCode: true, HasList: true}, types.LayoutCode},
		{"short quote", SlideFeatures{Position: PositionMiddle, HasQuote: true, WordCount: 30}, types.LayoutQuote},
		{"long quote with list", SlideFeatures{Position: PositionMiddle, HasQuote: true, HasList: true, WordCount: 61}, types.LayoutBulletList},
		{"hero image", SlideFeatures{Position: PositionMiddle, RequiresImage: true, WordCount: 12}, types.LayoutFullImage},
		{"image with list", SlideFeatures{Position: PositionMiddle, RequiresImage: true, HasList: true, WordCount: 40}, types.LayoutImageRight},
		{"image with prose", SlideFeatures{Position: PositionMiddle, RequiresImage: true, WordCount: 40}, types.LayoutImageLeft},
		{"long list", SlideFeatures{Position: PositionMiddle, HasList: true, WordCount: 120}, types.LayoutTwoColumn},
		{"short list", SlideFeatures{Position: PositionMiddle, HasList: true, WordCount: 20}, types.LayoutBulletList},
		{"nothing matches", SlideFeatures{Position: PositionMiddle, WordCount: 50}, types.LayoutContentOnly},
		{"zero value", SlideFeatures{}, types.LayoutContentOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.DecideLayout(tt.f))
		})
	}
}

func TestDecideLayout_TieGoesToFirstDeclared(t *testing.T) {
	e := NewEngine(
		Rule{Name: "a", Layout: types.LayoutQuote, Priority: 10},
		Rule{Name: "b", Layout: types.LayoutCode, Priority: 10},
		Rule{Name: "low", Layout: types.LayoutTwoColumn, Priority: 1},
	)
	assert.Equal(t, types.LayoutQuote, e.DecideLayout(SlideFeatures{}))
}

func TestDecideLayout_EmptyTableIsTotal(t *testing.T) {
	e := &Engine{}
	assert.Equal(t, types.LayoutContentOnly, e.DecideLayout(SlideFeatures{HasList: true}))
}

func TestExtractFeatures(t *testing.T) {
	f := ExtractFeatures("## Title\n\n- one\n- two\n\n> a quote", 2, 5, false)
	assert.True(t, f.HasList)
	assert.True(t, f.HasQuote)
	assert.False(t, f.HasCode)
	assert.Equal(t, PositionMiddle, f.Position)
	assert.Equal(t, 5, f.WordCount)

	f = ExtractFeatures("```go\n- not a list\n```", 0, 3, true)
	assert.True(t, f.HasCode)
	assert.False(t, f.HasList)
	assert.Equal(t, PositionFirst, f.Position)
	assert.True(t, f.RequiresImage)

	f = ExtractFeatures("1. first\n2. second", 2, 3, false)
	assert.True(t, f.HasList)
	assert.Equal(t, PositionLast, f.Position)

	f = ExtractFeatures(strings.Repeat("word ", 100), 1, 3, false)
	assert.Equal(t, 100, f.WordCount)
}
