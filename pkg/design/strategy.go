package design

import (
	"sort"
	"strings"
	"unicode"

	"github.com/cpunion/slidegen/pkg/types"
)

// DefaultMaxAssetsPerSlide caps assets when the caller sets no limit.
const DefaultMaxAssetsPerSlide = 3

var toneStyles = map[types.Tone]string{
	types.ToneFormal:    "clean professional photography",
	types.ToneCasual:    "bright friendly illustration",
	types.ToneTechnical: "minimal technical diagram",
}

// DecideAssetStrategy derives the visual policy for a deck.
func DecideAssetStrategy(tone types.Tone, includeImages bool, outline types.Outline) types.AssetStrategy {
	s := types.AssetStrategy{
		PreferImages: includeImages,
		PreferIcons:  !includeImages || tone == types.ToneTechnical,
		AllowCharts:  tone != types.ToneCasual,
		Style:        toneStyles[tone],
		MaxPerSlide:  DefaultMaxAssetsPerSlide,
		SkipTitle:    true,
	}
	if s.Style == "" {
		s.Style = toneStyles[types.ToneFormal]
	}

	var text strings.Builder
	text.WriteString(outline.Title)
	for _, sec := range outline.Sections {
		text.WriteString(" ")
		text.WriteString(sec.Title)
	}
	s.Keywords = Keywords(text.String(), 8)

	for i, slot := range outline.Slots() {
		if slot.Kind == types.SlotSection && outline.Sections[slot.Section].HasVisuals {
			s.VisualIndexes = append(s.VisualIndexes, i)
		}
	}
	return s
}

var stopwords = map[string]bool{
	"about": true, "after": true, "also": true, "and": true, "are": true,
	"between": true, "continued": true, "does": true, "for": true, "from": true,
	"have": true, "into": true, "more": true, "over": true, "that": true,
	"the": true, "their": true, "there": true, "these": true, "this": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"with": true, "your": true, "thank": true, "questions": true, "overview": true,
	"introduction": true, "conclusion": true, "summary": true,
}

// Keywords returns up to limit distinct lower-case content words of text,
// most frequent first, ties in order of appearance.
func Keywords(text string, limit int) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		w = strings.Trim(w, "-")
		if len([]rune(w)) < 4 || stopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}
