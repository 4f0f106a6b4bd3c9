// Package design holds the pure decision tables of the pipeline: slide
// layouts, theme selection and asset strategy.
package design

import (
	"regexp"
	"strings"

	"github.com/cpunion/slidegen/pkg/types"
)

// Position is where a slide sits in the deck.
type Position string

const (
	PositionFirst  Position = "first"
	PositionMiddle Position = "middle"
	PositionLast   Position = "last"
)

// SlideFeatures are the content features layout rules match on.
type SlideFeatures struct {
	WordCount     int      `json:"wordCount"`
	HasList       bool     `json:"hasList"`
	HasQuote      bool     `json:"hasQuote"`
	HasCode       bool     `json:"hasCode"`
	RequiresImage bool     `json:"requiresImage"`
	Position      Position `json:"position"`
	Index         int      `json:"index"`
	Total         int      `json:"total"`
}

// Conditions is a conjunction of optional predicates. Zero values match anything.
type Conditions struct {
	MinWords      int
	MaxWords      int // 0 = no upper bound
	HasList       *bool
	HasQuote      *bool
	HasCode       *bool
	RequiresImage *bool
	Position      Position
}

// Match reports whether f satisfies every set predicate.
func (c Conditions) Match(f SlideFeatures) bool {
	if f.WordCount < c.MinWords {
		return false
	}
	if c.MaxWords > 0 && f.WordCount > c.MaxWords {
		return false
	}
	if !matchFlag(c.HasList, f.HasList) ||
		!matchFlag(c.HasQuote, f.HasQuote) ||
		!matchFlag(c.HasCode, f.HasCode) ||
		!matchFlag(c.RequiresImage, f.RequiresImage) {
		return false
	}
	return c.Position == "" || c.Position == f.Position
}

func matchFlag(want *bool, got bool) bool {
	return want == nil || *want == got
}

// Rule maps matching features to a layout.
type Rule struct {
	Name       string
	Layout     types.LayoutType
	Priority   int
	Conditions Conditions
}

func is(b bool) *bool { return &b }

// DefaultRules returns the standard layout table.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "title", Layout: types.LayoutTitle, Priority: 100, Conditions: Conditions{Position: PositionFirst}},
		{Name: "closing", Layout: types.LayoutClosing, Priority: 100, Conditions: Conditions{Position: PositionLast}},
		{Name: "code", Layout: types.LayoutCode, Priority: 90, Conditions: Conditions{HasCode: is(true)}},
		{Name: "quote", Layout: types.LayoutQuote, Priority: 80, Conditions: Conditions{HasQuote: is(true), MaxWords: 60}},
		{Name: "hero-image", Layout: types.LayoutFullImage, Priority: 70, Conditions: Conditions{RequiresImage: is(true), HasList: is(false), MaxWords: 20}},
		{Name: "image-list", Layout: types.LayoutImageRight, Priority: 60, Conditions: Conditions{RequiresImage: is(true), HasList: is(true)}},
		{Name: "image-text", Layout: types.LayoutImageLeft, Priority: 55, Conditions: Conditions{RequiresImage: is(true)}},
		{Name: "long-list", Layout: types.LayoutTwoColumn, Priority: 50, Conditions: Conditions{HasList: is(true), MinWords: 80}},
		{Name: "list", Layout: types.LayoutBulletList, Priority: 40, Conditions: Conditions{HasList: is(true)}},
	}
}

// Engine evaluates an ordered rule table.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over rules, or DefaultRules when none are given.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the rule table.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// DecideLayout returns the layout of the highest-priority matching rule.
// Ties go to the rule declared first; no match yields content-only.
func (e *Engine) DecideLayout(f SlideFeatures) types.LayoutType {
	best := -1
	for i, r := range e.rules {
		if r.Layout == "" || !r.Conditions.Match(f) {
			continue
		}
		if best < 0 || r.Priority > e.rules[best].Priority {
			best = i
		}
	}
	if best < 0 {
		return types.LayoutContentOnly
	}
	return e.rules[best].Layout
}

var (
	listLine  = regexp.MustCompile(`^\s*(?:[-*+]\s+|\d+[.)]\s+)`)
	quoteLine = regexp.MustCompile(`^\s*>`)
	markup    = regexp.MustCompile("[#*_>`]+")
)

// ExtractFeatures derives layout features from slide text.
func ExtractFeatures(content string, index, total int, requiresImage bool) SlideFeatures {
	f := SlideFeatures{
		RequiresImage: requiresImage,
		Index:         index,
		Total:         total,
		Position:      PositionMiddle,
	}
	switch {
	case index == 0:
		f.Position = PositionFirst
	case total > 0 && index == total-1:
		f.Position = PositionLast
	}

	f.HasCode = strings.Contains(content, "```")
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if !inFence {
			if listLine.MatchString(line) {
				f.HasList = true
				line = listLine.ReplaceAllString(line, "")
			}
			if quoteLine.MatchString(line) {
				f.HasQuote = true
			}
		}
		f.WordCount += len(strings.Fields(markup.ReplaceAllString(line, " ")))
	}
	return f
}
