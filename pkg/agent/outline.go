package agent

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cpunion/slidegen/pkg/types"
)

// ValidationResult lists every structural problem of an outline.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateOutline checks an outline without stopping at the first problem.
func ValidateOutline(o types.Outline) ValidationResult {
	var errs []string
	if strings.TrimSpace(o.Title) == "" {
		errs = append(errs, "outline title is missing")
	}
	if len(o.Sections) == 0 {
		errs = append(errs, "outline has no sections")
	}
	for i, s := range o.Sections {
		if len(s.Points) == 0 {
			errs = append(errs, fmt.Sprintf("section %d (%q) has no points", i+1, s.Title))
		}
		if s.SlideCount < 1 {
			errs = append(errs, fmt.Sprintf("section %d (%q) has slideCount %d, want at least 1", i+1, s.Title, s.SlideCount))
		}
	}
	if o.TotalSlides < types.MinTotalSlides || o.TotalSlides > types.MaxTotalSlides {
		errs = append(errs, fmt.Sprintf("totalSlides %d is outside [%d, %d]", o.TotalSlides, types.MinTotalSlides, types.MaxTotalSlides))
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// RepairOutline fixes what can be fixed without the model: a missing title
// becomes topic, a section without points gets its title as the only point,
// and slide counts below one are raised. It returns the repairs made.
func RepairOutline(o types.Outline, topic string) (types.Outline, []string) {
	out := o.Clone()
	var notes []string
	if strings.TrimSpace(out.Title) == "" {
		out.Title = strings.TrimSpace(topic)
		notes = append(notes, "outline title was missing; used the topic")
	}
	for i := range out.Sections {
		s := &out.Sections[i]
		if len(s.Points) == 0 && strings.TrimSpace(s.Title) != "" {
			s.Points = []string{strings.TrimSpace(s.Title)}
			notes = append(notes, fmt.Sprintf("section %q had no points; used its title", s.Title))
		}
		if s.SlideCount < 1 {
			s.SlideCount = 1
			notes = append(notes, fmt.Sprintf("section %q had no slides; set to 1", s.Title))
		}
	}
	out.Recount()
	return out, notes
}

// MergeResearch distributes research key points round-robin over the
// sections, skipping points already present anywhere in the outline (case
// insensitive). It is deterministic and idempotent.
func MergeResearch(o types.Outline, r types.TopicResearch) types.Outline {
	out := o.Clone()
	if len(out.Sections) == 0 || len(r.KeyPoints) == 0 {
		return out
	}

	present := make(map[string]bool)
	for _, s := range out.Sections {
		for _, p := range s.Points {
			present[pointKey(p)] = true
		}
	}

	next := 0
	for _, p := range r.KeyPoints {
		p = strings.TrimSpace(p)
		key := pointKey(p)
		if key == "" || present[key] {
			continue
		}
		present[key] = true
		s := &out.Sections[next%len(out.Sections)]
		s.Points = append(s.Points, p)
		next++
	}
	return out
}

// ChunkPoints splits points into exactly n contiguous chunks of
// ceil(len/n) points; trailing chunks may be short or empty.
func ChunkPoints(points []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	size := (len(points) + n - 1) / n
	out := make([][]string, n)
	for i := range out {
		lo := min(i*size, len(points))
		hi := min((i+1)*size, len(points))
		out[i] = points[lo:hi:hi]
	}
	return out
}

// FitSlideCount rescales section slide counts so they sum to target using
// largest-remainder apportionment, keeping every section at one slide or more.
// When there are more sections than target, every section gets one slide.
func FitSlideCount(o types.Outline, target int) types.Outline {
	out := o.Clone()
	n := len(out.Sections)
	if n == 0 || target <= 0 {
		out.Recount()
		return out
	}
	weights := make([]int, n)
	total := 0
	for i, s := range out.Sections {
		weights[i] = max(s.SlideCount, 1)
		total += weights[i]
	}
	if total == target {
		for i := range out.Sections {
			out.Sections[i].SlideCount = weights[i]
		}
		out.Recount()
		return out
	}

	extra := max(target-n, 0)
	type share struct {
		idx  int
		frac float64
	}
	shares := make([]share, n)
	assigned := 0
	for i, w := range weights {
		q := float64(extra) * float64(w) / float64(total)
		whole := int(math.Floor(q))
		out.Sections[i].SlideCount = 1 + whole
		assigned += whole
		shares[i] = share{idx: i, frac: q - float64(whole)}
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].frac > shares[j].frac })
	for k := 0; k < extra-assigned; k++ {
		out.Sections[shares[k%n].idx].SlideCount++
	}
	out.Recount()
	return out
}

// clampTarget bounds a requested content-slide count.
func clampTarget(n int) int {
	return min(max(n, types.MinTotalSlides), types.MaxTotalSlides)
}

var minutesPerSlide = map[types.Tone]float64{
	types.ToneFormal:    2,
	types.ToneCasual:    1.5,
	types.ToneTechnical: 2.5,
}

// EstimateDuration returns the speaking time of the content slides in minutes.
func EstimateDuration(o types.Outline) int {
	n := o.SumSlideCounts()
	if n == 0 {
		return 0
	}
	mps, ok := minutesPerSlide[o.Tone]
	if !ok {
		mps = minutesPerSlide[types.ToneFormal]
	}
	return max(1, int(math.Round(float64(n)*mps)))
}

// OptimizeForDuration scales every section's slide count by
// targetMinutes/current duration, rounding to the nearest integer of at
// least one, and recomputes the totals.
func OptimizeForDuration(o types.Outline, targetMinutes int) types.Outline {
	out := o.Clone()
	current := o.EstimatedDurationMinutes
	if current <= 0 {
		current = EstimateDuration(o)
	}
	if targetMinutes <= 0 || current <= 0 || len(out.Sections) == 0 {
		out.Recount()
		return out
	}

	ratio := float64(targetMinutes) / float64(current)
	for i := range out.Sections {
		s := &out.Sections[i]
		s.SlideCount = max(1, int(math.Round(float64(s.SlideCount)*ratio)))
	}
	out.Recount()
	out.EstimatedDurationMinutes = EstimateDuration(out)
	return out
}

// OutlineFromResearch builds a deterministic outline from key points alone:
// up to three points per section, titled after the section's first point.
func OutlineFromResearch(topic string, r types.TopicResearch, tone types.Tone) types.Outline {
	points := dedupePoints(r.KeyPoints)
	o := types.Outline{Title: strings.TrimSpace(topic), Tone: tone}
	for i := 0; i < len(points); i += 3 {
		chunk := points[i:min(i+3, len(points))]
		o.Sections = append(o.Sections, types.OutlineSection{
			Title:      headline(chunk[0], 6),
			Points:     append([]string(nil), chunk...),
			SlideCount: 1,
		})
	}
	o.Recount()
	o.EstimatedDurationMinutes = EstimateDuration(o)
	return o
}

// headline shortens a sentence to at most n words.
func headline(s string, n int) string {
	words := strings.Fields(strings.TrimRight(strings.TrimSpace(s), ".!?;:"))
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// SectionSlug turns a section title into a tag.
func SectionSlug(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case sb.Len() > 0 && !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
