package agent

import (
	"fmt"
	"strings"

	"github.com/cpunion/slidegen/pkg/types"
)

var toneGuides = map[types.Tone]string{
	types.ToneFormal:    "Use a formal, authoritative voice suited to executives and conferences.",
	types.ToneCasual:    "Use a friendly, conversational voice with plain words and light energy.",
	types.ToneTechnical: "Use a precise technical voice; prefer concrete mechanisms, numbers and terminology.",
}

func toneGuide(t types.Tone) string {
	if g, ok := toneGuides[t]; ok {
		return g
	}
	return toneGuides[types.ToneFormal]
}

// buildResearchPrompt asks for the key facts of a topic.
func buildResearchPrompt(topic string, points int) string {
	var sb strings.Builder
	sb.WriteString("You are a research analyst preparing material for a slide presentation.\n\n")
	fmt.Fprintf(&sb, "Topic: %s\n\n", topic)
	fmt.Fprintf(&sb, "List the %d most important key points a presenter should cover, ", points)
	sb.WriteString("each a single self-contained sentence of at most 20 words. ")
	sb.WriteString("Order them from most to least important and do not repeat yourself.\n")
	sb.WriteString("Also rate your confidence in the accuracy of the points from 0 to 1.")
	return sb.String()
}

// buildOutlinePrompt asks for a structured outline.
func buildOutlinePrompt(topic string, research types.TopicResearch, opts OutlineOptions) string {
	var sb strings.Builder
	sb.WriteString("You are an expert presentation writer. Plan the outline of a slide deck.\n\n")
	fmt.Fprintf(&sb, "Topic: %s\n", topic)
	if opts.Audience != "" {
		fmt.Fprintf(&sb, "Audience: %s\n", opts.Audience)
	}
	fmt.Fprintf(&sb, "Tone: %s. %s\n", opts.Tone, toneGuide(opts.Tone))
	if opts.TargetSlides > 0 {
		fmt.Fprintf(&sb, "Content slides: %d in total, not counting the title and closing slides.\n", opts.TargetSlides)
	}

	if len(research.KeyPoints) > 0 {
		sb.WriteString("\n## Research\n")
		for _, p := range research.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}

	sb.WriteString("\n## Instructions\n")
	sb.WriteString("- Give the deck a concise title.\n")
	sb.WriteString("- Split the topic into 3 to 6 sections in a logical narrative order.\n")
	sb.WriteString("- Give every section 2 to 6 short points and a slideCount of at least 1.\n")
	sb.WriteString("- The slideCount values must add up to the requested number of content slides.\n")
	sb.WriteString("- Set hasVisuals when a section benefits from an image, chart or diagram.\n")
	sb.WriteString("- Estimate the speaking time in minutes.")
	return sb.String()
}

// buildSlidePrompt asks for the markdown body of one content slide.
func buildSlidePrompt(outline types.Outline, section types.OutlineSection, title string, points []string) string {
	var sb strings.Builder
	sb.WriteString("You are writing one slide of a presentation.\n\n")
	fmt.Fprintf(&sb, "Presentation: %s\n", outline.Title)
	fmt.Fprintf(&sb, "Section: %s\n", section.Title)
	fmt.Fprintf(&sb, "Slide title: %s\n", title)
	fmt.Fprintf(&sb, "Tone: %s\n\n", toneGuide(outline.Tone))

	sb.WriteString("Cover these points:\n")
	for _, p := range points {
		fmt.Fprintf(&sb, "- %s\n", p)
	}

	sb.WriteString("\nFormat:\n")
	fmt.Fprintf(&sb, "- Start with the heading line \"## %s\".\n", title)
	sb.WriteString("- Follow with 3 to 5 concise bullets using \"- \", or a short paragraph and a quote with \"> \" when it fits better.\n")
	sb.WriteString("- Use **bold** sparingly for key terms. No nested lists, no tables, no images.\n")
	sb.WriteString("- Keep the whole slide under 80 words. Output only the slide markdown.")
	return sb.String()
}

// buildContinuationPrompt asks for a slide that goes deeper into a section
// whose points were already covered by earlier slides.
func buildContinuationPrompt(outline types.Outline, section types.OutlineSection, title string, slot types.SlideSlot) string {
	var sb strings.Builder
	sb.WriteString("You are writing one slide of a presentation.\n\n")
	fmt.Fprintf(&sb, "Presentation: %s\n", outline.Title)
	fmt.Fprintf(&sb, "Section: %s\n", section.Title)
	fmt.Fprintf(&sb, "Slide title: %s\n", title)
	fmt.Fprintf(&sb, "Tone: %s\n\n", toneGuide(outline.Tone))

	fmt.Fprintf(&sb, "This is slide %d of %d in the section. Earlier slides already covered these points:\n", slot.Part+1, slot.Parts)
	for _, p := range section.Points {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	sb.WriteString("\nDo not repeat them. Continue the section with a deeper angle: ")
	sb.WriteString("a concrete example, implications, trade-offs or next steps.\n")

	sb.WriteString("\nFormat:\n")
	fmt.Fprintf(&sb, "- Start with the heading line \"## %s\".\n", title)
	sb.WriteString("- Follow with 3 to 5 concise bullets using \"- \", or a short paragraph and a quote with \"> \" when it fits better.\n")
	sb.WriteString("- Use **bold** sparingly for key terms. No nested lists, no tables, no images.\n")
	sb.WriteString("- Keep the whole slide under 80 words. Output only the slide markdown.")
	return sb.String()
}
