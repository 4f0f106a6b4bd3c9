package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/cpunion/slidegen/pkg/types"
)

// policy admits the markup Deck produces and nothing executable.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("section", "header", "aside", "figure", "figcaption")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").Matching(bluemonday.Paragraph).Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("loading").Matching(bluemonday.Paragraph).OnElements("img")
	return p
}

// Sanitize strips anything unsafe from slide markup.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}

// Deck renders slides as a sequence of <section> elements. The output is
// sanitized; model text never reaches it unescaped.
func Deck(slides []types.Slide) string {
	var sb strings.Builder
	for i, s := range slides {
		writeSlide(&sb, i, s)
	}
	return Sanitize(sb.String())
}

func writeSlide(sb *strings.Builder, i int, s types.Slide) {
	layout := s.Layout
	if layout == "" {
		layout = types.LayoutContentOnly
	}
	fmt.Fprintf(sb, "<section class=\"slide layout-%s\" id=\"slide-%d\" data-order=\"%d\" data-slide-id=\"%s\">\n",
		html.EscapeString(string(layout)), i+1, s.Metadata.Order, html.EscapeString(s.ID))

	heading := "h2"
	if layout == types.LayoutTitle || layout == types.LayoutClosing {
		heading = "h1"
	}
	fmt.Fprintf(sb, "<header><%s class=\"slide-title\">%s</%s></header>\n", heading, inline(s.Title), heading)

	if len(s.Assets) > 0 && (layout == types.LayoutImageLeft || layout == types.LayoutFullImage) {
		writeAssets(sb, s.Assets)
		writeBody(sb, s.Content)
	} else {
		writeBody(sb, s.Content)
		writeAssets(sb, s.Assets)
	}

	if s.Metadata.Notes != "" {
		fmt.Fprintf(sb, "<aside class=\"notes\">%s</aside>\n", html.EscapeString(s.Metadata.Notes))
	}
	sb.WriteString("</section>\n")
}

func writeBody(sb *strings.Builder, content string) {
	sb.WriteString("<div class=\"slide-body\">\n")
	sb.WriteString(Markdown(content))
	sb.WriteString("\n</div>\n")
}

func writeAssets(sb *strings.Builder, assets []types.Asset) {
	if len(assets) == 0 {
		return
	}
	sb.WriteString("<div class=\"slide-assets\">\n")
	for _, a := range assets {
		pos := a.Placement.Position
		if pos == "" {
			pos = "right"
		}
		fmt.Fprintf(sb, "<figure class=\"asset asset-%s asset-%s\">", html.EscapeString(string(a.Type)), html.EscapeString(pos))
		if a.URL != "" {
			fmt.Fprintf(sb, "<img src=\"%s\" alt=\"%s\" loading=\"lazy\">", html.EscapeString(a.URL), html.EscapeString(a.Alt))
		}
		if a.Type != types.AssetIcon && a.Description != "" {
			fmt.Fprintf(sb, "<figcaption>%s</figcaption>", html.EscapeString(a.Description))
		}
		sb.WriteString("</figure>\n")
	}
	sb.WriteString("</div>\n")
}
