// Package render turns composed slides into HTML.
package render

import (
	"html"
	"regexp"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)
	bulletRe   = regexp.MustCompile(`^[-*]\s+(.+)$`)
	numberedRe = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)
	quoteRe    = regexp.MustCompile(`^>\s?(.*)$`)

	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*\s][^*]*?)\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
)

// Markdown converts the small markdown subset slide content uses. It is a
// single pass over the lines: one heading per line, flat lists only (indented
// items join the current list), block quotes, fenced code and paragraphs.
func Markdown(text string) string {
	var (
		out   strings.Builder
		list  string // "ul", "ol" or ""
		para  []string
		quote []string
		code  []string
		fence bool
	)

	flushPara := func() {
		if len(para) > 0 {
			out.WriteString("<p>" + strings.Join(para, " ") + "</p>\n")
			para = nil
		}
	}
	flushQuote := func() {
		if len(quote) > 0 {
			out.WriteString("<blockquote><p>" + strings.Join(quote, "<br>") + "</p></blockquote>\n")
			quote = nil
		}
	}
	closeList := func() {
		if list != "" {
			out.WriteString("</" + list + ">\n")
			list = ""
		}
	}
	flushAll := func() {
		flushPara()
		flushQuote()
		closeList()
	}
	openList := func(kind string) {
		if list == kind {
			return
		}
		flushPara()
		flushQuote()
		closeList()
		out.WriteString("<" + kind + ">\n")
		list = kind
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "```") {
			if fence {
				out.WriteString("<pre><code>" + strings.Join(code, "\n") + "</code></pre>\n")
				code = nil
			} else {
				flushAll()
			}
			fence = !fence
			continue
		}
		if fence {
			code = append(code, html.EscapeString(strings.TrimRight(raw, " \t")))
			continue
		}

		switch {
		case line == "":
			flushAll()
		case headingRe.MatchString(line):
			flushAll()
			m := headingRe.FindStringSubmatch(line)
			tag := "h" + string(rune('0'+len(m[1])))
			out.WriteString("<" + tag + ">" + inline(m[2]) + "</" + tag + ">\n")
		case bulletRe.MatchString(line):
			openList("ul")
			out.WriteString("<li>" + inline(bulletRe.FindStringSubmatch(line)[1]) + "</li>\n")
		case numberedRe.MatchString(line):
			openList("ol")
			out.WriteString("<li>" + inline(numberedRe.FindStringSubmatch(line)[1]) + "</li>\n")
		case quoteRe.MatchString(line):
			flushPara()
			closeList()
			quote = append(quote, inline(quoteRe.FindStringSubmatch(line)[1]))
		default:
			flushQuote()
			closeList()
			para = append(para, inline(line))
		}
	}
	if fence && len(code) > 0 {
		out.WriteString("<pre><code>" + strings.Join(code, "\n") + "</code></pre>\n")
	}
	flushAll()
	return strings.TrimSpace(out.String())
}

// inline escapes s and applies code, bold and italic spans.
func inline(s string) string {
	s = html.EscapeString(s)
	s = codeRe.ReplaceAllString(s, "<code>$1</code>")
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	return s
}
