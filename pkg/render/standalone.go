package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/cpunion/slidegen/pkg/types"
)

// SwipeThreshold is the horizontal distance in pixels a touch must travel to
// change slides.
const SwipeThreshold = 50

// Document renders a complete standalone HTML document for a deck.
func Document(title string, theme types.Theme, slides []types.Slide) string {
	return Standalone(title, theme, Deck(slides))
}

// Standalone wraps already rendered deck markup in an HTML document with the
// theme's styles and the keyboard, touch and hash navigation script.
func Standalone(title string, theme types.Theme, body string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString("<style>\n")
	sb.WriteString(ThemeCSS(theme))
	sb.WriteString(baseCSS)
	sb.WriteString("</style>\n</head>\n<body>\n")
	fmt.Fprintf(&sb, "<main class=\"deck\" data-theme=\"%s\">\n", html.EscapeString(theme.ID))
	sb.WriteString(body)
	sb.WriteString("\n</main>\n")
	sb.WriteString("<nav class=\"deck-nav\"><span class=\"deck-counter\"></span></nav>\n")
	fmt.Fprintf(&sb, "<script>\n%s</script>\n", strings.ReplaceAll(navScript, "{{threshold}}", fmt.Sprint(SwipeThreshold)))
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// ThemeCSS renders the theme as CSS custom properties on :root.
func ThemeCSS(t types.Theme) string {
	var sb strings.Builder
	sb.WriteString(":root {\n")
	vars := [][2]string{
		{"color-primary", t.Colors.Primary},
		{"color-secondary", t.Colors.Secondary},
		{"color-accent", t.Colors.Accent},
		{"color-background", t.Colors.Background},
		{"color-text", t.Colors.Text},
		{"color-text-secondary", t.Colors.TextSecondary},
		{"color-border", orDefault(t.Colors.Border, t.Colors.TextSecondary)},
		{"font-family", t.Typography.FontFamily},
		{"font-heading", orDefault(t.Typography.HeadingFont, t.Typography.FontFamily)},
		{"font-size-base", t.Typography.BaseSize},
		{"line-height", fmt.Sprint(t.Typography.LineHeight)},
		{"font-size-h1", t.Typography.HeadingSizes.H1},
		{"font-size-h2", t.Typography.HeadingSizes.H2},
		{"font-size-h3", t.Typography.HeadingSizes.H3},
		{"font-weight-normal", fmt.Sprint(t.Typography.Weights.Normal)},
		{"font-weight-medium", fmt.Sprint(t.Typography.Weights.Medium)},
		{"font-weight-bold", fmt.Sprint(t.Typography.Weights.Bold)},
		{"space-base", t.Spacing.Base},
		{"space-sm", t.Spacing.Small},
		{"space-md", t.Spacing.Medium},
		{"space-lg", t.Spacing.Large},
		{"space-xl", t.Spacing.XLarge},
	}
	radius, shadow, gradient := "0", "none", "none"
	if e := t.Effects; e != nil {
		radius = orDefault(e.BorderRadius, "0")
		if e.Shadows {
			shadow = "0 8px 24px rgba(0, 0, 0, 0.12)"
		}
		if e.Gradients {
			gradient = "linear-gradient(135deg, var(--color-primary), var(--color-secondary))"
		}
	}
	vars = append(vars, [2]string{"radius", radius}, [2]string{"shadow", shadow}, [2]string{"title-background", gradient})

	for _, v := range vars {
		if val := cssValue(v[1]); val != "" {
			fmt.Fprintf(&sb, "  --%s: %s;\n", v[0], val)
		}
	}
	sb.WriteString("}\n")
	if t.Effects != nil && t.Effects.Animations {
		sb.WriteString(".slide.active { animation: slide-in 0.35s ease-out; }\n")
		sb.WriteString("@keyframes slide-in { from { opacity: 0; transform: translateX(24px); } to { opacity: 1; transform: none; } }\n")
	}
	return sb.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// cssValue drops characters that could end a declaration or the style element.
func cssValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "0" {
		return v
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '\\':
			return -1
		}
		return r
	}, v)
}

const baseCSS = `* { box-sizing: border-box; }
html, body { margin: 0; height: 100%; background: var(--color-background); color: var(--color-text); font-family: var(--font-family); font-size: var(--font-size-base); line-height: var(--line-height); }
.deck { position: relative; width: 100vw; height: 100vh; overflow: hidden; }
.slide { position: absolute; inset: 0; display: none; flex-direction: column; padding: var(--space-xl) var(--space-xl); gap: var(--space-md); }
.slide.active { display: flex; }
.slide h1, .slide h2, .slide h3 { font-family: var(--font-heading); font-weight: var(--font-weight-bold); color: var(--color-primary); margin: 0 0 var(--space-sm); }
.slide h1 { font-size: var(--font-size-h1); }
.slide h2 { font-size: var(--font-size-h2); }
.slide h3 { font-size: var(--font-size-h3); }
.slide-body { flex: 1; }
.slide-body li { margin-bottom: var(--space-sm); }
.slide-body strong { color: var(--color-accent); font-weight: var(--font-weight-medium); }
.slide-body blockquote { border-left: 4px solid var(--color-accent); margin: 0; padding-left: var(--space-md); font-style: italic; color: var(--color-text-secondary); }
.slide-body pre { background: rgba(0, 0, 0, 0.06); border-radius: var(--radius); padding: var(--space-md); overflow: auto; }
.slide-assets { display: flex; gap: var(--space-md); }
.asset img { max-width: 100%; border-radius: var(--radius); box-shadow: var(--shadow); }
.asset-icon img { width: 64px; height: 64px; box-shadow: none; }
.asset figcaption { font-size: 0.8em; color: var(--color-text-secondary); }
.layout-title-slide, .layout-closing { justify-content: center; align-items: center; text-align: center; background: var(--title-background); }
.layout-title-slide .slide-assets, .layout-closing .slide-assets { display: none; }
.layout-two-column .slide-body ul { columns: 2; column-gap: var(--space-lg); }
.layout-image-left.active, .layout-image-right.active { display: grid; grid-template-columns: 1fr 1fr; grid-template-rows: auto 1fr; column-gap: var(--space-lg); }
.layout-image-left header, .layout-image-right header { grid-column: 1 / -1; }
.layout-full-image .slide-assets { position: absolute; inset: 0; z-index: -1; opacity: 0.35; }
.layout-full-image .slide-assets img { width: 100%; height: 100%; object-fit: cover; }
.layout-quote .slide-body { display: flex; align-items: center; justify-content: center; font-size: 1.4em; }
.layout-code .slide-body pre { font-size: 0.9em; }
.notes { display: none; }
.deck-nav { position: fixed; right: var(--space-md); bottom: var(--space-sm); color: var(--color-text-secondary); font-size: 0.8em; }
@media print { .slide { display: flex !important; position: relative; page-break-after: always; height: 100vh; } .deck-nav { display: none; } }
`

const navScript = `(function () {
  var slides = Array.prototype.slice.call(document.querySelectorAll('.slide'));
  var counter = document.querySelector('.deck-counter');
  var current = 0;
  var threshold = {{threshold}};

  function fromHash() {
    var m = /^#slide-(\d+)$/.exec(window.location.hash);
    return m ? parseInt(m[1], 10) - 1 : 0;
  }

  function show(i, updateHash) {
    if (!slides.length) return;
    i = Math.max(0, Math.min(slides.length - 1, i));
    slides[current].classList.remove('active');
    current = i;
    slides[current].classList.add('active');
    if (counter) counter.textContent = (current + 1) + ' / ' + slides.length;
    if (updateHash) history.replaceState(null, '', '#slide-' + (current + 1));
  }

  document.addEventListener('keydown', function (e) {
    switch (e.key) {
      case 'ArrowRight': case 'ArrowDown': case 'PageDown': case ' ':
        e.preventDefault(); show(current + 1, true); break;
      case 'ArrowLeft': case 'ArrowUp': case 'PageUp':
        e.preventDefault(); show(current - 1, true); break;
      case 'Home': show(0, true); break;
      case 'End': show(slides.length - 1, true); break;
    }
  });

  var startX = null;
  document.addEventListener('touchstart', function (e) {
    startX = e.changedTouches[0].clientX;
  }, { passive: true });
  document.addEventListener('touchend', function (e) {
    if (startX === null) return;
    var dx = e.changedTouches[0].clientX - startX;
    startX = null;
    if (Math.abs(dx) < threshold) return;
    show(dx < 0 ? current + 1 : current - 1, true);
  });

  window.addEventListener('hashchange', function () { show(fromHash(), false); });
  show(fromHash(), false);
})();
`
