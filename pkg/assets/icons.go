package assets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cpunion/slidegen/pkg/types"
)

// DefaultIconURL is the URL pattern for catalog icons; %s is the icon name.
const DefaultIconURL = "https://unpkg.com/lucide-static@latest/icons/%s.svg"

// iconStems maps word stems to icon names. A keyword matches a stem when it
// starts with it.
var iconStems = map[string]string{
	"analy":    "bar-chart-3",
	"artific":  "cpu",
	"automat":  "bot",
	"budget":   "wallet",
	"climat":   "leaf",
	"cloud":    "cloud",
	"code":     "code",
	"communic": "message-circle",
	"cost":     "circle-dollar-sign",
	"custom":   "user",
	"data":     "database",
	"diagnos":  "stethoscope",
	"educat":   "graduation-cap",
	"energ":    "zap",
	"environ":  "leaf",
	"financ":   "landmark",
	"future":   "telescope",
	"global":   "globe",
	"goal":     "target",
	"growth":   "trending-up",
	"health":   "heart-pulse",
	"idea":     "lightbulb",
	"innovat":  "lightbulb",
	"intellig": "brain",
	"learn":    "book-open",
	"market":   "megaphone",
	"medic":    "stethoscope",
	"mobil":    "smartphone",
	"model":    "boxes",
	"network":  "share-2",
	"patient":  "hospital",
	"people":   "users",
	"privacy":  "lock",
	"process":  "workflow",
	"research": "flask-conical",
	"risk":     "triangle-alert",
	"scien":    "atom",
	"secur":    "shield",
	"softwar":  "app-window",
	"strateg":  "compass",
	"team":     "users",
	"tech":     "cpu",
	"time":     "clock",
	"workflow": "workflow",
	"world":    "globe",
}

// IconSource matches query keywords against a fixed icon catalog.
type IconSource struct {
	URLPattern string
}

// NewIconSource returns an icon source using DefaultIconURL.
func NewIconSource() *IconSource {
	return &IconSource{URLPattern: DefaultIconURL}
}

// Search implements Source. It never fails.
func (s *IconSource) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if !q.Accepts(types.AssetIcon) || len(q.Keywords) == 0 {
		return nil, nil
	}

	hits := make(map[string]int)
	var order []string
	for _, kw := range q.Keywords {
		kw = strings.ToLower(kw)
		for stem, icon := range iconStems {
			if !strings.HasPrefix(kw, stem) {
				continue
			}
			if hits[icon] == 0 {
				order = append(order, icon)
			}
			hits[icon]++
		}
	}
	// Map iteration above is unordered.
	sort.Strings(order)
	sort.SliceStable(order, func(i, j int) bool { return hits[order[i]] > hits[order[j]] })

	pattern := s.URLPattern
	if pattern == "" {
		pattern = DefaultIconURL
	}
	out := make([]Candidate, 0, len(order))
	for _, icon := range order {
		score := float64(hits[icon]) / float64(len(q.Keywords))
		if score > 1 {
			score = 1
		}
		out = append(out, Candidate{
			Asset: types.Asset{
				Type:        types.AssetIcon,
				URL:         fmt.Sprintf(pattern, icon),
				Description: icon + " icon",
				Alt:         strings.ReplaceAll(icon, "-", " "),
				Placement:   types.Placement{Position: "top", Width: "64px", Height: "64px"},
				Size:        types.AssetSize{Width: 24, Height: 24, Unit: "px"},
			},
			Score:  score,
			Source: "icons",
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
