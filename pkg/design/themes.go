package design

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cpunion/slidegen/pkg/types"
)

//go:embed themes.yaml
var builtinThemes []byte

// DefaultThemeID is used when neither tone nor preference selects a theme.
const DefaultThemeID = "professional"

var toneThemes = map[types.Tone]string{
	types.ToneFormal:    "professional",
	types.ToneCasual:    "vibrant",
	types.ToneTechnical: "modern",
}

// Catalog is an immutable, ordered set of themes.
type Catalog struct {
	themes []types.Theme
	byKey  map[string]int
}

type catalogFile struct {
	Themes []types.Theme `yaml:"themes"`
}

// ParseCatalog parses a YAML theme catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse theme catalog: %w", err)
	}
	if len(f.Themes) == 0 {
		return nil, fmt.Errorf("theme catalog is empty")
	}
	c := &Catalog{byKey: make(map[string]int)}
	for _, t := range f.Themes {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("theme %q: id and name are required", t.ID+t.Name)
		}
		id, name := strings.ToLower(t.ID), strings.ToLower(t.Name)
		if _, dup := c.byKey[id]; dup {
			return nil, fmt.Errorf("duplicate theme %q", t.ID)
		}
		if _, dup := c.byKey[name]; dup {
			return nil, fmt.Errorf("theme %q: name %q is already used by another theme", t.ID, t.Name)
		}
		c.byKey[id] = len(c.themes)
		c.byKey[name] = len(c.themes)
		c.themes = append(c.themes, t)
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(builtinThemes)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns the built-in themes.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// Lookup finds a theme by id or display name, ignoring case.
func (c *Catalog) Lookup(name string) (types.Theme, bool) {
	i, ok := c.byKey[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return types.Theme{}, false
	}
	return copyTheme(c.themes[i]), true
}

// Names returns display names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.themes))
	for i, t := range c.themes {
		out[i] = t.Name
	}
	return out
}

// All returns copies of every theme in catalog order.
func (c *Catalog) All() []types.Theme {
	out := make([]types.Theme, len(c.themes))
	for i, t := range c.themes {
		out[i] = copyTheme(t)
	}
	return out
}

// SelectTheme returns the preferred theme when it is known, else the theme
// mapped from tone. Unknown tones get the default theme.
func (c *Catalog) SelectTheme(tone types.Tone, preference string) types.Theme {
	if preference != "" {
		if t, ok := c.Lookup(preference); ok {
			return t
		}
	}
	id, ok := toneThemes[tone]
	if !ok {
		id = DefaultThemeID
	}
	if t, ok := c.Lookup(id); ok {
		return t
	}
	if t, ok := c.Lookup(DefaultThemeID); ok {
		return t
	}
	return copyTheme(c.themes[0])
}

// SelectTheme selects from the built-in catalog.
func SelectTheme(tone types.Tone, preference string) types.Theme {
	return DefaultCatalog().SelectTheme(tone, preference)
}

func copyTheme(t types.Theme) types.Theme {
	if t.Effects != nil {
		e := *t.Effects
		t.Effects = &e
	}
	return t
}
