package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunion/slidegen/pkg/types"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []string{"Professional", "Vibrant", "Modern", "Minimal", "Dark"}, c.Names())

	for _, th := range c.All() {
		assert.NotEmpty(t, th.Colors.Primary, th.ID)
		assert.NotEmpty(t, th.Colors.Background, th.ID)
		assert.NotEmpty(t, th.Typography.FontFamily, th.ID)
		assert.NotZero(t, th.Typography.Weights.Bold, th.ID)
	}
}

func TestSelectTheme(t *testing.T) {
	tests := []struct {
		tone types.Tone
		pref string
		want string
	}{
		{types.ToneFormal, "", "Professional"},
		{types.ToneCasual, "", "Vibrant"},
		{types.ToneTechnical, "", "Modern"},
		{types.Tone("poetic"), "", "Professional"},
		{types.ToneFormal, "dark", "Dark"},
		{types.ToneCasual, " MINIMAL ", "Minimal"},
		{types.ToneTechnical, "neon", "Modern"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectTheme(tt.tone, tt.pref).Name, "%s/%s", tt.tone, tt.pref)
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	c := DefaultCatalog()
	a, ok := c.Lookup("professional")
	require.True(t, ok)
	require.NotNil(t, a.Effects)
	a.Effects.Shadows = !a.Effects.Shadows
	a.Colors.Primary = "#000"

	b, _ := c.Lookup("Professional")
	assert.NotEqual(t, a.Effects.Shadows, b.Effects.Shadows)
	assert.NotEqual(t, "#000", b.Colors.Primary)
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := ParseCatalog([]byte("themes: []"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("themes:\n  - id: a\n    name: A\n  - id: a\n    name: B\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("themes: [{id: x}]"))
	assert.Error(t, err)
}

func TestParseCatalog_NameCollisions(t *testing.T) {
	for name, doc := range map[string]string{
		"name matches earlier id":   "themes:\n  - id: dark\n    name: Dark\n  - id: night\n    name: DARK\n",
		"name matches earlier name": "themes:\n  - id: a\n    name: Ocean\n  - id: b\n    name: ocean\n",
		"id matches earlier name":   "themes:\n  - id: a\n    name: Ocean\n  - id: ocean\n    name: Sea\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}

	c, err := ParseCatalog([]byte("themes:\n  - id: dark\n    name: Dark\n  - id: light\n    name: Light\n"))
	require.NoError(t, err)
	got, ok := c.Lookup("DARK")
	require.True(t, ok)
	assert.Equal(t, "dark", got.ID)
}
