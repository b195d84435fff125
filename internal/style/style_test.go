package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/wretched/internal/theme"
)

func mustTheme(t *testing.T, doc map[string]any) *theme.Theme {
	t.Helper()
	th, err := theme.FromMap(doc)
	require.NoError(t, err)
	return th
}

func TestCompileDeterministic(t *testing.T) {
	doc := map[string]any{
		"palette": map[string]any{"primary": "#000000", "accent_primary": "gold", "safe": "#00ff00"},
		"components": map[string]any{
			"buttons": map[string]any{"padding": "4px", "border_radius": "2px"},
			"sidebar": map[string]any{"width": "200px"},
		},
		"glow":  "3px",
		".hero": map[string]any{"font_size": "2em", "margin": "0"},
	}

	first, err := Compile(mustTheme(t, doc))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Compile(mustTheme(t, doc))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompileVariables(t *testing.T) {
	css, err := Compile(mustTheme(t, map[string]any{
		"palette":    map[string]any{"text_primary": "#eeeeee"},
		"typography": map[string]any{"title": "serif"},
		"layout":     map[string]any{"grid": map[string]any{"gap": "10px"}},
	}))
	require.NoError(t, err)

	assert.Contains(t, css, "--palette-text-primary: #eeeeee;")
	assert.Contains(t, css, "--typography-title: serif;")
	assert.Contains(t, css, "--layout-grid-gap: 10px;")
	assert.True(t, strings.HasPrefix(css, ":root {\n"))
}

func TestCompileLeafMerge(t *testing.T) {
	css, err := Compile(mustTheme(t, map[string]any{
		"components": map[string]any{
			"dice": map[string]any{"width": "60px"},
		},
	}))
	require.NoError(t, err)

	start := strings.Index(css, "/* components */")
	require.NotEqual(t, -1, start)
	rules := css[start:]

	dice := rules[strings.Index(rules, ".die {"):]
	dice = dice[:strings.Index(dice, "}")]
	assert.Contains(t, dice, "width: 60px;")
	// attributes not overridden keep their built-in values
	assert.Contains(t, dice, "height: 80px;")
	assert.Contains(t, dice, "border-radius: 12px;")
}

func TestCompileComponentSelectors(t *testing.T) {
	css, err := Compile(theme.New())
	require.NoError(t, err)

	rules := css[strings.Index(css, "/* components */"):]
	for _, selector := range []string{"button {", ".die {", ".drawn-card {", ".panel {", ".modal-content {"} {
		assert.Contains(t, rules, selector)
	}
	assert.Less(t, strings.Index(rules, "button {"), strings.Index(rules, ".die {"))
}

func TestCompilePassthrough(t *testing.T) {
	css, err := Compile(mustTheme(t, map[string]any{
		"glow":       "3px",
		".hero":      map[string]any{"font_size": "2em"},
		"custom_css": ".footer { opacity: 0.5; }",
	}))
	require.NoError(t, err)

	overrides := css[strings.Index(css, "/* overrides */"):]
	assert.Contains(t, overrides, "--extra-glow: 3px;")
	assert.Contains(t, overrides, ".hero {\n  font-size: 2em;\n}")
	assert.True(t, strings.HasSuffix(css, ".footer { opacity: 0.5; }\n"))
}

func TestCompileDropsExternalReferences(t *testing.T) {
	css, err := Compile(mustTheme(t, map[string]any{
		"palette": map[string]any{"texture": "url(https://example.com/paper.png)"},
		"custom_css": "@import url('https://fonts.example.com/x.css');\n" +
			".card { background: url(http://example.com/a.png); }\n" +
			".ok { color: red; }",
	}))
	require.NoError(t, err)

	assert.NotContains(t, css, "@import")
	assert.NotContains(t, css, "http")
	assert.NotContains(t, css, "--palette-texture")
	assert.Contains(t, css, ".ok { color: red; }")
}

func TestCompileDropsSpacedAndSplitReferences(t *testing.T) {
	css, err := Compile(mustTheme(t, map[string]any{
		"components": map[string]any{"cards": map[string]any{"background": "url( 'https://example.com/a.png')"}},
		"custom_css": "body { background: url( https://example.com/x.png); }\n.ok { color: red; }",
	}))
	require.NoError(t, err)
	assert.False(t, theme.ExternalReference(css))
	assert.Contains(t, css, ".ok { color: red; }")

	css, err = Compile(mustTheme(t, map[string]any{
		"custom_css": ".a { background: url(\n  https://example.com/x.png); }",
	}))
	require.NoError(t, err)
	assert.False(t, theme.ExternalReference(css))
	assert.NotContains(t, css, ".a {")

	css, err = Compile(mustTheme(t, map[string]any{
		"custom_css": ".ok { color: red; }\n</style><script>alert(1)</script>",
	}))
	require.NoError(t, err)
	assert.False(t, theme.ClosesStyle(css))
	assert.Contains(t, css, ".ok { color: red; }")
}

func TestCompileDropsEscapingValues(t *testing.T) {
	css, err := Compile(mustTheme(t, map[string]any{
		"layout": map[string]any{"gap": "1px; } body { visibility: hidden"},
	}))
	require.NoError(t, err)
	assert.NotContains(t, css, "visibility: hidden")
}

func TestCompileUnknownTheme(t *testing.T) {
	_, err := Compile(mustTheme(t, map[string]any{"extends": "vaporwave"}))
	assert.Error(t, err)
}
