package theme

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	th, err := FromMap(map[string]any{
		"theme": map[string]any{
			"extends": "noir",
			"colors":  map[string]any{"accent_primary": "#fff", "text": map[string]any{"muted": "#999"}},
			"fonts":   map[string]any{"title": "Georgia", "google_fonts": []any{"Lora"}},
			"components": map[string]any{
				"dice": map[string]any{"height": 64},
			},
			"tone":       map[string]any{"won": "Dawn."},
			"custom_css": ".x { color: red; }",
			"shadows":    map[string]any{".panel": map[string]any{"box-shadow": "none"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "noir", th.Extends)
	assert.Equal(t, Group{"accent-primary": "#fff", "text-muted": "#999"}, th.Palette)
	assert.Equal(t, Group{"title": "Georgia"}, th.Typography)
	assert.Equal(t, Group{"height": "64"}, th.Components["dice"])
	assert.Equal(t, "Dawn.", th.Tone["won"])
	assert.Equal(t, ".x { color: red; }", th.CustomCSS)
	assert.Contains(t, th.Extra, "shadows")
	assert.Equal(t, []string{"fonts.google_fonts"}, th.Ignored)
}

func TestFromMapRejectsWrongShapes(t *testing.T) {
	tests := []map[string]any{
		{"extends": 3},
		{"custom_css": []any{"a"}},
		{"palette": "red"},
		{"components": map[string]any{"dice": "big"}},
	}
	for _, doc := range tests {
		_, err := FromMap(doc)
		assert.Error(t, err, "%v", doc)
	}
}

func TestMergeOverridesLeaves(t *testing.T) {
	base, ok := Builtin("default")
	require.True(t, ok)

	override := New()
	override.Palette["primary"] = "#000"
	override.Components["dice"] = Group{"width": "64px"}
	override.Components["scroll"] = Group{"overflow": "auto"}
	override.Tone["won"] = "Dawn."

	merged := Merge(base, override)

	assert.Equal(t, "#000", merged.Palette["primary"])
	assert.Equal(t, base.Palette["secondary"], merged.Palette["secondary"])
	assert.Equal(t, Group{
		"width":         "64px",
		"height":        "80px",
		"border-radius": "12px",
		"background":    "#f5e6d3",
		"color":         "#2a1f14",
	}, merged.Components["dice"])
	assert.Equal(t, Group{"overflow": "auto"}, merged.Components["scroll"])
	assert.Equal(t, "Dawn.", merged.Tone["won"])
	assert.Equal(t, base.Tone["lost"], merged.Tone["lost"])
}

func TestMergeLeavesInputsUntouched(t *testing.T) {
	base, _ := Builtin("default")
	before, _ := Builtin("default")
	override := New()
	override.Components["dice"] = Group{"width": "1px"}

	Merge(base, override)

	if diff := cmp.Diff(before, base); diff != "" {
		t.Errorf("base changed (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	th := New()
	th.Extends = "noir"
	th.Palette["primary"] = "#111"
	resolved, err := Resolve(th)
	require.NoError(t, err)
	assert.Equal(t, "#111", resolved.Palette["primary"])
	assert.Equal(t, "'Courier New', monospace", resolved.Typography["title"])

	resolved, err = Resolve(New())
	require.NoError(t, err)
	assert.Equal(t, "#1a0f0a", resolved.Palette["primary"])

	th.Extends = "vaporwave"
	_, err = Resolve(th)
	assert.ErrorContains(t, err, "unknown theme")
}

func TestBuiltinReturnsCopies(t *testing.T) {
	a, _ := Builtin("default")
	a.Palette["primary"] = "changed"
	b, _ := Builtin("default")
	assert.NotEqual(t, "changed", b.Palette["primary"])
	assert.Equal(t, []string{"default", "noir"}, BuiltinNames())
}

func TestValueChecks(t *testing.T) {
	assert.True(t, ExternalReference("@import 'a.css'"))
	assert.True(t, ExternalReference("url(HTTPS://x)"))
	assert.True(t, ExternalReference("background: url(//cdn.example.com/a.png)"))
	assert.True(t, ExternalReference("body { background: url( https://example.com/x.png); }"))
	assert.True(t, ExternalReference("url(\n  \"//cdn.example.com/a.png\")"))
	assert.False(t, ExternalReference("url(data:image/png;base64,AAAA)"))
	assert.False(t, ExternalReference("url(paper.png)"))

	assert.True(t, EscapesDeclaration("red; } body {"))
	assert.True(t, EscapesDeclaration("</style>"))
	assert.False(t, EscapesDeclaration("Georgia, 'Times New Roman', serif"))
}
