package theme

import (
	"fmt"
	"sort"
	"strings"
)

// Merge returns a new theme with every leaf of override laid over base. A
// group or component present in override never replaces the base group as a
// whole; only the leaves it declares change. Neither argument is modified.
func Merge(base, override *Theme) *Theme {
	out := New()
	out.Extends = override.Extends

	mergeGroup(out.Palette, base.Palette, override.Palette)
	mergeGroup(out.Typography, base.Typography, override.Typography)
	mergeGroup(out.Layout, base.Layout, override.Layout)
	mergeGroup(out.Tone, base.Tone, override.Tone)

	for name, g := range base.Components {
		out.Components[name] = Group{}
		mergeGroup(out.Components[name], g, nil)
	}
	for name, g := range override.Components {
		if out.Components[name] == nil {
			out.Components[name] = Group{}
		}
		mergeGroup(out.Components[name], nil, g)
	}

	for k, v := range base.Extra {
		out.Extra[k] = v
	}
	for k, v := range override.Extra {
		out.Extra[k] = v
	}

	out.CustomCSS = base.CustomCSS
	if override.CustomCSS != "" {
		out.CustomCSS = override.CustomCSS
	}
	out.Ignored = append(append([]string{}, base.Ignored...), override.Ignored...)
	return out
}

func mergeGroup(dst, base, override Group) {
	for k, v := range base {
		dst[k] = v
	}
	for k, v := range override {
		dst[k] = v
	}
}

// Resolve merges t over the built-in theme it extends ("default" when unset)
func Resolve(t *Theme) (*Theme, error) {
	name := t.Extends
	if name == "" {
		name = "default"
	}
	base, ok := Builtin(name)
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return Merge(base, t), nil
}

// BuiltinNames lists the built-in theme names
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a fresh copy of a built-in theme
func Builtin(name string) (*Theme, bool) {
	build, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

var builtins = map[string]func() *Theme{
	"default": defaultTheme,
	"noir":    noirTheme,
}

func defaultTheme() *Theme {
	t := New()
	t.Palette = Group{
		"primary":        "#1a0f0a",
		"secondary":      "#2a1f14",
		"tertiary":       "#3a2818",
		"borders":        "#8b6f47",
		"accent-primary": "#d4af37",
		"text-primary":   "#f5e6d3",
		"text-secondary": "#c9b79c",
		"danger":         "#ff9800",
		"critical":       "#f44336",
		"safe":           "#4caf50",
	}
	t.Typography = Group{
		"title": "Georgia, 'Times New Roman', serif",
		"body":  "Georgia, serif",
		"ui":    "system-ui, sans-serif",
	}
	t.Layout = Group{
		"container-max-width": "1600px",
		"grid-columns":        "400px 1fr",
		"grid-gap":            "30px",
	}
	t.Components = map[string]Group{
		"buttons": {
			"padding":       "12px 20px",
			"border-radius": "6px",
			"font-weight":   "600",
		},
		"dice": {
			"width":         "80px",
			"height":        "80px",
			"border-radius": "12px",
			"background":    "#f5e6d3",
			"color":         "#2a1f14",
		},
		"cards": {
			"width":         "100px",
			"height":        "140px",
			"border-radius": "10px",
			"background":    "#f5f5dc",
		},
		"panels": {
			"padding":       "25px",
			"border-radius": "12px",
		},
		"modals": {
			"padding":   "40px",
			"max-width": "800px",
		},
	}
	t.Tone = Group{
		"won":       "Against all odds, you endured.",
		"lost":      "It is over. The last light goes out.",
		"new-game":  "No saved game was found. A new game has begun.",
		"corrupt":   "The saved game could not be read. A new game has begun.",
		"exhausted": "The deck is spent and nothing was resolved.",
		"roll":      "Roll the dice to begin your turn.",
	}
	return t
}

func noirTheme() *Theme {
	t := defaultTheme()
	t.Palette["primary"] = "#0b0b0d"
	t.Palette["secondary"] = "#17171c"
	t.Palette["tertiary"] = "#23232b"
	t.Palette["borders"] = "#55555f"
	t.Palette["accent-primary"] = "#c0c0c8"
	t.Palette["text-primary"] = "#e8e8ee"
	t.Palette["text-secondary"] = "#9a9aa6"
	t.Typography["title"] = "'Courier New', monospace"
	t.Components["dice"]["background"] = "#e8e8ee"
	t.Components["cards"]["background"] = "#e8e8ee"
	return t
}
