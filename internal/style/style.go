// Package style compiles a theme into stylesheet text.
package style

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/arcanaland/wretched/internal/theme"
)

//go:embed base.css
var baseCSS string

// Selectors maps each known component onto the rule it styles
var Selectors = map[string]string{
	"buttons": "button",
	"dice":    ".die",
	"cards":   ".drawn-card",
	"panels":  ".panel",
	"modals":  ".modal-content",
}

// Compile resolves t against the built-in theme it extends and renders the
// stylesheet. The output depends only on t: keys are emitted in sorted order
// so the same theme always yields byte-identical text.
func Compile(t *theme.Theme) (string, error) {
	resolved, err := theme.Resolve(t)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString(":root {\n")
	writeVars(&b, "palette", resolved.Palette)
	writeVars(&b, "typography", resolved.Typography)
	writeVars(&b, "layout", resolved.Layout)
	b.WriteString("}\n\n")

	b.WriteString(baseCSS)

	b.WriteString("\n/* components */\n")
	for _, name := range componentOrder(resolved) {
		selector, ok := Selectors[name]
		if !ok {
			selector = ".component-" + theme.CSSName(name)
		}
		if !safeValue(selector) {
			continue
		}
		writeRule(&b, selector, resolved.Components[name])
	}

	writeExtra(&b, resolved)
	return b.String(), nil
}

func writeVars(b *strings.Builder, group string, g theme.Group) {
	for _, key := range g.SortedKeys() {
		if !safeValue(key) || !safeValue(g[key]) {
			continue
		}
		fmt.Fprintf(b, "  --%s-%s: %s;\n", group, key, strings.TrimSpace(g[key]))
	}
}

func writeRule(b *strings.Builder, selector string, g theme.Group) {
	if len(g) == 0 {
		return
	}
	fmt.Fprintf(b, "%s {\n", selector)
	for _, key := range g.SortedKeys() {
		if !safeValue(key) || !safeValue(g[key]) {
			continue
		}
		fmt.Fprintf(b, "  %s: %s;\n", key, strings.TrimSpace(g[key]))
	}
	b.WriteString("}\n")
}

// writeExtra emits the free-form block: unrecognized attributes followed by
// the theme's custom CSS
func writeExtra(b *strings.Builder, t *theme.Theme) {
	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	scalars := theme.Group{}
	rules := map[string]theme.Group{}
	for _, k := range keys {
		switch v := t.Extra[k].(type) {
		case map[string]any:
			g := theme.Group{}
			for prop, val := range v {
				if _, nested := val.(map[string]any); nested {
					continue
				}
				g[theme.CSSName(prop)] = fmt.Sprint(val)
			}
			rules[k] = g
		case []any:
			continue
		default:
			scalars[theme.CSSName(k)] = fmt.Sprint(v)
		}
	}

	if len(scalars) == 0 && len(rules) == 0 && t.CustomCSS == "" {
		return
	}
	b.WriteString("\n/* overrides */\n")
	if len(scalars) > 0 {
		b.WriteString(":root {\n")
		writeVars(b, "extra", scalars)
		b.WriteString("}\n")
	}
	for _, k := range keys {
		if g, ok := rules[k]; ok && safeValue(k) {
			writeRule(b, k, g)
		}
	}
	b.WriteString(customCSS(t.CustomCSS))
}

// customCSS keeps the lines of src that fetch nothing. A reference split
// across lines drops the whole block.
func customCSS(src string) string {
	if src == "" {
		return ""
	}
	var kept strings.Builder
	for _, line := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
		if theme.ExternalReference(line) || theme.ClosesStyle(line) {
			continue
		}
		kept.WriteString(line)
		kept.WriteString("\n")
	}
	if theme.ExternalReference(kept.String()) || theme.ClosesStyle(kept.String()) {
		return ""
	}
	return kept.String()
}

// componentOrder lists the known components first, in declaration order,
// then any others sorted by name
func componentOrder(t *theme.Theme) []string {
	var names, others []string
	for _, name := range theme.Components {
		if _, ok := t.Components[name]; ok {
			names = append(names, name)
		}
	}
	for name := range t.Components {
		if _, known := Selectors[name]; !known {
			others = append(others, name)
		}
	}
	sort.Strings(others)
	return append(names, others...)
}

// safeValue rejects values that would escape their declaration or pull in an
// external resource
func safeValue(v string) bool {
	return !theme.EscapesDeclaration(v) && !theme.ExternalReference(v)
}
