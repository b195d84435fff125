// Package theme models a game's visual theme as attribute trees and resolves
// it against the built-in themes.
package theme

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Group is a flattened attribute group: leaf key -> value. Nested keys are
// joined with "-".
type Group map[string]string

// Theme is a ThemeSpec after normalisation
type Theme struct {
	Extends    string
	Palette    Group
	Typography Group
	Layout     Group
	Components map[string]Group
	Tone       Group
	CustomCSS  string

	// Extra holds unrecognized top-level attributes, passed through to the
	// stylesheet's free-form block
	Extra map[string]any

	// Ignored lists attribute paths that were dropped while normalising
	Ignored []string
}

// Components the style compiler knows a selector for
var Components = []string{"buttons", "dice", "cards", "panels", "modals"}

var groupAliases = map[string]string{
	"palette":    "palette",
	"colors":     "palette",
	"colours":    "palette",
	"typography": "typography",
	"fonts":      "typography",
	"layout":     "layout",
	"tone":       "tone",
}

// New returns an empty theme
func New() *Theme {
	return &Theme{
		Palette:    Group{},
		Typography: Group{},
		Layout:     Group{},
		Components: map[string]Group{},
		Tone:       Group{},
		Extra:      map[string]any{},
	}
}

// FromMap normalises a decoded theme document. A single top-level "theme" key
// is unwrapped first.
func FromMap(doc map[string]any) (*Theme, error) {
	t := New()
	if doc == nil {
		return t, nil
	}
	if inner, ok := doc["theme"]; ok && len(doc) == 1 {
		m, ok := asMap(inner)
		if !ok {
			return nil, fmt.Errorf("theme: expected a mapping")
		}
		doc = m
	}

	for _, key := range sortedKeys(doc) {
		value := doc[key]
		switch {
		case key == "extends":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("extends: expected a theme name")
			}
			t.Extends = s
		case key == "custom_css":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("custom_css: expected a string")
			}
			t.CustomCSS = s
		case key == "components":
			m, ok := asMap(value)
			if !ok {
				return nil, fmt.Errorf("components: expected a mapping")
			}
			for _, name := range sortedKeys(m) {
				cm, ok := asMap(m[name])
				if !ok {
					return nil, fmt.Errorf("components.%s: expected a mapping", name)
				}
				g := Group{}
				flatten(g, "", cm, "components."+name, &t.Ignored)
				t.Components[name] = g
			}
		case groupAliases[key] != "":
			m, ok := asMap(value)
			if !ok {
				return nil, fmt.Errorf("%s: expected a mapping", key)
			}
			flatten(t.group(groupAliases[key]), "", m, key, &t.Ignored)
		default:
			t.Extra[key] = value
		}
	}
	return t, nil
}

func (t *Theme) group(name string) Group {
	switch name {
	case "palette":
		return t.Palette
	case "typography":
		return t.Typography
	case "layout":
		return t.Layout
	case "tone":
		return t.Tone
	}
	return nil
}

// flatten copies the leaves of m into g. Lists cannot become a single value
// and are recorded as ignored.
func flatten(g Group, prefix string, m map[string]any, path string, ignored *[]string) {
	for _, k := range sortedKeys(m) {
		key := CSSName(k)
		if prefix != "" {
			key = prefix + "-" + key
		}
		switch v := m[k].(type) {
		case map[string]any, map[any]any:
			sub, _ := asMap(v)
			flatten(g, key, sub, path+"."+k, ignored)
		case []any, []map[string]any:
			*ignored = append(*ignored, path+"."+k)
		default:
			g[key] = scalar(v)
		}
	}
}

func scalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedKeys returns the group's keys in lexical order
func (g Group) SortedKeys() []string {
	return sortedKeys(g)
}

// CSSName maps an attribute key onto a CSS identifier fragment
func CSSName(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// externalPattern matches stylesheet text that fetches from outside the
// document. Relative url() values stay allowed; they resolve to nothing in a
// single-file game.
var externalPattern = regexp.MustCompile(`(?i)@import|url\(\s*["']?\s*(https?:)?//`)

// ExternalReference reports whether a stylesheet value would make the browser
// fetch something from outside the document
func ExternalReference(s string) bool {
	return externalPattern.MatchString(s)
}

// ClosesStyle reports whether s would end the document's style element
func ClosesStyle(s string) bool {
	return strings.Contains(strings.ToLower(s), "</style")
}

// EscapesDeclaration reports whether a value could end the declaration or
// rule it is written into
func EscapesDeclaration(s string) bool {
	return strings.ContainsAny(s, "{};<")
}
