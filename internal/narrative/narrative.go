// Package narrative turns the story markdown into an HTML fragment that is
// safe to embed in the game file.
package narrative

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Compiler converts markdown. The zero value is not usable; use New.
type Compiler struct {
	md goldmark.Markdown
}

// New returns a compiler with tables, strikethrough and hard line breaks
// enabled. Raw HTML in the source is omitted.
func New(opts ...goldmark.Option) *Compiler {
	base := []goldmark.Option{
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(imageStripper{}, 100)),
		),
		goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
	}
	return &Compiler{md: goldmark.New(append(base, opts...)...)}
}

// Compile converts src. A conversion fault never fails the build: the raw
// text is returned escaped inside a <pre> block instead, and ok is false.
func (c *Compiler) Compile(src []byte) (out template.HTML, ok bool) {
	if len(bytes.TrimSpace(src)) == 0 {
		return "", true
	}
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return Fallback(src), false
	}
	return template.HTML(buf.String()), true
}

var std = New()

// Compile converts src with the default compiler
func Compile(src []byte) template.HTML {
	out, _ := std.Compile(src)
	return out
}

// Fallback renders src as preformatted, escaped text
func Fallback(src []byte) template.HTML {
	return template.HTML("<pre>" + html.EscapeString(string(src)) + "</pre>")
}

// imageStripper replaces images that would be fetched from elsewhere with
// their alt text. Inline data: images stay.
type imageStripper struct{}

func (imageStripper) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	var images []*ast.Image
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok && !inline(img.Destination) {
			images = append(images, img)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, img := range images {
		alt := ast.NewString([]byte(altText(img, source)))
		img.Parent().ReplaceChild(img.Parent(), img, alt)
	}
}

func inline(dest []byte) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(string(dest))), "data:")
}

func altText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(altText(c, source))
		}
	}
	return b.String()
}
