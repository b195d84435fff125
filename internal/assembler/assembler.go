// Package assembler merges the compiled fragments into the single HTML
// document a game ships as.
package assembler

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/parse/v2"
	htmlparse "github.com/tdewolff/parse/v2/html"

	"github.com/arcanaland/wretched/internal/faults"
	"github.com/arcanaland/wretched/internal/theme"
)

//go:embed page.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// Page holds the fragments and metadata of one game file
type Page struct {
	Title       string
	Subtitle    string
	Author      string
	Version     string
	Description string
	Layout      string

	Dice          bool
	Tokens        bool
	TokensName    string
	Stability     bool
	StabilityName string
	Special       bool
	Journal       bool
	Labels        map[string]string

	CSS    string
	Story  template.HTML
	Script string
	Data   []byte
}

// Label returns the configured UI label for key, or def
func (p Page) Label(key, def string) string {
	if v, ok := p.Labels[key]; ok && v != "" {
		return v
	}
	return def
}

// Options control assembly
type Options struct {
	Minify bool
}

var (
	closeStyle  = regexp.MustCompile(`(?i)</style`)
	closeScript = regexp.MustCompile(`(?i)</script|<!--`)
	remoteURL   = regexp.MustCompile(`(?i)(^|,)\s*(https?:)?//`)
	dataBlock   = regexp.MustCompile(`(?s)<script[^>]*\bid="?game-data"?[^>]*>(.*?)</script>`)
)

// fetchAttrs are the attributes whose value the browser loads
var fetchAttrs = map[string]bool{"src": true, "srcset": true, "poster": true, "data": true, "background": true}

// Assemble renders the document. A fragment that would end its enclosing
// element early, or markup that refers to anything outside the document, is
// a CompileFault. Text content is never inspected: the story may talk about
// URLs freely.
func Assemble(p Page, opts Options) ([]byte, error) {
	if theme.ExternalReference(p.CSS) {
		return nil, &faults.CompileFault{Stage: "assemble", Err: fmt.Errorf("stylesheet refers to an external resource")}
	}
	if closeStyle.MatchString(p.CSS) {
		return nil, &faults.CompileFault{Stage: "assemble", Err: fmt.Errorf("stylesheet contains a closing style tag")}
	}
	if closeScript.MatchString(p.Script) {
		return nil, &faults.CompileFault{Stage: "assemble", Err: fmt.Errorf("script contains a closing script tag or comment opener")}
	}
	if closeScript.Match(p.Data) {
		return nil, &faults.CompileFault{Stage: "assemble", Err: fmt.Errorf("game data contains a closing script tag or comment opener")}
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Page
		CSS    template.CSS
		Script template.JS
		Data   template.JS
	}{
		Page:   p,
		CSS:    template.CSS(p.CSS),
		Script: template.JS(p.Script),
		Data:   template.JS(p.Data),
	})
	if err != nil {
		return nil, &faults.CompileFault{Stage: "assemble", Err: err}
	}
	out := buf.Bytes()

	if ref, ok := externalMarkup(out); ok {
		return nil, &faults.CompileFault{
			Stage: "assemble",
			Err:   fmt.Errorf("document refers to an external resource in %s", ref),
		}
	}

	if opts.Minify {
		if out, err = minifyDocument(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// minifyDocument shrinks the markup, stylesheet and script. The data block
// is left as written; it is extracted again afterwards to prove it.
func minifyDocument(doc []byte) ([]byte, error) {
	before, ok := ExtractData(doc)
	if !ok {
		return nil, &faults.CompileFault{Stage: "minify", Err: fmt.Errorf("data block not found")}
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{KeepDocumentTags: true, KeepEndTags: true, KeepQuotes: true})
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)

	out, err := m.Bytes("text/html", doc)
	if err != nil {
		return nil, &faults.CompileFault{Stage: "minify", Err: err}
	}

	after, ok := ExtractData(out)
	if !ok || !bytes.Equal(before, after) {
		return nil, &faults.CompileFault{Stage: "minify", Err: fmt.Errorf("minification altered the game data")}
	}
	return out, nil
}

// ExtractData returns the contents of the document's data block
func ExtractData(doc []byte) ([]byte, bool) {
	m := dataBlock.FindSubmatch(doc)
	if m == nil {
		return nil, false
	}
	return m[1], true
}

// externalMarkup walks the tags of doc and reports the first one that would
// load something from outside the document
func externalMarkup(doc []byte) (string, bool) {
	l := htmlparse.NewLexer(parse.NewInputBytes(doc))
	tag := ""
	for {
		tt, _ := l.Next()
		switch tt {
		case htmlparse.ErrorToken:
			return "", false
		case htmlparse.StartTagToken:
			tag = strings.ToLower(string(l.Text()))
			if tag == "link" {
				return "<link>", true
			}
		case htmlparse.AttributeToken:
			name := strings.ToLower(string(l.Text()))
			val := strings.Trim(string(l.AttrVal()), `"'`)
			if (fetchAttrs[name] && remoteURL.MatchString(val)) || (name == "style" && theme.ExternalReference(val)) {
				return fmt.Sprintf("<%s %s=%q>", tag, name, val), true
			}
		}
	}
}
