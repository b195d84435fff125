// Package builder runs the whole compile pipeline for one game directory.
package builder

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/arcanaland/wretched/internal/assembler"
	"github.com/arcanaland/wretched/internal/ctxlog"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/enginegen"
	"github.com/arcanaland/wretched/internal/faults"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/loader"
	"github.com/arcanaland/wretched/internal/narrative"
	"github.com/arcanaland/wretched/internal/style"
	"github.com/arcanaland/wretched/internal/theme"
	"github.com/arcanaland/wretched/internal/validator"
)

// Stages in the order Build reports them
var Stages = []string{"load", "validate", "style", "narrative", "engine", "assemble", "write"}

// Options control a build
type Options struct {
	// Output is the file to write. Empty means <slug>.html in OutputDir, or
	// in the game directory when OutputDir is empty too.
	Output    string
	OutputDir string
	Minify    bool
	// OnStage is called as each stage starts
	OnStage func(stage string)
}

// Result describes a finished build
type Result struct {
	Path     string
	ID       string
	Size     int
	Warnings []faults.Finding
	Elapsed  time.Duration
}

// Build compiles the game in dir into one HTML file. Parse and validation
// problems are returned as ConfigParseFault and ValidationFault; anything
// that goes wrong afterwards is a CompileFault.
func Build(ctx context.Context, dir string, opts Options) (*Result, error) {
	log := ctxlog.FromContext(ctx)
	start := time.Now()
	stage := func(name string) error {
		if opts.OnStage != nil {
			opts.OnStage(name)
		}
		log.Debug("build stage", "stage", name)
		return ctx.Err()
	}

	if err := stage("load"); err != nil {
		return nil, err
	}
	p, err := loader.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	if err := stage("validate"); err != nil {
		return nil, err
	}
	results, err := validator.NewValidator(p.Spec, p.Cards, p.Theme).Validate()
	if err != nil {
		return nil, &faults.CompileFault{Stage: "validate", Err: err}
	}
	for _, w := range results.Warnings {
		log.Warn("validation warning", "path", w.Path, "message", w.Message)
	}
	if err := results.Fault(); err != nil {
		return nil, err
	}
	d, err := deck.Build(p.Cards)
	if err != nil {
		return nil, &faults.CompileFault{Stage: "deck", Err: err}
	}

	if err := stage("style"); err != nil {
		return nil, err
	}
	css, err := style.Compile(p.Theme)
	if err != nil {
		return nil, &faults.CompileFault{Stage: "style", Err: err}
	}
	resolved, err := theme.Resolve(p.Theme)
	if err != nil {
		return nil, &faults.CompileFault{Stage: "style", Err: err}
	}

	if err := stage("narrative"); err != nil {
		return nil, err
	}
	story, ok := narrative.New().Compile([]byte(p.Story))
	if !ok {
		log.Warn("story could not be converted, embedding it as plain text", "path", p.Files["story"])
	}

	if err := stage("engine"); err != nil {
		return nil, err
	}
	slug := assembler.Slug(p.Spec.Title())
	gen, err := enginegen.Generate(enginegen.Input{Spec: p.Spec, Deck: d, Tone: resolved.Tone, Slug: slug})
	if err != nil {
		return nil, &faults.CompileFault{Stage: "engine", Err: err}
	}

	if err := stage("assemble"); err != nil {
		return nil, err
	}
	doc, err := assembler.Assemble(NewPage(p.Spec, css, story, gen), assembler.Options{Minify: opts.Minify})
	if err != nil {
		return nil, err
	}

	if err := stage("write"); err != nil {
		return nil, err
	}
	out := opts.Output
	if out == "" {
		base := opts.OutputDir
		if base == "" {
			base = dir
		}
		out = filepath.Join(base, assembler.FileName(p.Spec.Title()))
	}
	if parent := filepath.Dir(out); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("error creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return nil, fmt.Errorf("error writing %s: %w", out, err)
	}

	res := &Result{
		Path:     out,
		ID:       gen.ID,
		Size:     len(doc),
		Warnings: results.Warnings,
		Elapsed:  time.Since(start),
	}
	log.Info("built game", "path", out, "id", gen.ID, "bytes", res.Size, "minified", opts.Minify)
	return res, nil
}

// NewPage collects the page metadata and fragments for the assembler
func NewPage(spec *game.Spec, css string, story template.HTML, gen *enginegen.Output) assembler.Page {
	active := spec.Active()
	p := assembler.Page{
		Title:     spec.Title(),
		Layout:    spec.Layout(),
		Dice:      active.Has(game.MechanicDice),
		Tokens:    active.Has(game.MechanicTokens),
		Stability: active.Has(game.MechanicStability),
		Special:   len(spec.Special) > 0,
		Journal:   spec.UI == nil || spec.UI.Journal == nil || *spec.UI.Journal,
		CSS:       css,
		Story:     story,
		Script:    gen.Script,
		Data:      gen.Data,
	}
	if g := spec.Game; g != nil {
		p.Subtitle = g.Subtitle
		p.Author = g.Author
		p.Version = g.Version
		p.Description = g.Description
	}
	if spec.UI != nil {
		p.Labels = spec.UI.Labels
	}
	if m := spec.Mechanics; m != nil {
		if m.Tokens != nil {
			p.TokensName = m.Tokens.Name
		}
		if m.Stability != nil {
			p.StabilityName = m.Stability.Name
		}
	}
	if p.TokensName == "" {
		p.TokensName = "Tokens"
	}
	if p.StabilityName == "" {
		p.StabilityName = "Stability"
	}
	return p
}
