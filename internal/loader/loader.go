// Package loader reads a game directory and decodes its documents into
// in-memory values. It performs no schema checks beyond well-formedness.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/arcanaland/wretched/internal/ctxlog"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/faults"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/theme"
)

// Project is everything read from one game directory
type Project struct {
	Dir   string
	Spec  *game.Spec
	Cards deck.Collection
	Theme *theme.Theme // authored theme, empty when no theme file exists
	Story string       // markdown source, empty when no story file exists

	// Files maps each document kind to the file it was read from
	Files map[string]string
}

var extensions = []string{".yaml", ".yml", ".toml"}

// Load reads config, cards, theme and story from dir. Config and cards are
// required; theme and story are optional.
func Load(ctx context.Context, dir string) (*Project, error) {
	log := ctxlog.FromContext(ctx)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("game directory not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	p := &Project{Dir: dir, Files: map[string]string{}}

	var spec game.Spec
	path, err := decodeRequired(ctx, dir, "config", &spec)
	if err != nil {
		return nil, err
	}
	p.Spec = &spec
	p.Files["config"] = path
	log.Debug("loaded document", "kind", "config", "path", path)

	var cards deck.Collection
	path, err = decodeRequired(ctx, dir, "cards", &cards)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = deck.Collection{}
	}
	p.Cards = cards
	p.Files["cards"] = path
	log.Debug("loaded document", "kind", "cards", "path", path, "entries", cards.Count())

	p.Theme = theme.New()
	if path, ok := find(dir, "theme"); ok {
		var doc map[string]any
		if err := decodeFile(path, &doc); err != nil {
			return nil, err
		}
		t, err := theme.FromMap(doc)
		if err != nil {
			return nil, &faults.ConfigParseFault{File: path, Err: err}
		}
		p.Theme = t
		p.Files["theme"] = path
		log.Debug("loaded document", "kind", "theme", "path", path)
	}

	storyPath := filepath.Join(dir, "story.md")
	if data, err := os.ReadFile(storyPath); err == nil {
		p.Story = string(data)
		p.Files["story"] = storyPath
		log.Debug("loaded document", "kind", "story", "path", storyPath, "bytes", len(data))
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &faults.ConfigParseFault{File: storyPath, Err: err}
	}

	return p, nil
}

func decodeRequired(ctx context.Context, dir, base string, target any) (string, error) {
	path, ok := find(dir, base)
	if !ok {
		return "", &faults.ConfigParseFault{
			File: filepath.Join(dir, base+".yaml"),
			Err:  fmt.Errorf("file not found, make sure %s.yaml (or .yml/.toml) exists in %s", base, dir),
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return path, decodeFile(path, target)
}

// find returns the first existing file named base with a known extension
func find(dir, base string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// decodeFile decodes a YAML or TOML file into target based on its extension
func decodeFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &faults.ConfigParseFault{File: path, Err: err}
	}
	if filepath.Ext(path) == ".toml" {
		return DecodeTOML(path, data, target)
	}
	return DecodeYAML(path, data, target)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// DecodeYAML decodes data into target. Duplicate keys are parse faults.
func DecodeYAML(name string, data []byte, target any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		fault := &faults.ConfigParseFault{File: name, Err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			fault.Line, _ = strconv.Atoi(m[1])
		}
		return fault
	}
	return nil
}

// DecodeTOML decodes data into target
func DecodeTOML(name string, data []byte, target any) error {
	if _, err := toml.Decode(string(data), target); err != nil {
		fault := &faults.ConfigParseFault{File: name, Err: err}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			fault.Line = perr.Position.Line
			fault.Err = errors.New(perr.Message)
		}
		return fault
	}
	return nil
}
