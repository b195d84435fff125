// Package enginegen produces the data block and the script embedded in a
// game file. The script only contains the code for the mechanics the game
// selects.
package enginegen

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/rules"
	"github.com/arcanaland/wretched/internal/theme"
)

//go:embed engine.js.tmpl
var engineSource string

var engineTemplate = template.Must(template.New("engine").Parse(engineSource))

// Input is everything the generator reads
type Input struct {
	Spec *game.Spec
	Deck *deck.Deck
	Tone theme.Group
	// Slug prefixes the artifact ID
	Slug string
}

// Output is the generated data block and script
type Output struct {
	ID     string
	Data   []byte
	Script string
}

// Data is the document embedded in the game file
type Data struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Systems   []string                `json:"systems"`
	Suits     []string                `json:"suits"`
	Ranks     []string                `json:"ranks"`
	Cards     []Card                  `json:"cards"`
	Dice      *Dice                   `json:"dice,omitempty"`
	Tokens    *Tokens                 `json:"tokens,omitempty"`
	Stability *Stability              `json:"stability,omitempty"`
	Reshuffle bool                    `json:"reshuffle"`
	Journal   bool                    `json:"journal"`
	Special   map[string]game.Special `json:"special"`
	Loss      []Predicate             `json:"loss"`
	Win       []Predicate             `json:"win"`
	Tone      map[string]string       `json:"tone"`
}

type Card struct {
	ID          string `json:"id"`
	Suit        string `json:"suit"`
	Rank        string `json:"rank"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Red         bool   `json:"red"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tokens      int    `json:"tokens"`
	Blocks      int    `json:"blocks"`
	Special     string `json:"special,omitempty"`
}

type Dice struct {
	Count int `json:"count"`
	Sides int `json:"sides"`
}

type Tokens struct {
	Name          string `json:"name"`
	Initial       int    `json:"initial"`
	Floor         int    `json:"floor"`
	AllowNegative bool   `json:"allowNegative"`
}

type Stability struct {
	Name          string                `json:"name"`
	Initial       int                   `json:"initial"`
	Danger        *int                  `json:"danger"`
	Critical      *int                  `json:"critical"`
	AllowNegative bool                  `json:"allowNegative"`
	Risk          map[game.Tier]float64 `json:"risk"`
	Penalty       int                   `json:"penalty"`
}

// Predicate is a win or loss rule as shown to the player. Its compiled
// form lives in the script.
type Predicate struct {
	Name    string `json:"name"`
	When    string `json:"when"`
	Message string `json:"message,omitempty"`
}

type program struct {
	Runtime   string
	Dice      bool
	Tokens    bool
	Stability bool
	Journal   bool
	Loss      []string
	Win       []string
}

// Generate compiles the predicates and renders the data block and script
func Generate(in Input) (*Output, error) {
	env, err := rules.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("rules environment: %w", err)
	}

	data := NewData(in.Spec, in.Deck, in.Tone)
	prog := program{
		Runtime:   rules.Runtime,
		Dice:      data.Dice != nil,
		Tokens:    data.Tokens != nil,
		Stability: data.Stability != nil,
		Journal:   data.Journal,
	}
	if prog.Loss, err = compile(env, in.Spec.LossPredicates()); err != nil {
		return nil, err
	}
	if prog.Win, err = compile(env, in.Spec.WinPredicates()); err != nil {
		return nil, err
	}

	id, err := artifactID(in.Slug, data)
	if err != nil {
		return nil, err
	}
	data.ID = id
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode game data: %w", err)
	}

	var script bytes.Buffer
	if err := engineTemplate.Execute(&script, prog); err != nil {
		return nil, fmt.Errorf("render script: %w", err)
	}
	return &Output{ID: id, Data: encoded, Script: script.String()}, nil
}

// NewData builds the embedded document. Defaults are resolved here so the
// script never has to know them.
func NewData(spec *game.Spec, d *deck.Deck, tone theme.Group) *Data {
	active := spec.Active()
	data := &Data{
		Title:     spec.Title(),
		Suits:     card.Suits,
		Ranks:     card.Ranks,
		Reshuffle: spec.Reshuffle(),
		Journal:   spec.UI == nil || spec.UI.Journal == nil || *spec.UI.Journal,
		Special:   map[string]game.Special{},
		Tone:      map[string]string{},
	}
	for _, m := range active.List() {
		data.Systems = append(data.Systems, m.String())
	}
	for _, c := range d.Cards {
		data.Cards = append(data.Cards, Card{
			ID:          c.ID,
			Suit:        c.Suit,
			Rank:        c.Rank,
			Name:        card.Name(c.Suit, c.Rank),
			Symbol:      card.Symbol(c.Suit),
			Red:         card.IsRed(c.Suit),
			Title:       c.Title,
			Description: c.Description,
			Tokens:      c.Tokens,
			Blocks:      c.Blocks,
			Special:     c.Special,
		})
	}
	for tag, rule := range spec.Special {
		data.Special[tag] = rule
	}
	for k, v := range tone {
		data.Tone[k] = v
	}

	m := spec.Mechanics
	if active.Has(game.MechanicDice) {
		count, sides := spec.Dice()
		data.Dice = &Dice{Count: count, Sides: sides}
	}
	if active.Has(game.MechanicTokens) && m.Tokens != nil {
		data.Tokens = &Tokens{
			Name:          m.Tokens.Name,
			Initial:       m.Tokens.Initial,
			Floor:         m.Tokens.Floor,
			AllowNegative: m.Tokens.AllowNegative,
		}
	}
	if active.Has(game.MechanicStability) && m.Stability != nil {
		s := m.Stability
		data.Stability = &Stability{
			Name:          s.Name,
			Initial:       s.Initial,
			Danger:        s.Danger,
			Critical:      s.Critical,
			AllowNegative: s.AllowNegative,
			Risk: map[game.Tier]float64{
				game.TierSafe:     s.Probability(game.TierSafe),
				game.TierDanger:   s.Probability(game.TierDanger),
				game.TierCritical: s.Probability(game.TierCritical),
			},
			Penalty: s.Penalty(),
		}
	}

	for _, p := range spec.LossPredicates() {
		data.Loss = append(data.Loss, Predicate(p))
	}
	for _, p := range spec.WinPredicates() {
		data.Win = append(data.Win, Predicate(p))
	}
	if data.Loss == nil {
		data.Loss = []Predicate{}
	}
	return data
}

func compile(env *rules.Env, preds []game.Predicate) ([]string, error) {
	out := make([]string, 0, len(preds))
	for _, p := range preds {
		c, err := env.Compile(p.Name, p.When)
		if err != nil {
			return nil, fmt.Errorf("predicate %s: %w", p.Name, err)
		}
		out = append(out, c.JS)
	}
	return out, nil
}

// artifactID is the slug followed by a digest of the game data
func artifactID(slug string, data *Data) (string, error) {
	if slug == "" {
		slug = "game"
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode game data: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return slug + "-" + hex.EncodeToString(sum[:4]), nil
}
