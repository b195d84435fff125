// Package rules compiles win and loss predicates. Predicates are CEL
// expressions over the runtime counters; they are type-checked at build time,
// evaluated by the Go engine and translated for the generated artifact.
package rules

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"

	"github.com/arcanaland/wretched/internal/card"
)

// Variables that predicates may reference
const (
	VarTokens        = "tokens"
	VarStability     = "stability"
	VarTurn          = "turn"
	VarDeckRemaining = "deck_remaining"
	VarDrawn         = "drawn"
	VarTier          = "tier"
	VarRanksDrawn    = "ranks_drawn"
	VarSuitsDrawn    = "suits_drawn"
)

// Env manages the CEL environment predicates are compiled in
type Env struct {
	env *cel.Env
}

// NewEnv initializes the CEL environment with the runtime variables
func NewEnv() (*Env, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarTokens, cel.IntType),
		cel.Variable(VarStability, cel.IntType),
		cel.Variable(VarTurn, cel.IntType),
		cel.Variable(VarDeckRemaining, cel.IntType),
		cel.Variable(VarDrawn, cel.IntType),
		cel.Variable(VarTier, cel.StringType),
		cel.Variable(VarRanksDrawn, cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable(VarSuitsDrawn, cel.MapType(cel.StringType, cel.IntType)),
	)
	if err != nil {
		return nil, err
	}
	return &Env{env: env}, nil
}

// Predicate is a compiled, type-checked boolean rule
type Predicate struct {
	Name    string
	Source  string
	Message string
	JS      string // equivalent expression over the artifact's `v` object

	prg cel.Program
}

// Compile parses and type-checks src, which must be a boolean expression
func (e *Env) Compile(name, src string) (*Predicate, error) {
	checked, iss := e.env.Compile(src)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if !reflect.DeepEqual(checked.OutputType(), cel.BoolType) {
		return nil, fmt.Errorf("expression must be boolean, got %s", checked.OutputType())
	}
	prg, err := e.env.Program(checked)
	if err != nil {
		return nil, err
	}
	js, err := toJS(checked)
	if err != nil {
		return nil, err
	}
	return &Predicate{Name: name, Source: src, JS: js, prg: prg}, nil
}

// Vars is the runtime view a predicate is evaluated against
type Vars struct {
	Tokens        int
	Stability     int
	Turn          int
	DeckRemaining int
	Drawn         int
	Tier          string
	RanksDrawn    map[string]int
	SuitsDrawn    map[string]int
}

func (v Vars) activation() map[string]any {
	ranks := make(map[string]int64, len(card.Ranks))
	for _, r := range card.Ranks {
		ranks[r] = int64(v.RanksDrawn[r])
	}
	suits := make(map[string]int64, len(card.Suits))
	for _, s := range card.Suits {
		suits[s] = int64(v.SuitsDrawn[s])
	}
	return map[string]any{
		VarTokens:        int64(v.Tokens),
		VarStability:     int64(v.Stability),
		VarTurn:          int64(v.Turn),
		VarDeckRemaining: int64(v.DeckRemaining),
		VarDrawn:         int64(v.Drawn),
		VarTier:          v.Tier,
		VarRanksDrawn:    ranks,
		VarSuitsDrawn:    suits,
	}
}

// Eval evaluates the predicate. Evaluation errors (for example indexing a rank
// that does not exist) are returned alongside false.
func (p *Predicate) Eval(v Vars) (bool, error) {
	out, _, err := p.prg.Eval(v.activation())
	if err != nil {
		return false, fmt.Errorf("predicate %s: %w", p.Name, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("predicate %s: non-boolean result %v", p.Name, out.Value())
	}
	return b, nil
}
