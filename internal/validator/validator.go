package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/faults"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/rules"
	"github.com/arcanaland/wretched/internal/theme"
)

type ValidationResults struct {
	Errors   []faults.Finding
	Warnings []faults.Finding
}

// Valid reports whether no errors were found
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

// Fault returns the results as a ValidationFault, or nil when valid
func (r ValidationResults) Fault() error {
	if r.Valid() {
		return nil
	}
	return &faults.ValidationFault{Findings: r.Errors, Warnings: r.Warnings}
}

type Validator struct {
	Spec    *game.Spec
	Cards   deck.Collection
	Theme   *theme.Theme
	Results ValidationResults

	rules *rules.Env
}

func NewValidator(spec *game.Spec, cards deck.Collection, t *theme.Theme) *Validator {
	if t == nil {
		t = theme.New()
	}
	return &Validator{
		Spec:    spec,
		Cards:   cards,
		Theme:   t,
		Results: ValidationResults{},
	}
}

// Validate runs every check and returns all findings. It never stops at the
// first problem. The error return is reserved for failures of the validator
// itself.
func (v *Validator) Validate() (ValidationResults, error) {
	env, err := rules.NewEnv()
	if err != nil {
		return v.Results, fmt.Errorf("error creating rules environment: %v", err)
	}
	v.rules = env

	if v.Spec == nil {
		v.Spec = &game.Spec{}
	}

	v.validateGame()
	v.validateMechanics()
	v.validateConditions()
	v.validateUI()
	v.validateSpecial()
	v.validateCards()
	v.validateTheme()

	return v.Results, nil
}

func (v *Validator) errorf(path, format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, faults.Finding{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *Validator) warnf(path, format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, faults.Finding{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *Validator) validateGame() {
	g := v.Spec.Game
	if g == nil {
		v.errorf("game", "is required")
		return
	}
	if strings.TrimSpace(g.Title) == "" {
		v.errorf("game.title", "is required")
	}
	if strings.TrimSpace(g.Author) == "" {
		v.errorf("game.author", "is required")
	}
}

func (v *Validator) validateMechanics() {
	m := v.Spec.Mechanics
	if m == nil {
		v.errorf("mechanics", "is required")
		return
	}

	if len(m.Systems) == 0 {
		v.errorf("mechanics.systems", "at least one system is required (deck, dice, stability, tokens)")
	}
	seen := make(map[game.Mechanic]bool)
	for i, name := range m.Systems {
		path := fmt.Sprintf("mechanics.systems[%d]", i)
		mech, ok := game.ParseMechanic(name)
		if !ok {
			v.errorf(path, "unknown system %q (supported: deck, dice, stability, tokens)", name)
			continue
		}
		if seen[mech] {
			v.errorf(path, "duplicate system %q", name)
		}
		seen[mech] = true
	}

	active := v.Spec.Active()
	if active.Has(game.MechanicDeck) && m.Deck == nil {
		v.errorf("mechanics.deck", "is required when the deck system is selected")
	}

	// A zero count or sides means the value was left out and takes the default.
	if m.Dice != nil {
		if m.Dice.Count < 0 {
			v.errorf("mechanics.dice.count", "must be at least 1")
		}
		if m.Dice.Sides < 0 || m.Dice.Sides == 1 {
			v.errorf("mechanics.dice.sides", "must be at least 2")
		}
	}

	if active.Has(game.MechanicTokens) {
		if m.Tokens == nil {
			v.errorf("mechanics.tokens", "is required when the tokens system is selected")
		} else if m.Tokens.Initial <= m.Tokens.Floor && len(v.lossPredicates()) == 0 {
			v.warnf("mechanics.tokens.initial", "starts at or below the floor (%d)", m.Tokens.Floor)
		}
	}

	if active.Has(game.MechanicStability) {
		if m.Stability == nil {
			v.errorf("mechanics.stability", "is required when the stability system is selected")
			return
		}
		v.validateStability(m.Stability)
	}
}

func (v *Validator) validateStability(s *game.StabilityConfig) {
	if s.Danger == nil {
		v.errorf("mechanics.stability.danger", "is required")
	}
	if s.Critical == nil {
		v.errorf("mechanics.stability.critical", "is required")
	}
	if s.Danger != nil && s.Critical != nil {
		if *s.Critical >= *s.Danger {
			v.errorf("mechanics.stability.critical", "must be below danger (critical=%d, danger=%d)", *s.Critical, *s.Danger)
		}
		if *s.Danger >= s.Initial {
			v.warnf("mechanics.stability.danger", "is not below the initial value %d; the game starts in danger", s.Initial)
		}
	}

	if s.Risk == nil {
		return
	}
	probs := []struct {
		name string
		p    *float64
	}{
		{"safe", s.Risk.Safe},
		{"danger", s.Risk.Danger},
		{"critical", s.Risk.Critical},
	}
	for _, pr := range probs {
		if pr.p != nil && (*pr.p < 0 || *pr.p > 1) {
			v.errorf("mechanics.stability.risk."+pr.name, "must be between 0 and 1, got %v", *pr.p)
		}
	}
	safe, danger, critical := s.Probability(game.TierSafe), s.Probability(game.TierDanger), s.Probability(game.TierCritical)
	if safe > danger {
		v.errorf("mechanics.stability.risk.danger", "must not be lower than the safe probability (%v < %v)", danger, safe)
	}
	if danger > critical {
		v.errorf("mechanics.stability.risk.critical", "must not be lower than the danger probability (%v < %v)", critical, danger)
	}
	if s.Penalty() < 0 {
		v.errorf("mechanics.stability.risk.penalty", "must not be negative")
	}
}

func (v *Validator) lossPredicates() []game.Predicate {
	if v.Spec.Conditions == nil {
		return nil
	}
	return v.Spec.Conditions.Loss
}

func (v *Validator) validateConditions() {
	c := v.Spec.Conditions
	if c == nil {
		v.errorf("conditions", "is required")
		return
	}
	v.validatePredicates("conditions.win", c.Win)
	v.validatePredicates("conditions.loss", c.Loss)
}

func (v *Validator) validatePredicates(path string, preds []game.Predicate) {
	for i, p := range preds {
		ppath := fmt.Sprintf("%s[%d].when", path, i)
		if strings.TrimSpace(p.When) == "" {
			v.errorf(ppath, "is required")
			continue
		}
		if _, err := v.rules.Compile(p.Name, p.When); err != nil {
			v.errorf(ppath, "invalid predicate %q: %v", p.When, oneLine(err))
		}
	}
}

func (v *Validator) validateUI() {
	ui := v.Spec.UI
	if ui == nil {
		v.errorf("ui", "is required")
		return
	}
	if ui.Layout == "" {
		return
	}
	for _, l := range game.Layouts {
		if ui.Layout == l {
			return
		}
	}
	v.errorf("ui.layout", "unknown layout %q (supported: %s)", ui.Layout, strings.Join(game.Layouts, ", "))
}

func (v *Validator) validateSpecial() {
	for _, tag := range sortedTags(v.Spec.Special) {
		s := v.Spec.Special[tag]
		path := "special." + tag
		if s.Die < 2 {
			v.errorf(path+".die", "must be at least 2")
		}
		if len(s.Success) == 0 {
			v.errorf(path+".success", "at least one successful roll is required")
		}
		for i, n := range s.Success {
			if s.Die >= 2 && (n < 1 || n > s.Die) {
				v.errorf(fmt.Sprintf("%s.success[%d]", path, i), "%d cannot be rolled on a d%d", n, s.Die)
			}
		}
		outcomes := []struct {
			name string
			o    game.Outcome
		}{{"on_success", s.OnSuccess}, {"on_failure", s.OnFailure}}
		for _, oc := range outcomes {
			name, o := oc.name, oc.o
			if o.End != "" && o.End != "won" && o.End != "lost" {
				v.errorf(path+"."+name+".end", "must be \"won\" or \"lost\", got %q", o.End)
			}
			if o.Blocks < 0 {
				v.errorf(path+"."+name+".blocks", "must not be negative")
			}
		}
	}
}

// validateCards checks that every (suit, rank) pair is defined exactly once
// and that each card is well-formed
func (v *Validator) validateCards() {
	found := make(map[string]string) // canonical ID -> authored path
	badSuits := make(map[string]bool)
	usedSpecial := make(map[string]bool)

	for _, e := range v.Cards.Entries() {
		path := fmt.Sprintf("cards.%s.%s", e.SuitKey, e.RankKey)
		if e.Suit == "" {
			if !badSuits[e.SuitKey] {
				v.errorf("cards."+e.SuitKey, "unknown suit (supported: %s)", strings.Join(card.Suits, ", "))
				badSuits[e.SuitKey] = true
			}
			continue
		}
		if e.Rank == "" {
			v.errorf(path, "unknown rank (supported: %s)", strings.Join(card.Ranks, ", "))
			continue
		}

		id := card.ID(e.Suit, e.Rank)
		if prev, dup := found[id]; dup {
			v.errorf(path, "duplicate card, already defined at %s", prev)
			continue
		}
		found[id] = path

		if strings.TrimSpace(e.Card.Title) == "" {
			v.errorf(path+".title", "is required")
		}
		if _, ok := deck.AsInt(e.Card.Tokens); !ok {
			v.errorf(path+".tokens", "must be an integer, got %v", e.Card.Tokens)
		}
		if blocks, ok := deck.AsInt(e.Card.Blocks); !ok {
			v.errorf(path+".blocks", "must be an integer, got %v", e.Card.Blocks)
		} else if blocks < 0 {
			v.errorf(path+".blocks", "must not be negative, got %d", blocks)
		}
		if e.Card.Special != "" {
			usedSpecial[e.Card.Special] = true
			if _, ok := v.Spec.Special[e.Card.Special]; !ok {
				v.errorf(path+".special", "unknown special %q", e.Card.Special)
			}
		}
	}

	for _, suit := range card.Suits {
		missing := []string{}
		for _, rank := range card.Ranks {
			if _, ok := found[card.ID(suit, rank)]; !ok {
				missing = append(missing, rank)
			}
		}
		switch {
		case len(missing) == len(card.Ranks):
			v.errorf("cards."+suit, "missing suit")
		case len(missing) > 0:
			for _, rank := range missing {
				v.errorf(fmt.Sprintf("cards.%s.%s", suit, rank), "missing card")
			}
		}
	}

	for _, tag := range sortedTags(v.Spec.Special) {
		if !usedSpecial[tag] {
			v.warnf("special."+tag, "is not used by any card")
		}
	}
}

func (v *Validator) validateTheme() {
	t := v.Theme
	if t.Extends != "" {
		if _, ok := theme.Builtin(t.Extends); !ok {
			v.errorf("theme.extends", "unknown theme %q (available: %s)", t.Extends, strings.Join(theme.BuiltinNames(), ", "))
		}
	}

	for _, key := range t.Palette.SortedKeys() {
		if !IsColor(t.Palette[key]) {
			v.errorf("theme.palette."+key, "%q is not a colour", t.Palette[key])
		}
	}

	for _, name := range sortedComponentNames(t) {
		g := t.Components[name]
		for _, key := range g.SortedKeys() {
			val := strings.TrimSpace(g[key])
			if theme.EscapesDeclaration(val) {
				v.errorf("theme.components."+name+"."+key, "must not contain braces, semicolons or '<'")
				continue
			}
			if theme.ExternalReference(val) {
				v.warnf("theme.components."+name+"."+key, "external reference dropped")
				continue
			}
			if strings.HasPrefix(val, "#") && !IsColor(val) {
				v.errorf("theme.components."+name+"."+key, "%q is not a colour", val)
			}
		}
	}

	for _, path := range t.Ignored {
		if strings.HasSuffix(path, "google_fonts") {
			v.warnf("theme."+path, "ignored, the game file makes no network requests")
			continue
		}
		v.warnf("theme."+path, "lists are not supported here and were ignored")
	}

	groups := []struct {
		name string
		g    theme.Group
	}{{"palette", t.Palette}, {"typography", t.Typography}, {"layout", t.Layout}}
	for _, grp := range groups {
		for _, key := range grp.g.SortedKeys() {
			if theme.EscapesDeclaration(grp.g[key]) {
				v.errorf("theme."+grp.name+"."+key, "must not contain braces, semicolons or '<'")
				continue
			}
			if theme.ExternalReference(grp.g[key]) {
				v.warnf("theme."+grp.name+"."+key, "external reference dropped")
			}
		}
	}
	if theme.ClosesStyle(t.CustomCSS) {
		v.errorf("theme.custom_css", "must not contain a closing style tag")
	}
	if theme.ExternalReference(t.CustomCSS) {
		v.warnf("theme.custom_css", "external references are dropped")
	}
}

func sortedTags(m map[string]game.Special) []string {
	tags := make([]string, 0, len(m))
	for tag := range m {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func sortedComponentNames(t *theme.Theme) []string {
	names := make([]string, 0, len(t.Components))
	for name := range t.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func oneLine(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}
