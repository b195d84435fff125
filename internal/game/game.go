// Package game holds the mechanics configuration of a game as authored in
// its config document.
package game

import "fmt"

// Tier is the risk band the stability counter currently sits in
type Tier string

const (
	TierSafe     Tier = "safe"
	TierDanger   Tier = "danger"
	TierCritical Tier = "critical"
)

// Layouts accepted by ui.layout
var Layouts = []string{"two-column", "single-column", "stacked"}

// Defaults applied when a value is left out of the config
const (
	DefaultDiceCount   = 2
	DefaultDiceSides   = 6
	DefaultRiskSafe    = 0.0
	DefaultRiskDanger  = 0.25
	DefaultRiskCrit    = 0.5
	DefaultRiskPenalty = 1
	DefaultLayout      = "two-column"
)

// Spec represents a game's config document
type Spec struct {
	Game       *Info              `yaml:"game" toml:"game" json:"game"`
	Mechanics  *Mechanics         `yaml:"mechanics" toml:"mechanics" json:"mechanics"`
	Conditions *Conditions        `yaml:"conditions" toml:"conditions" json:"conditions"`
	UI         *UI                `yaml:"ui" toml:"ui" json:"ui"`
	Special    map[string]Special `yaml:"special" toml:"special" json:"special,omitempty"`
}

type Info struct {
	Title       string `yaml:"title" toml:"title" json:"title"`
	Subtitle    string `yaml:"subtitle" toml:"subtitle" json:"subtitle,omitempty"`
	Author      string `yaml:"author" toml:"author" json:"author"`
	Version     string `yaml:"version" toml:"version" json:"version,omitempty"`
	Description string `yaml:"description" toml:"description" json:"description,omitempty"`
}

type Mechanics struct {
	Systems   []string         `yaml:"systems" toml:"systems" json:"systems"`
	Deck      *DeckConfig      `yaml:"deck" toml:"deck" json:"deck,omitempty"`
	Dice      *DiceConfig      `yaml:"dice" toml:"dice" json:"dice,omitempty"`
	Tokens    *TokensConfig    `yaml:"tokens" toml:"tokens" json:"tokens,omitempty"`
	Stability *StabilityConfig `yaml:"stability" toml:"stability" json:"stability,omitempty"`
}

type DeckConfig struct {
	Reshuffle bool `yaml:"reshuffle" toml:"reshuffle" json:"reshuffle"`
}

type DiceConfig struct {
	Count int `yaml:"count" toml:"count" json:"count"`
	Sides int `yaml:"sides" toml:"sides" json:"sides"`
}

type TokensConfig struct {
	Name          string `yaml:"name" toml:"name" json:"name"`
	Initial       int    `yaml:"initial" toml:"initial" json:"initial"`
	Floor         int    `yaml:"floor" toml:"floor" json:"floor"`
	AllowNegative bool   `yaml:"allow_negative" toml:"allow_negative" json:"allowNegative"`
}

type StabilityConfig struct {
	Name          string      `yaml:"name" toml:"name" json:"name"`
	Initial       int         `yaml:"initial" toml:"initial" json:"initial"`
	Danger        *int        `yaml:"danger" toml:"danger" json:"danger"`
	Critical      *int        `yaml:"critical" toml:"critical" json:"critical"`
	AllowNegative bool        `yaml:"allow_negative" toml:"allow_negative" json:"allowNegative"`
	Risk          *RiskConfig `yaml:"risk" toml:"risk" json:"risk,omitempty"`
}

// RiskConfig holds the penalty probability per tier and the extra loss on a hit
type RiskConfig struct {
	Safe     *float64 `yaml:"safe" toml:"safe" json:"safe,omitempty"`
	Danger   *float64 `yaml:"danger" toml:"danger" json:"danger,omitempty"`
	Critical *float64 `yaml:"critical" toml:"critical" json:"critical,omitempty"`
	Penalty  *int     `yaml:"penalty" toml:"penalty" json:"penalty,omitempty"`
}

type Conditions struct {
	Win  []Predicate `yaml:"win" toml:"win" json:"win"`
	Loss []Predicate `yaml:"loss" toml:"loss" json:"loss"`
}

// Predicate is a named boolean rule over the runtime counters
type Predicate struct {
	Name    string `yaml:"name" toml:"name" json:"name"`
	When    string `yaml:"when" toml:"when" json:"when"`
	Message string `yaml:"message" toml:"message" json:"message,omitempty"`
}

type UI struct {
	Layout  string            `yaml:"layout" toml:"layout" json:"layout"`
	Journal *bool             `yaml:"journal" toml:"journal" json:"journal,omitempty"`
	Labels  map[string]string `yaml:"labels" toml:"labels" json:"labels,omitempty"`
}

// Special is a named rule a card can carry in place of its own delta
type Special struct {
	Name        string  `yaml:"name" toml:"name" json:"name"`
	Description string  `yaml:"description" toml:"description" json:"description,omitempty"`
	Die         int     `yaml:"die" toml:"die" json:"die"`
	Success     []int   `yaml:"success" toml:"success" json:"success"`
	OnSuccess   Outcome `yaml:"on_success" toml:"on_success" json:"onSuccess"`
	OnFailure   Outcome `yaml:"on_failure" toml:"on_failure" json:"onFailure"`
}

// Outcome is the delta a special roll applies
type Outcome struct {
	Tokens int    `yaml:"tokens" toml:"tokens" json:"tokens"`
	Blocks int    `yaml:"blocks" toml:"blocks" json:"blocks"`
	End    string `yaml:"end" toml:"end" json:"end,omitempty"`
	Text   string `yaml:"text" toml:"text" json:"text,omitempty"`
}

// Hits reports whether roll is in the success set
func (s Special) Hits(roll int) bool {
	for _, n := range s.Success {
		if n == roll {
			return true
		}
	}
	return false
}

// Active returns the selected mechanics, ignoring unknown entries
func (s *Spec) Active() Set {
	var set Set
	if s.Mechanics == nil {
		return set
	}
	for _, name := range s.Mechanics.Systems {
		if m, ok := ParseMechanic(name); ok {
			set = set.With(m)
		}
	}
	return set
}

// Title returns the game title or an empty string
func (s *Spec) Title() string {
	if s.Game == nil {
		return ""
	}
	return s.Game.Title
}

// Dice returns the effective dice count and sides
func (s *Spec) Dice() (int, int) {
	count, sides := DefaultDiceCount, DefaultDiceSides
	if s.Mechanics != nil && s.Mechanics.Dice != nil {
		if s.Mechanics.Dice.Count > 0 {
			count = s.Mechanics.Dice.Count
		}
		if s.Mechanics.Dice.Sides > 0 {
			sides = s.Mechanics.Dice.Sides
		}
	}
	return count, sides
}

// Reshuffle reports whether an exhausted deck is shuffled back from history
func (s *Spec) Reshuffle() bool {
	return s.Mechanics != nil && s.Mechanics.Deck != nil && s.Mechanics.Deck.Reshuffle
}

// Layout returns the effective UI layout
func (s *Spec) Layout() string {
	if s.UI == nil || s.UI.Layout == "" {
		return DefaultLayout
	}
	return s.UI.Layout
}

// TierOf returns the risk tier for a stability value. A value equal to a
// threshold belongs to the more severe tier.
func (c *StabilityConfig) TierOf(value int) Tier {
	if c.Critical != nil && value <= *c.Critical {
		return TierCritical
	}
	if c.Danger != nil && value <= *c.Danger {
		return TierDanger
	}
	return TierSafe
}

// Probability returns the penalty probability for a tier
func (c *StabilityConfig) Probability(t Tier) float64 {
	r := c.Risk
	if r == nil {
		r = &RiskConfig{}
	}
	switch t {
	case TierCritical:
		return valueOr(r.Critical, DefaultRiskCrit)
	case TierDanger:
		return valueOr(r.Danger, DefaultRiskDanger)
	default:
		return valueOr(r.Safe, DefaultRiskSafe)
	}
}

// Penalty returns the extra stability lost when a risk check hits
func (c *StabilityConfig) Penalty() int {
	if c.Risk == nil || c.Risk.Penalty == nil {
		return DefaultRiskPenalty
	}
	return *c.Risk.Penalty
}

// WinPredicates returns the configured win predicates or the default one
func (s *Spec) WinPredicates() []Predicate {
	if s.Conditions != nil && len(s.Conditions.Win) > 0 {
		return s.Conditions.Win
	}
	when := "deck_remaining == 0"
	if s.Active().Has(MechanicTokens) {
		when += " && tokens > 0"
	}
	return []Predicate{{Name: "survived", When: when}}
}

// LossPredicates returns the configured loss predicates or the defaults for
// the selected counters
func (s *Spec) LossPredicates() []Predicate {
	if s.Conditions != nil && len(s.Conditions.Loss) > 0 {
		return s.Conditions.Loss
	}
	var out []Predicate
	active := s.Active()
	if active.Has(MechanicTokens) && s.Mechanics.Tokens != nil {
		out = append(out, Predicate{
			Name: "depleted",
			When: fmt.Sprintf("tokens <= %d", s.Mechanics.Tokens.Floor),
		})
	}
	if active.Has(MechanicStability) {
		out = append(out, Predicate{Name: "collapsed", When: "stability <= 0"})
	}
	return out
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
