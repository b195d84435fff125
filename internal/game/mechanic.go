package game

import "strings"

// Mechanic is one gameplay subsystem a game can switch on
type Mechanic uint8

const (
	MechanicDeck Mechanic = 1 << iota
	MechanicDice
	MechanicStability
	MechanicTokens
)

// AllMechanics lists every mechanic in declaration order
var AllMechanics = []Mechanic{MechanicDeck, MechanicDice, MechanicStability, MechanicTokens}

func (m Mechanic) String() string {
	switch m {
	case MechanicDeck:
		return "deck"
	case MechanicDice:
		return "dice"
	case MechanicStability:
		return "stability"
	case MechanicTokens:
		return "tokens"
	default:
		return "unknown"
	}
}

// ParseMechanic maps a systems entry onto a Mechanic. "cards" is accepted as
// an alias for the deck.
func ParseMechanic(s string) (Mechanic, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deck", "cards":
		return MechanicDeck, true
	case "dice":
		return MechanicDice, true
	case "stability", "tower":
		return MechanicStability, true
	case "tokens":
		return MechanicTokens, true
	}
	return 0, false
}

// Set is a selection of mechanics
type Set uint8

// Has reports whether m is selected
func (s Set) Has(m Mechanic) bool {
	return s&Set(m) != 0
}

// With returns the set with m added
func (s Set) With(m Mechanic) Set {
	return s | Set(m)
}

// List returns the selected mechanics in declaration order
func (s Set) List() []Mechanic {
	var out []Mechanic
	for _, m := range AllMechanics {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s Set) String() string {
	var names []string
	for _, m := range s.List() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}
