package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/rules"
)

// Terminal is the end state of a game
type Terminal string

const (
	TerminalNone Terminal = "none"
	TerminalWon  Terminal = "won"
	TerminalLost Terminal = "lost"
)

// Status is the lifecycle phase of an engine
type Status int

const (
	StatusSetup Status = iota
	StatusInProgress
	StatusWon
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusSetup:
		return "setup"
	case StatusInProgress:
		return "in progress"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return "unknown"
	}
}

// State is the runtime state persisted between sessions. Its JSON form is
// the snapshot shared with the generated game file.
type State struct {
	DeckOrder []string `json:"deckOrder"`
	History   []string `json:"history"`
	Tokens    int      `json:"tokens"`
	Stability int      `json:"stability"`
	Turn      int      `json:"turn"`
	Terminal  Terminal `json:"terminal"`
	Journal   string   `json:"journal"`

	// Pending counts the cards still to be revealed this turn
	Pending int `json:"pending,omitempty"`
	// Awaiting names the revealed special card waiting for its roll
	Awaiting string `json:"awaiting,omitempty"`
	// Message explains how the game ended
	Message string `json:"message,omitempty"`
}

// ErrInvalidSnapshot indicates a snapshot could not be read or does not
// describe a reachable state of this game.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

var requiredKeys = []string{"deckOrder", "history", "tokens", "stability", "turn", "terminal", "journal"}

// Clone returns a deep copy of s
func (s *State) Clone() *State {
	c := *s
	c.DeckOrder = append([]string{}, s.DeckOrder...)
	c.History = append([]string{}, s.History...)
	return &c
}

// Export serialises the current state
func (e *Engine) Export() ([]byte, error) {
	if e.state == nil {
		return nil, ErrNotStarted
	}
	return json.Marshal(e.state)
}

// Import replaces the current state with a snapshot. On error the engine is
// left unchanged.
func (e *Engine) Import(data []byte) error {
	s, err := e.decode(data)
	if err != nil {
		return err
	}
	e.state = s
	e.emit(Event{Kind: EventRestored, Turn: s.Turn, Tokens: s.Tokens, Stability: s.Stability})
	return nil
}

func (e *Engine) decode(data []byte) (*State, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for _, k := range requiredKeys {
		raw, ok := keys[k]
		if !ok || bytes.Equal(raw, []byte("null")) {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidSnapshot, k)
		}
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := e.check(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &s, nil
}

// check verifies that s describes a state this game can reach
func (e *Engine) check(s *State) error {
	seen := make(map[string]bool, len(s.DeckOrder)+len(s.History))
	for _, list := range [][]string{s.DeckOrder, s.History} {
		for _, id := range list {
			c, err := e.deck.GetCard(id)
			if err != nil || c.ID != id {
				return fmt.Errorf("unknown card %q", id)
			}
			if seen[id] {
				return fmt.Errorf("card %s appears twice", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != len(e.deck.Cards) {
		return fmt.Errorf("%d of %d cards accounted for", len(seen), len(e.deck.Cards))
	}

	switch s.Terminal {
	case TerminalNone, TerminalWon, TerminalLost:
	default:
		return fmt.Errorf("unknown terminal state %q", s.Terminal)
	}
	if s.Turn < 0 {
		return fmt.Errorf("turn is negative")
	}
	if s.Pending < 0 || s.Pending > len(s.DeckOrder) {
		return fmt.Errorf("pending %d is out of range", s.Pending)
	}

	m := e.spec.Mechanics
	if s.Tokens < 0 && (m == nil || m.Tokens == nil || !m.Tokens.AllowNegative) {
		return fmt.Errorf("tokens is negative")
	}
	if s.Stability < 0 && (m == nil || m.Stability == nil || !m.Stability.AllowNegative) {
		return fmt.Errorf("stability is negative")
	}

	if s.Awaiting != "" {
		if len(s.History) == 0 || s.History[len(s.History)-1] != s.Awaiting {
			return fmt.Errorf("awaiting %s is not the last revealed card", s.Awaiting)
		}
		c, _ := e.deck.GetCard(s.Awaiting)
		if _, ok := e.spec.Special[c.Special]; !ok {
			return fmt.Errorf("awaiting %s has no special rule", s.Awaiting)
		}
	}
	return nil
}

// vars builds the predicate view of s
func (e *Engine) vars(s *State) rules.Vars {
	v := rules.Vars{
		Tokens:        s.Tokens,
		Stability:     s.Stability,
		Turn:          s.Turn,
		DeckRemaining: len(s.DeckOrder),
		Drawn:         len(s.History),
		Tier:          string(e.tier(s.Stability)),
		RanksDrawn:    map[string]int{},
		SuitsDrawn:    map[string]int{},
	}
	for _, id := range s.History {
		c, err := e.deck.GetCard(id)
		if err != nil {
			continue
		}
		v.RanksDrawn[c.Rank]++
		v.SuitsDrawn[c.Suit]++
	}
	return v
}

func (e *Engine) tier(stability int) game.Tier {
	if !e.active.Has(game.MechanicStability) || e.spec.Mechanics.Stability == nil {
		return game.TierSafe
	}
	return e.spec.Mechanics.Stability.TierOf(stability)
}
