// Package engine is the reference implementation of the game's runtime rules.
// The script generated into every game file follows the same state machine;
// the engine lets the rules be exercised from Go and drives `simulate`.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/rules"
)

var (
	// ErrNotStarted indicates the game has no state yet
	ErrNotStarted = errors.New("game has not started")
	// ErrTerminal indicates the game is over and only export is possible
	ErrTerminal = errors.New("game is over")
	// ErrPendingDraws indicates the turn still has cards to reveal
	ErrPendingDraws = errors.New("cards remain to be drawn this turn")
	// ErrNothingToDraw indicates no draw is owed this turn
	ErrNothingToDraw = errors.New("roll before drawing")
	// ErrAwaitingRoll indicates a special card must be resolved first
	ErrAwaitingRoll = errors.New("a special card is waiting for its roll")
	// ErrNotAwaiting indicates no special card is waiting
	ErrNotAwaiting = errors.New("no special card is waiting for a roll")
	// ErrInvalidRoll indicates a submitted roll is outside the die's faces
	ErrInvalidRoll = errors.New("roll is outside the die")
	// ErrJournalDisabled indicates the game has no journal
	ErrJournalDisabled = errors.New("journal is disabled")
	// ErrTurnLimit indicates an automatic playthrough did not finish
	ErrTurnLimit = errors.New("turn limit reached")
)

// EventKind names what an Event records
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventRestored  EventKind = "restored"
	EventRolled    EventKind = "rolled"
	EventReshuffle EventKind = "reshuffled"
	EventDrew      EventKind = "drew"
	EventSpecial   EventKind = "special"
	EventPenalty   EventKind = "penalty"
	EventEnded     EventKind = "ended"
)

// Event records one step of play
type Event struct {
	Kind      EventKind
	Turn      int
	Card      string
	Dice      []int
	Roll      int
	Success   bool
	Tokens    int
	Stability int
	Message   string
}

// Engine applies player actions to a game's state
type Engine struct {
	spec   *game.Spec
	deck   *deck.Deck
	active game.Set
	loss   []*rules.Predicate
	win    []*rules.Predicate
	rng    *rand.Rand
	state  *State

	observers []func(Event)
}

// Option configures an Engine
type Option func(*Engine)

// WithSeed makes shuffles, dice and risk checks reproducible
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithObserver registers fn to receive every event
func WithObserver(fn func(Event)) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, fn)
	}
}

// New compiles the game's predicates and returns an engine in Setup
func New(spec *game.Spec, d *deck.Deck, opts ...Option) (*Engine, error) {
	env, err := rules.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("rules environment: %w", err)
	}
	e := &Engine{
		spec:   spec,
		deck:   d,
		active: spec.Active(),
	}
	if e.loss, err = compileAll(env, spec.LossPredicates()); err != nil {
		return nil, err
	}
	if e.win, err = compileAll(env, spec.WinPredicates()); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e, nil
}

func compileAll(env *rules.Env, preds []game.Predicate) ([]*rules.Predicate, error) {
	out := make([]*rules.Predicate, 0, len(preds))
	for _, p := range preds {
		c, err := env.Compile(p.Name, p.When)
		if err != nil {
			return nil, fmt.Errorf("predicate %s: %w", p.Name, err)
		}
		c.Message = p.Message
		out = append(out, c)
	}
	return out, nil
}

// Status reports the lifecycle phase
func (e *Engine) Status() Status {
	switch {
	case e.state == nil:
		return StatusSetup
	case e.state.Terminal == TerminalWon:
		return StatusWon
	case e.state.Terminal == TerminalLost:
		return StatusLost
	default:
		return StatusInProgress
	}
}

// State returns a copy of the current state, or nil in Setup
func (e *Engine) State() *State {
	if e.state == nil {
		return nil
	}
	return e.state.Clone()
}

// Tier returns the current risk tier
func (e *Engine) Tier() game.Tier {
	if e.state == nil {
		return game.TierSafe
	}
	return e.tier(e.state.Stability)
}

// Risk returns the penalty probability a block pull leaving stability at
// value would face
func (e *Engine) Risk(value int) float64 {
	if !e.active.Has(game.MechanicStability) || e.spec.Mechanics.Stability == nil {
		return 0
	}
	s := e.spec.Mechanics.Stability
	return s.Probability(s.TierOf(value))
}

// Start initialises the counters and shuffles the deck. Every other action
// starts the game implicitly.
func (e *Engine) Start() {
	if e.state != nil {
		return
	}
	s := &State{
		DeckOrder: e.deck.IDs(),
		History:   []string{},
		Terminal:  TerminalNone,
	}
	if m := e.spec.Mechanics; m != nil {
		if e.active.Has(game.MechanicTokens) && m.Tokens != nil {
			s.Tokens = m.Tokens.Initial
		}
		if e.active.Has(game.MechanicStability) && m.Stability != nil {
			s.Stability = m.Stability.Initial
		}
	}
	e.rng.Shuffle(len(s.DeckOrder), func(i, j int) {
		s.DeckOrder[i], s.DeckOrder[j] = s.DeckOrder[j], s.DeckOrder[i]
	})
	e.state = s
	e.emit(Event{Kind: EventStarted, Tokens: s.Tokens, Stability: s.Stability})
}

// Roll starts a new turn and returns the dice rolled. The sum of the dice,
// capped at the cards left, is the number of draws owed this turn.
func (e *Engine) Roll() ([]int, error) {
	e.Start()
	s := e.state
	if s.Terminal != TerminalNone {
		return nil, ErrTerminal
	}
	if s.Awaiting != "" {
		return nil, ErrAwaitingRoll
	}
	if s.Pending > 0 {
		return nil, ErrPendingDraws
	}

	if len(s.DeckOrder) == 0 && e.spec.Reshuffle() {
		s.DeckOrder = append(s.DeckOrder, s.History...)
		s.History = s.History[:0]
		e.rng.Shuffle(len(s.DeckOrder), func(i, j int) {
			s.DeckOrder[i], s.DeckOrder[j] = s.DeckOrder[j], s.DeckOrder[i]
		})
		e.emit(Event{Kind: EventReshuffle, Turn: s.Turn})
	}

	s.Turn++
	dice := []int{}
	n := 1
	if e.active.Has(game.MechanicDice) {
		count, sides := e.spec.Dice()
		n = 0
		for i := 0; i < count; i++ {
			d := e.rng.IntN(sides) + 1
			dice = append(dice, d)
			n += d
		}
	}
	s.Pending = min(n, len(s.DeckOrder))
	e.emit(Event{Kind: EventRolled, Turn: s.Turn, Dice: dice, Roll: n, Tokens: s.Tokens, Stability: s.Stability})

	e.evaluate()
	return dice, nil
}

// Draw reveals the top card. A card carrying a special rule is returned
// unresolved and must be followed by SubmitSpecialRoll.
func (e *Engine) Draw() (*card.Card, error) {
	if e.state == nil {
		return nil, ErrNothingToDraw
	}
	s := e.state
	if s.Terminal != TerminalNone {
		return nil, ErrTerminal
	}
	if s.Awaiting != "" {
		return nil, ErrAwaitingRoll
	}
	if s.Pending == 0 || len(s.DeckOrder) == 0 {
		return nil, ErrNothingToDraw
	}

	id := s.DeckOrder[0]
	s.DeckOrder = s.DeckOrder[1:]
	s.History = append(s.History, id)
	s.Pending--

	c, err := e.deck.GetCard(id)
	if err != nil {
		return nil, err
	}
	if _, ok := e.spec.Special[c.Special]; ok && c.Special != "" {
		s.Awaiting = id
		e.emit(Event{Kind: EventDrew, Turn: s.Turn, Card: id, Tokens: s.Tokens, Stability: s.Stability})
		return c, nil
	}

	e.apply(c.Tokens, c.Blocks)
	e.emit(Event{Kind: EventDrew, Turn: s.Turn, Card: id, Tokens: s.Tokens, Stability: s.Stability})
	e.evaluate()
	return c, nil
}

// SubmitSpecialRoll resolves the waiting special card. A roll of 0 lets the
// engine roll the rule's die.
func (e *Engine) SubmitSpecialRoll(roll int) (game.Outcome, error) {
	if e.state == nil {
		return game.Outcome{}, ErrNotAwaiting
	}
	s := e.state
	if s.Terminal != TerminalNone {
		return game.Outcome{}, ErrTerminal
	}
	if s.Awaiting == "" {
		return game.Outcome{}, ErrNotAwaiting
	}
	c, err := e.deck.GetCard(s.Awaiting)
	if err != nil {
		return game.Outcome{}, err
	}
	rule := e.spec.Special[c.Special]
	if roll == 0 {
		roll = e.rng.IntN(rule.Die) + 1
	}
	if roll < 1 || roll > rule.Die {
		return game.Outcome{}, fmt.Errorf("%w: %d on a d%d", ErrInvalidRoll, roll, rule.Die)
	}

	success := rule.Hits(roll)
	outcome := rule.OnFailure
	if success {
		outcome = rule.OnSuccess
	}
	s.Awaiting = ""
	e.apply(outcome.Tokens, outcome.Blocks)
	e.emit(Event{
		Kind: EventSpecial, Turn: s.Turn, Card: c.ID, Roll: roll, Success: success,
		Tokens: s.Tokens, Stability: s.Stability, Message: outcome.Text,
	})

	switch outcome.End {
	case string(TerminalWon):
		e.end(TerminalWon, outcome.Text)
	case string(TerminalLost):
		e.end(TerminalLost, outcome.Text)
	default:
		e.evaluate()
	}
	return outcome, nil
}

// WriteJournal replaces the journal text
func (e *Engine) WriteJournal(text string) error {
	if !e.journal() {
		return ErrJournalDisabled
	}
	e.Start()
	if e.state.Terminal != TerminalNone {
		return ErrTerminal
	}
	e.state.Journal = text
	return nil
}

func (e *Engine) journal() bool {
	return e.spec.UI == nil || e.spec.UI.Journal == nil || *e.spec.UI.Journal
}

// PlayTurn rolls and reveals every card owed this turn, resolving special
// cards with engine rolls
func (e *Engine) PlayTurn() error {
	if e.state != nil && e.state.Awaiting != "" {
		if _, err := e.SubmitSpecialRoll(0); err != nil {
			return err
		}
	}
	if e.state == nil || (e.state.Pending == 0 && e.state.Terminal == TerminalNone) {
		if _, err := e.Roll(); err != nil {
			return err
		}
	}
	for e.state.Terminal == TerminalNone && e.state.Pending > 0 {
		if _, err := e.Draw(); err != nil {
			return err
		}
		if e.state.Awaiting != "" {
			if _, err := e.SubmitSpecialRoll(0); err != nil {
				return err
			}
		}
	}
	return nil
}

// Play runs whole turns until the game ends or maxTurns turns have passed
func (e *Engine) Play(maxTurns int) error {
	for i := 0; i < maxTurns; i++ {
		if e.Status() == StatusWon || e.Status() == StatusLost {
			return nil
		}
		if err := e.PlayTurn(); err != nil {
			return err
		}
	}
	if e.Status() == StatusWon || e.Status() == StatusLost {
		return nil
	}
	return ErrTurnLimit
}

// apply changes the counters by a card's delta and performs its block pull
func (e *Engine) apply(tokens, blocks int) {
	s := e.state
	m := e.spec.Mechanics
	if e.active.Has(game.MechanicTokens) && m.Tokens != nil {
		s.Tokens = clamp(s.Tokens+tokens, m.Tokens.AllowNegative)
	}
	if e.active.Has(game.MechanicStability) && m.Stability != nil && blocks > 0 {
		e.pull(blocks)
	}
}

// pull removes blocks from stability, then checks for the extra penalty at
// the tier the new value falls in
func (e *Engine) pull(blocks int) {
	s := e.state
	cfg := e.spec.Mechanics.Stability
	s.Stability = clamp(s.Stability-blocks, cfg.AllowNegative)

	p := cfg.Probability(cfg.TierOf(s.Stability))
	if p > 0 && e.rng.Float64() < p {
		s.Stability = clamp(s.Stability-cfg.Penalty(), cfg.AllowNegative)
		e.emit(Event{Kind: EventPenalty, Turn: s.Turn, Tokens: s.Tokens, Stability: s.Stability})
	}
}

func clamp(v int, allowNegative bool) int {
	if v < 0 && !allowNegative {
		return 0
	}
	return v
}

// evaluate checks the loss predicates, then the win predicates, and ends the
// game on the first that holds. A predicate that fails to evaluate counts as
// not holding.
func (e *Engine) evaluate() {
	s := e.state
	if s.Terminal != TerminalNone {
		return
	}
	v := e.vars(s)
	for _, p := range e.loss {
		if ok, err := p.Eval(v); err == nil && ok {
			e.end(TerminalLost, message(p))
			return
		}
	}
	for _, p := range e.win {
		if ok, err := p.Eval(v); err == nil && ok {
			e.end(TerminalWon, message(p))
			return
		}
	}
	if len(s.DeckOrder) == 0 && s.Pending == 0 && s.Awaiting == "" && !e.spec.Reshuffle() {
		e.end(TerminalLost, "deck exhausted")
	}
}

func message(p *rules.Predicate) string {
	if p.Message != "" {
		return p.Message
	}
	return p.Name
}

func (e *Engine) end(t Terminal, msg string) {
	e.state.Terminal = t
	e.state.Pending = 0
	e.state.Message = msg
	e.emit(Event{Kind: EventEnded, Turn: e.state.Turn, Tokens: e.state.Tokens, Stability: e.state.Stability, Message: msg})
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.observers {
		fn(ev)
	}
}
