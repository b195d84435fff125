package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/game"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func boolp(v bool) *bool { return &v }

func testSpec() *game.Spec {
	return &game.Spec{
		Game: &game.Info{Title: "The Last Lighthouse", Author: "Tester"},
		Mechanics: &game.Mechanics{
			Systems: []string{"deck", "dice", "tokens", "stability"},
			Tokens:  &game.TokensConfig{Name: "hope", Initial: 10},
			Stability: &game.StabilityConfig{
				Name:     "tower",
				Initial:  100,
				Danger:   intp(50),
				Critical: intp(20),
			},
		},
	}
}

func testDeck(t *testing.T, overrides map[string]deck.RawCard) *deck.Deck {
	t.Helper()
	c := deck.Collection{}
	for _, suit := range card.Suits {
		c[suit] = map[string]deck.RawCard{}
		for _, rank := range card.Ranks {
			raw := deck.RawCard{Title: card.Name(suit, rank)}
			if o, ok := overrides[card.ID(suit, rank)]; ok {
				raw = o
			}
			c[suit][rank] = raw
		}
	}
	d, err := deck.Build(c)
	require.NoError(t, err)
	return d
}

func newEngine(t *testing.T, spec *game.Spec, d *deck.Deck) *Engine {
	t.Helper()
	e, err := New(spec, d, WithSeed(7))
	require.NoError(t, err)
	return e
}

// stack moves ids to the top of the deck in order and owes one draw per id
func stack(e *Engine, ids ...string) {
	e.Start()
	rest := make([]string, 0, len(e.state.DeckOrder))
	skip := map[string]bool{}
	for _, id := range ids {
		skip[id] = true
	}
	for _, id := range e.state.DeckOrder {
		if !skip[id] {
			rest = append(rest, id)
		}
	}
	e.state.DeckOrder = append(append([]string{}, ids...), rest...)
	e.state.Turn++
	e.state.Pending = len(ids)
}

func TestDrawAppliesDelta(t *testing.T) {
	d := testDeck(t, map[string]deck.RawCard{
		"hearts.5": {Title: "Cracks", Tokens: -3, Blocks: 5},
	})
	e := newEngine(t, testSpec(), d)
	stack(e, "hearts.5")

	c, err := e.Draw()
	require.NoError(t, err)
	assert.Equal(t, "hearts.5", c.ID)

	s := e.State()
	assert.Equal(t, 7, s.Tokens)
	assert.Equal(t, 95, s.Stability)
	assert.Equal(t, game.TierSafe, e.Tier())
	assert.Equal(t, StatusInProgress, e.Status())
	assert.Equal(t, []string{"hearts.5"}, s.History)
}

func TestAllCardsDrawnWins(t *testing.T) {
	spec := &game.Spec{
		Game: &game.Info{Title: "Quiet Night", Author: "Tester"},
		Mechanics: &game.Mechanics{
			Systems: []string{"deck", "tokens"},
			Tokens:  &game.TokensConfig{Initial: 4},
		},
	}
	e := newEngine(t, spec, testDeck(t, nil))

	require.NoError(t, e.Play(100))

	s := e.State()
	assert.Equal(t, StatusWon, e.Status())
	assert.Equal(t, 4, s.Tokens)
	assert.Equal(t, 52, s.Turn)
	assert.Len(t, s.History, 52)
	assert.Empty(t, s.DeckOrder)
}

func TestSpecialSuccessReplacesDelta(t *testing.T) {
	spec := testSpec()
	spec.Special = map[string]game.Special{
		"fate": {
			Name:      "Fate",
			Die:       6,
			Success:   []int{6},
			OnSuccess: game.Outcome{Tokens: 2},
			OnFailure: game.Outcome{Tokens: -1, Blocks: 4},
		},
	}
	d := testDeck(t, map[string]deck.RawCard{
		"hearts.A": {Title: "The Ace", Tokens: -5, Blocks: 10, Special: "fate"},
	})

	t.Run("success", func(t *testing.T) {
		e := newEngine(t, spec, d)
		stack(e, "hearts.A")

		_, err := e.Draw()
		require.NoError(t, err)
		assert.Equal(t, "hearts.A", e.State().Awaiting)
		assert.Equal(t, 10, e.State().Tokens)
		assert.Equal(t, 100, e.State().Stability)

		_, err = e.Draw()
		assert.ErrorIs(t, err, ErrAwaitingRoll)

		outcome, err := e.SubmitSpecialRoll(6)
		require.NoError(t, err)
		assert.Equal(t, 2, outcome.Tokens)
		assert.Equal(t, 12, e.State().Tokens)
		assert.Equal(t, 100, e.State().Stability)
		assert.Empty(t, e.State().Awaiting)
	})

	t.Run("failure", func(t *testing.T) {
		e := newEngine(t, spec, d)
		stack(e, "hearts.A")

		_, err := e.Draw()
		require.NoError(t, err)
		_, err = e.SubmitSpecialRoll(3)
		require.NoError(t, err)
		assert.Equal(t, 9, e.State().Tokens)
		assert.Equal(t, 96, e.State().Stability)
	})

	t.Run("out of range", func(t *testing.T) {
		e := newEngine(t, spec, d)
		stack(e, "hearts.A")

		_, err := e.Draw()
		require.NoError(t, err)
		_, err = e.SubmitSpecialRoll(7)
		assert.ErrorIs(t, err, ErrInvalidRoll)
		assert.Equal(t, "hearts.A", e.State().Awaiting)
	})
}

func TestSpecialOutcomeEndsGame(t *testing.T) {
	spec := testSpec()
	spec.Special = map[string]game.Special{
		"doom": {Name: "Doom", Die: 6, Success: []int{1, 2, 3, 4, 5, 6}, OnSuccess: game.Outcome{End: "lost", Text: "The light fails."}},
	}
	d := testDeck(t, map[string]deck.RawCard{
		"spades.K": {Title: "The King", Special: "doom"},
	})
	e := newEngine(t, spec, d)
	stack(e, "spades.K")

	_, err := e.Draw()
	require.NoError(t, err)
	_, err = e.SubmitSpecialRoll(0)
	require.NoError(t, err)

	assert.Equal(t, StatusLost, e.Status())
	assert.Equal(t, "The light fails.", e.State().Message)
}

func TestLossTakesPrecedence(t *testing.T) {
	spec := testSpec()
	spec.Conditions = &game.Conditions{
		Win:  []game.Predicate{{Name: "dawn", When: "turn >= 1"}},
		Loss: []game.Predicate{{Name: "dusk", When: "turn >= 1", Message: "Night falls."}},
	}
	e := newEngine(t, spec, testDeck(t, nil))

	_, err := e.Roll()
	require.NoError(t, err)
	assert.Equal(t, StatusLost, e.Status())
	assert.Equal(t, "Night falls.", e.State().Message)
}

func TestLossPredicatesInOrder(t *testing.T) {
	spec := testSpec()
	spec.Conditions = &game.Conditions{
		Loss: []game.Predicate{
			{Name: "first", When: "turn == 1"},
			{Name: "second", When: "turn >= 1"},
		},
	}
	e := newEngine(t, spec, testDeck(t, nil))

	_, err := e.Roll()
	require.NoError(t, err)
	assert.Equal(t, "first", e.State().Message)
}

func TestRiskMonotonic(t *testing.T) {
	e := newEngine(t, testSpec(), testDeck(t, nil))

	for s1 := -10; s1 < 50; s1++ {
		for s2 := s1 + 1; s2 < 50; s2++ {
			assert.GreaterOrEqual(t, e.Risk(s1), e.Risk(s2), "stability %d vs %d", s1, s2)
		}
	}
	assert.Equal(t, 0.5, e.Risk(20))
	assert.Equal(t, 0.25, e.Risk(50))
	assert.Equal(t, 0.0, e.Risk(51))
}

func TestBlockPullPenalty(t *testing.T) {
	spec := testSpec()
	spec.Mechanics.Stability.Risk = &game.RiskConfig{Safe: floatp(1), Penalty: intp(3)}
	d := testDeck(t, map[string]deck.RawCard{
		"clubs.2": {Title: "Strain", Blocks: 5},
	})
	e := newEngine(t, spec, d)
	stack(e, "clubs.2")

	_, err := e.Draw()
	require.NoError(t, err)
	assert.Equal(t, 92, e.State().Stability)
}

func TestCountersClamp(t *testing.T) {
	d := testDeck(t, map[string]deck.RawCard{
		"clubs.3": {Title: "Loss", Tokens: -15},
	})

	t.Run("clamped", func(t *testing.T) {
		e := newEngine(t, testSpec(), d)
		stack(e, "clubs.3")
		_, err := e.Draw()
		require.NoError(t, err)
		assert.Equal(t, 0, e.State().Tokens)
		assert.Equal(t, StatusLost, e.Status())
	})

	t.Run("negative allowed", func(t *testing.T) {
		spec := testSpec()
		spec.Mechanics.Tokens.AllowNegative = true
		spec.Mechanics.Tokens.Floor = -100
		e := newEngine(t, spec, d)
		stack(e, "clubs.3")
		_, err := e.Draw()
		require.NoError(t, err)
		assert.Equal(t, -5, e.State().Tokens)
		assert.Equal(t, StatusInProgress, e.Status())
	})
}

func TestDeckExhausted(t *testing.T) {
	spec := &game.Spec{
		Game:       &game.Info{Title: "Long Night", Author: "Tester"},
		Mechanics:  &game.Mechanics{Systems: []string{"deck"}},
		Conditions: &game.Conditions{Win: []game.Predicate{{Name: "never", When: "tokens > 100"}}},
	}
	e := newEngine(t, spec, testDeck(t, nil))

	require.NoError(t, e.Play(100))
	assert.Equal(t, StatusLost, e.Status())
	assert.Equal(t, "deck exhausted", e.State().Message)
}

func TestReshuffle(t *testing.T) {
	spec := &game.Spec{
		Game: &game.Info{Title: "Endless", Author: "Tester"},
		Mechanics: &game.Mechanics{
			Systems: []string{"deck"},
			Deck:    &game.DeckConfig{Reshuffle: true},
		},
		Conditions: &game.Conditions{Win: []game.Predicate{{Name: "dawn", When: "turn == 60"}}},
	}
	e := newEngine(t, spec, testDeck(t, nil))

	require.NoError(t, e.Play(100))
	s := e.State()
	assert.Equal(t, StatusWon, e.Status())
	assert.Equal(t, 60, s.Turn)
	assert.Len(t, s.History, 7)
	assert.Len(t, s.DeckOrder, 45)
}

func TestPredicateErrorCountsAsFalse(t *testing.T) {
	spec := testSpec()
	spec.Conditions = &game.Conditions{
		Loss: []game.Predicate{{Name: "odd", When: "ranks_drawn['Z'] > 0"}},
	}
	e := newEngine(t, spec, testDeck(t, nil))

	_, err := e.Roll()
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, e.Status())
}

func TestTurnOrdering(t *testing.T) {
	e := newEngine(t, testSpec(), testDeck(t, nil))

	_, err := e.Draw()
	assert.ErrorIs(t, err, ErrNothingToDraw)

	dice, err := e.Roll()
	require.NoError(t, err)
	require.Len(t, dice, 2)
	for _, d := range dice {
		assert.True(t, d >= 1 && d <= 6)
	}
	assert.Equal(t, dice[0]+dice[1], e.State().Pending)

	_, err = e.Roll()
	assert.ErrorIs(t, err, ErrPendingDraws)

	_, err = e.SubmitSpecialRoll(3)
	assert.ErrorIs(t, err, ErrNotAwaiting)
}

func TestTerminalOnlyExports(t *testing.T) {
	spec := testSpec()
	spec.Conditions = &game.Conditions{Loss: []game.Predicate{{Name: "instant", When: "turn >= 1"}}}
	e := newEngine(t, spec, testDeck(t, nil))

	_, err := e.Roll()
	require.NoError(t, err)
	require.Equal(t, StatusLost, e.Status())

	_, err = e.Roll()
	assert.ErrorIs(t, err, ErrTerminal)
	_, err = e.Draw()
	assert.ErrorIs(t, err, ErrTerminal)
	assert.ErrorIs(t, e.WriteJournal("too late"), ErrTerminal)

	data, err := e.Export()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"terminal":"lost"`)
}

func TestJournal(t *testing.T) {
	e := newEngine(t, testSpec(), testDeck(t, nil))
	require.NoError(t, e.WriteJournal("The waves are loud tonight."))
	assert.Equal(t, "The waves are loud tonight.", e.State().Journal)

	spec := testSpec()
	spec.UI = &game.UI{Journal: boolp(false)}
	e = newEngine(t, spec, testDeck(t, nil))
	assert.ErrorIs(t, e.WriteJournal("x"), ErrJournalDisabled)
}

func TestSeedReproducible(t *testing.T) {
	var a, b []Event
	ea, err := New(testSpec(), testDeck(t, nil), WithSeed(42), WithObserver(func(ev Event) { a = append(a, ev) }))
	require.NoError(t, err)
	eb, err := New(testSpec(), testDeck(t, nil), WithSeed(42), WithObserver(func(ev Event) { b = append(b, ev) }))
	require.NoError(t, err)

	errA := ea.Play(200)
	errB := eb.Play(200)
	assert.Equal(t, errA, errB)
	assert.Equal(t, a, b)
	assert.Equal(t, ea.State(), eb.State())
}
