package enginegen

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/theme"
)

func intp(v int) *int { return &v }

func testSpec(systems ...string) *game.Spec {
	return &game.Spec{
		Game: &game.Info{Title: "The Last Lighthouse", Author: "Tester"},
		Mechanics: &game.Mechanics{
			Systems: systems,
			Tokens:  &game.TokensConfig{Name: "hope", Initial: 10, Floor: 0},
			Stability: &game.StabilityConfig{
				Name:     "tower",
				Initial:  100,
				Danger:   intp(50),
				Critical: intp(20),
			},
		},
	}
}

func testDeck(t *testing.T, title string) *deck.Deck {
	t.Helper()
	c := deck.Collection{}
	for _, suit := range card.Suits {
		c[suit] = map[string]deck.RawCard{}
		for _, rank := range card.Ranks {
			c[suit][rank] = deck.RawCard{Title: title + " " + rank, Tokens: -1, Blocks: 2}
		}
	}
	d, err := deck.Build(c)
	require.NoError(t, err)
	return d
}

func generate(t *testing.T, spec *game.Spec, d *deck.Deck) *Output {
	t.Helper()
	out, err := Generate(Input{Spec: spec, Deck: d, Tone: theme.Group{"won": "Dawn."}, Slug: "the-last-lighthouse"})
	require.NoError(t, err)
	return out
}

func TestGenerateData(t *testing.T) {
	out := generate(t, testSpec("deck", "dice", "tokens", "stability"), testDeck(t, "Card"))

	var data Data
	require.NoError(t, json.Unmarshal(out.Data, &data))

	assert.True(t, strings.HasPrefix(out.ID, "the-last-lighthouse-"))
	assert.Equal(t, out.ID, data.ID)
	assert.Len(t, data.Cards, 52)
	assert.Equal(t, "spades.A", data.Cards[0].ID)
	assert.Equal(t, "♠", data.Cards[0].Symbol)
	assert.Equal(t, []string{"deck", "dice", "stability", "tokens"}, slices.Sorted(slices.Values(data.Systems)))
	require.NotNil(t, data.Dice)
	assert.Equal(t, Dice{Count: 2, Sides: 6}, *data.Dice)
	require.NotNil(t, data.Stability)
	assert.Equal(t, 0.25, data.Stability.Risk[game.TierDanger])
	assert.Equal(t, 1, data.Stability.Penalty)
	assert.Equal(t, "Dawn.", data.Tone["won"])
	assert.Equal(t, []Predicate{
		{Name: "depleted", When: "tokens <= 0"},
		{Name: "collapsed", When: "stability <= 0"},
	}, data.Loss)
}

func TestGenerateScriptSubsystems(t *testing.T) {
	full := generate(t, testSpec("deck", "dice", "tokens", "stability"), testDeck(t, "Card")).Script
	assert.Contains(t, full, "function holds(")
	assert.Contains(t, full, "function pull(")
	assert.Contains(t, full, "function showDice(")
	assert.Contains(t, full, "state.tokens = clamp(")
	assert.Contains(t, full, `function (v) { return op("<=", v.tokens, 0); }`)
	assert.Contains(t, full, `function (v) { return op("<=", v.stability, 0); }`)

	bare := generate(t, testSpec("deck"), testDeck(t, "Card")).Script
	assert.NotContains(t, bare, "function pull(")
	assert.NotContains(t, bare, "function showDice(")
	assert.NotContains(t, bare, "state.tokens = clamp(")
	assert.NotContains(t, bare, "DATA.stability.initial")
	assert.Contains(t, bare, `function (v) { return op("==", v.deck_remaining, 0); }`)
}

func TestGenerateJournalToggle(t *testing.T) {
	spec := testSpec("deck")
	off := false
	spec.UI = &game.UI{Journal: &off}

	script := generate(t, spec, testDeck(t, "Card")).Script
	assert.NotContains(t, script, "bind('journal'")

	script = generate(t, testSpec("deck"), testDeck(t, "Card")).Script
	assert.Contains(t, script, "bind('journal'")
}

func TestGenerateDeterministic(t *testing.T) {
	spec := testSpec("deck", "dice", "tokens", "stability")
	spec.Special = map[string]game.Special{
		"fate":  {Name: "Fate", Die: 6, Success: []int{6}},
		"omen":  {Name: "Omen", Die: 4, Success: []int{1}},
		"storm": {Name: "Storm", Die: 8, Success: []int{7, 8}},
	}
	a := generate(t, spec, testDeck(t, "Card"))
	b := generate(t, spec, testDeck(t, "Card"))
	assert.Equal(t, a, b)

	c := generate(t, spec, testDeck(t, "Other"))
	assert.NotEqual(t, a.ID, c.ID)
}

func TestGenerateCustomPredicates(t *testing.T) {
	spec := testSpec("deck", "tokens")
	spec.Conditions = &game.Conditions{
		Win:  []game.Predicate{{Name: "aces", When: "ranks_drawn['A'] == 4 && tier == 'safe'", Message: "All aces."}},
		Loss: []game.Predicate{{Name: "hearts", When: "suits_drawn.hearts >= 13"}},
	}
	out := generate(t, spec, testDeck(t, "Card"))
	assert.Contains(t, out.Script, `and(op("==", at(v.ranks_drawn, "A"), 4), op("==", v.tier, "safe"))`)
	assert.Contains(t, out.Script, `op(">=", at(v.suits_drawn, "hearts"), 13)`)

	var data Data
	require.NoError(t, json.Unmarshal(out.Data, &data))
	assert.Equal(t, "All aces.", data.Win[0].Message)
}

func TestGenerateRejectsBadPredicate(t *testing.T) {
	spec := testSpec("deck")
	spec.Conditions = &game.Conditions{Loss: []game.Predicate{{Name: "broken", When: "tokens +"}}}
	_, err := Generate(Input{Spec: spec, Deck: testDeck(t, "Card")})
	assert.Error(t, err)
}

func TestGenerateDataIsScriptSafe(t *testing.T) {
	d := testDeck(t, "</script><script>alert(1)</script>")
	out := generate(t, testSpec("deck"), d)
	assert.NotContains(t, string(out.Data), "</script")
	assert.NotContains(t, out.Script, "</script")
}
