package deck

import (
	"fmt"
	"math"
	"sort"

	"github.com/arcanaland/wretched/internal/card"
)

// RawCard is a card entry exactly as decoded from the cards document. The
// numeric fields stay untyped so the validator can report bad values by path.
type RawCard struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	Tokens      any    `yaml:"tokens" toml:"tokens"`
	Blocks      any    `yaml:"blocks" toml:"blocks"`
	Special     string `yaml:"special" toml:"special"`
}

// Collection maps suit keys to rank keys to card entries, as authored
type Collection map[string]map[string]RawCard

// Entry is one authored card together with the keys it was found under
type Entry struct {
	SuitKey string
	RankKey string
	Suit    string // Canonical suit, empty when unknown
	Rank    string // Canonical rank, empty when unknown
	Card    RawCard
}

// Entries flattens the collection in a stable order (sorted by authored keys)
func (c Collection) Entries() []Entry {
	suitKeys := make([]string, 0, len(c))
	for k := range c {
		suitKeys = append(suitKeys, k)
	}
	sort.Strings(suitKeys)

	var out []Entry
	for _, sk := range suitKeys {
		suit, okSuit := card.NormalizeSuit(sk)
		rankKeys := make([]string, 0, len(c[sk]))
		for k := range c[sk] {
			rankKeys = append(rankKeys, k)
		}
		sort.Strings(rankKeys)
		for _, rk := range rankKeys {
			rank, okRank := card.NormalizeRank(rk)
			e := Entry{SuitKey: sk, RankKey: rk, Card: c[sk][rk]}
			if okSuit {
				e.Suit = suit
			}
			if okRank {
				e.Rank = rank
			}
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of authored entries
func (c Collection) Count() int {
	n := 0
	for _, ranks := range c {
		n += len(ranks)
	}
	return n
}

// AsInt converts a decoded numeric value to an int. Nil reads as zero.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case int32:
		return int(n), true
	default:
		return 0, false
	}
}

// Deck is the typed, complete 52-card deck of a game
type Deck struct {
	Cards []*card.Card
	byID  map[string]*card.Card
}

// Build converts a validated collection into a Deck in canonical suit/rank
// order. It fails if any pair is missing or any value is malformed.
func Build(c Collection) (*Deck, error) {
	found := make(map[string]RawCard)
	for _, e := range c.Entries() {
		if e.Suit == "" || e.Rank == "" {
			return nil, fmt.Errorf("unknown card %s.%s", e.SuitKey, e.RankKey)
		}
		id := card.ID(e.Suit, e.Rank)
		if _, dup := found[id]; dup {
			return nil, fmt.Errorf("duplicate card %s", id)
		}
		found[id] = e.Card
	}

	d := &Deck{byID: make(map[string]*card.Card, card.DeckSize)}
	for _, suit := range card.Suits {
		for _, rank := range card.Ranks {
			id := card.ID(suit, rank)
			raw, ok := found[id]
			if !ok {
				return nil, fmt.Errorf("missing card %s", id)
			}
			tokens, ok := AsInt(raw.Tokens)
			if !ok {
				return nil, fmt.Errorf("card %s: tokens is not an integer", id)
			}
			blocks, ok := AsInt(raw.Blocks)
			if !ok || blocks < 0 {
				return nil, fmt.Errorf("card %s: blocks is not a non-negative integer", id)
			}

			c := &card.Card{
				ID:          id,
				Suit:        suit,
				Rank:        rank,
				Title:       raw.Title,
				Description: raw.Description,
				Tokens:      tokens,
				Blocks:      blocks,
				Special:     raw.Special,
			}
			d.Cards = append(d.Cards, c)
			d.byID[id] = c
		}
	}
	return d, nil
}

// GetCard gets a card by its canonical ID. Aliases such as "hearts.ace" are
// accepted.
func (d *Deck) GetCard(cardID string) (*card.Card, error) {
	suit, rank, err := card.SplitID(cardID)
	if err != nil {
		return nil, err
	}
	c, ok := d.byID[card.ID(suit, rank)]
	if !ok {
		return nil, fmt.Errorf("card not found: %s", cardID)
	}
	return c, nil
}

// IDs returns the canonical IDs in deck order
func (d *Deck) IDs() []string {
	ids := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		ids[i] = c.ID
	}
	return ids
}
