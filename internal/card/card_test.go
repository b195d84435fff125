package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitID(t *testing.T) {
	tests := []struct {
		in         string
		suit, rank string
	}{
		{"hearts.A", "hearts", "A"},
		{"spades.10", "spades", "10"},
		{"heart.ace", "hearts", "A"},
		{"Diamonds.queen", "diamonds", "Q"},
		{"clubs.k", "clubs", "K"},
		{"clubs.1", "clubs", "A"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			suit, rank, err := SplitID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.suit, suit)
			assert.Equal(t, tt.rank, rank)
		})
	}
}

func TestSplitIDErrors(t *testing.T) {
	_, _, err := SplitID("heartsA")
	assert.ErrorContains(t, err, "invalid card ID format")

	_, _, err = SplitID("stars.A")
	assert.ErrorContains(t, err, "suit not found: stars")

	_, _, err = SplitID("hearts.11")
	assert.ErrorContains(t, err, "rank not found: 11")
}

func TestDeckShape(t *testing.T) {
	assert.Equal(t, DeckSize, len(Suits)*len(Ranks))
	seen := map[string]bool{}
	for _, s := range Suits {
		for _, r := range Ranks {
			seen[ID(s, r)] = true
		}
	}
	assert.Len(t, seen, DeckSize)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Ace of Hearts", Name("hearts", "A"))
	assert.Equal(t, "10 of Spades", Name("spades", "10"))
	assert.Equal(t, "♦", Symbol("diamonds"))
	assert.Equal(t, "•", Symbol("stars"))
	assert.True(t, IsRed("diamonds"))
	assert.False(t, IsRed("clubs"))
}
