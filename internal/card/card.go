package card

import (
	"fmt"
	"strings"
)

// Suits in deck order
var Suits = []string{"spades", "hearts", "diamonds", "clubs"}

// Ranks in deck order
var Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// DeckSize is the number of distinct (suit, rank) pairs
const DeckSize = 52

// Card represents one playing card prompt
type Card struct {
	ID          string // Canonical ID (e.g., hearts.A, spades.10)
	Suit        string // spades, hearts, diamonds or clubs
	Rank        string // A, 2..10, J, Q, K
	Title       string
	Description string
	Tokens      int    // Signed token delta applied on reveal
	Blocks      int    // Block pull applied on reveal, never negative
	Special     string // Optional special-effect tag
}

// ID builds the canonical card ID for a suit and rank
func ID(suit, rank string) string {
	return suit + "." + rank
}

// SplitID splits a canonical card ID into suit and rank
func SplitID(cardID string) (string, string, error) {
	suit, rank, ok := strings.Cut(cardID, ".")
	if !ok {
		return "", "", fmt.Errorf("invalid card ID format: %s", cardID)
	}
	suit, ok = NormalizeSuit(suit)
	if !ok {
		return "", "", fmt.Errorf("suit not found: %s", suit)
	}
	rank, ok = NormalizeRank(rank)
	if !ok {
		return "", "", fmt.Errorf("rank not found: %s", rank)
	}
	return suit, rank, nil
}

// NormalizeSuit maps a suit key onto its canonical name
func NormalizeSuit(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suit := range Suits {
		if s == suit || s+"s" == suit {
			return suit, true
		}
	}
	return s, false
}

var rankAliases = map[string]string{
	"ace": "A", "a": "A", "1": "A",
	"two": "2", "three": "3", "four": "4", "five": "5", "six": "6",
	"seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"jack": "J", "j": "J",
	"queen": "Q", "q": "Q",
	"king": "K", "k": "K",
}

// NormalizeRank maps a rank key such as "ace" or "10" onto its canonical symbol
func NormalizeRank(r string) (string, bool) {
	r = strings.ToLower(strings.TrimSpace(r))
	if alias, ok := rankAliases[r]; ok {
		return alias, true
	}
	for _, rank := range Ranks {
		if r == rank {
			return rank, true
		}
	}
	return r, false
}

// IsRed reports whether the suit is printed in red
func IsRed(suit string) bool {
	return suit == "hearts" || suit == "diamonds"
}

// Symbol returns the pip symbol for a suit
func Symbol(suit string) string {
	switch suit {
	case "spades":
		return "♠"
	case "hearts":
		return "♥"
	case "diamonds":
		return "♦"
	case "clubs":
		return "♣"
	default:
		return "•"
	}
}

// Name returns a readable default name such as "Ace of Hearts"
func Name(suit, rank string) string {
	rankName := rank
	switch rank {
	case "A":
		rankName = "Ace"
	case "J":
		rankName = "Jack"
	case "Q":
		rankName = "Queen"
	case "K":
		rankName = "King"
	}
	return fmt.Sprintf("%s of %s", rankName, strings.ToUpper(suit[:1])+suit[1:])
}
