package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/loader"
)

var showCmd = &cobra.Command{
	Use:   "show [path] [card_id]",
	Short: "Display one card of a game",
	Long: `Show displays a card's title, deltas, special rule and description.
Use card IDs like 'hearts.A' or 'spades.10'; aliases such as 'hearts.ace'
and 'diamond.queen' are accepted.

Examples:
  wretched show ./last-lighthouse hearts.A
  wretched show ./last-lighthouse clubs.king`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loader.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		suit, rank, err := card.SplitID(args[1])
		if err != nil {
			return err
		}
		for _, e := range p.Cards.Entries() {
			if e.Suit == suit && e.Rank == rank {
				displayCard(cmd.OutOrStdout(), p.Spec, suit, rank, e.Card, terminalWidth())
				return nil
			}
		}
		return fmt.Errorf("card not found: %s", card.ID(suit, rank))
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}

// displayCard prints the card with its description wrapped to width
func displayCard(w io.Writer, spec *game.Spec, suit, rank string, raw deck.RawCard, width int) {
	symbol := card.Symbol(suit)
	if card.IsRed(suit) {
		symbol = color.RedString("%s", symbol)
	}

	var infoLines []string
	infoLines = append(infoLines, label("Card:  ")+color.HiWhiteString("%s %s", symbol, card.Name(suit, rank)))
	infoLines = append(infoLines, label("ID:    ")+color.HiWhiteString("%s", card.ID(suit, rank)))
	infoLines = append(infoLines, label("Title: ")+color.HiWhiteString("%s", raw.Title))
	infoLines = append(infoLines, label("Delta: ")+color.HiWhiteString("%s", deltaLabel(raw)))

	if raw.Special != "" {
		rule, ok := spec.Special[raw.Special]
		if ok {
			hits := make([]string, len(rule.Success))
			for i, n := range rule.Success {
				hits[i] = fmt.Sprint(n)
			}
			infoLines = append(infoLines, label("Rule:  ")+color.HiWhiteString("%s, d%d succeeds on %s", rule.Name, rule.Die, strings.Join(hits, ", ")))
		} else {
			infoLines = append(infoLines, label("Rule:  ")+color.YellowString("%s (not defined)", raw.Special))
		}
	}

	if raw.Description != "" {
		infoLines = append(infoLines, "")
		infoLines = append(infoLines, label("Description:"))
		infoLines = append(infoLines, wrapText(raw.Description, width-4)...)
	}

	fmt.Fprintln(w)
	for _, line := range infoLines {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w)
}

// wrapText wraps text to a specified width. Blank lines separate paragraphs.
func wrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	var result []string
	for i, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if i > 0 {
			result = append(result, "")
		}
		var currentLine string
		for _, word := range strings.Fields(para) {
			switch {
			case currentLine == "":
				currentLine = word
			case uniseg.StringWidth(currentLine)+1+uniseg.StringWidth(word) <= width:
				currentLine += " " + word
			default:
				result = append(result, currentLine)
				currentLine = word
			}
		}
		if currentLine != "" {
			result = append(result, currentLine)
		}
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}
