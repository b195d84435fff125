package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/loader"
)

// deckCmd prints the card grid of a game
var deckCmd = &cobra.Command{
	Use:   "deck [path]",
	Short: "Show the 52 cards of a game as a table",
	Long: `Deck prints one row per rank and one column per suit. Each cell holds the
card title followed by its token delta and block pull, e.g. "The Storm -2/3".
Cards that are missing are shown as "-".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loader.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		writeDeckTable(cmd.OutOrStdout(), p.Cards, terminalWidth())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
}

// writeDeckTable renders the collection as a rank x suit grid fitting width
func writeDeckTable(w io.Writer, c deck.Collection, width int) {
	cells := map[string]deck.RawCard{}
	for _, e := range c.Entries() {
		if e.Suit == "" || e.Rank == "" {
			continue
		}
		id := card.ID(e.Suit, e.Rank)
		if _, dup := cells[id]; !dup {
			cells[id] = e.Card
		}
	}

	cellWidth := max((width-4-3*len(card.Suits))/len(card.Suits), 12)
	title := cases.Title(language.English)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	header := []string{""}
	for _, suit := range card.Suits {
		header = append(header, card.Symbol(suit)+" "+title.String(suit))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, rank := range card.Ranks {
		row := []string{rank}
		for _, suit := range card.Suits {
			raw, ok := cells[card.ID(suit, rank)]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, truncate(raw.Title, cellWidth-len(deltaLabel(raw))-1)+" "+deltaLabel(raw))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// deltaLabel formats a card's token delta and block pull as "+1/2"
func deltaLabel(raw deck.RawCard) string {
	tokens, ok := deck.AsInt(raw.Tokens)
	if !ok {
		return "?/?"
	}
	out := fmt.Sprintf("%+d", tokens)
	blocks, ok := deck.AsInt(raw.Blocks)
	if !ok {
		return out + "/?"
	}
	out = fmt.Sprintf("%s/%d", out, blocks)
	if raw.Special != "" {
		out += "*"
	}
	return out
}

// truncate shortens s to at most n display columns
func truncate(s string, n int) string {
	if n < 1 {
		return ""
	}
	if uniseg.StringWidth(s) <= n {
		return s
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > n-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	return b.String() + "…"
}
