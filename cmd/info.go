package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wretched/internal/card"
	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/game"
	"github.com/arcanaland/wretched/internal/loader"
	"github.com/arcanaland/wretched/internal/validator"
)

var infoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Show a summary of a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loader.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		spec := p.Spec

		row := func(name, format string, a ...any) {
			fmt.Fprintf(out, "%s %s\n", label(fmt.Sprintf("%-11s", name+":")), fmt.Sprintf(format, a...))
		}
		if g := spec.Game; g != nil {
			row("Title", "%s", g.Title)
			if g.Subtitle != "" {
				row("Subtitle", "%s", g.Subtitle)
			}
			row("Author", "%s", g.Author)
			if g.Version != "" {
				row("Version", "%s", g.Version)
			}
		}
		row("Systems", "%s", spec.Active())
		if spec.Active().Has(game.MechanicDice) {
			count, sides := spec.Dice()
			row("Dice", "%dd%d", count, sides)
		}
		if m := spec.Mechanics; m != nil {
			if t := m.Tokens; t != nil && spec.Active().Has(game.MechanicTokens) {
				row("Tokens", "%s starts at %d (floor %d)", t.Name, t.Initial, t.Floor)
			}
			if s := m.Stability; s != nil && spec.Active().Has(game.MechanicStability) {
				row("Stability", "%s starts at %d (danger %s, critical %s)", s.Name, s.Initial, optional(s.Danger), optional(s.Critical))
			}
		}
		row("Layout", "%s", spec.Layout())
		row("Cards", "%d of %d defined", definedCards(p.Cards), card.DeckSize)
		if len(spec.Special) > 0 {
			row("Special", "%s", strings.Join(sortedSpecials(spec), ", "))
		}
		for _, pr := range spec.LossPredicates() {
			row("Loss", "%s: %s", pr.Name, pr.When)
		}
		for _, pr := range spec.WinPredicates() {
			row("Win", "%s: %s", pr.Name, pr.When)
		}

		results, err := validator.NewValidator(spec, p.Cards, p.Theme).Validate()
		if err != nil {
			return err
		}
		if results.Valid() {
			fmt.Fprintf(out, "%s ready to build\n", okMark("✓"))
		} else {
			fmt.Fprintf(out, "%s %d validation error(s), run 'wretched validate %s'\n", failMark("✗"), len(results.Errors), args[0])
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

// definedCards counts the distinct known cards in the collection
func definedCards(c deck.Collection) int {
	seen := map[string]bool{}
	for _, e := range c.Entries() {
		if e.Suit != "" && e.Rank != "" {
			seen[card.ID(e.Suit, e.Rank)] = true
		}
	}
	return len(seen)
}

func optional(v *int) string {
	if v == nil {
		return "unset"
	}
	return fmt.Sprint(*v)
}

func sortedSpecials(spec *game.Spec) []string {
	var out []string
	for tag, s := range spec.Special {
		out = append(out, fmt.Sprintf("%s (d%d)", tag, s.Die))
	}
	slices.Sort(out)
	return out
}
