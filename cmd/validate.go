package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wretched/internal/loader"
	"github.com/arcanaland/wretched/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a game directory",
	Long: `Validate checks a game directory without building it. Every problem is
reported at once: missing fields, the 52 cards, thresholds, predicates and
theme values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gamePath := args[0]

		p, err := loader.Load(cmd.Context(), gamePath)
		if err != nil {
			return err
		}

		v := validator.NewValidator(p.Spec, p.Cards, p.Theme)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "Warnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%s %d. %s\n", warnMark("!"), i+1, warn)
			}
		}
		if err := results.Fault(); err != nil {
			return err
		}

		success(cmd, "Game '%s' is valid", p.Spec.Title())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
