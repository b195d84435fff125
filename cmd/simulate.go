package cmd

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wretched/internal/deck"
	"github.com/arcanaland/wretched/internal/engine"
	"github.com/arcanaland/wretched/internal/loader"
	"github.com/arcanaland/wretched/internal/validator"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [path]",
	Short: "Play a game automatically and print what happens",
	Long: `Simulate plays a game with the same rules as the generated file. Special
cards are resolved with random rolls. Use --seed to replay the same game,
--from to continue a game exported from the browser, and --export to save
the final state in the same format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loader.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		results, err := validator.NewValidator(p.Spec, p.Cards, p.Theme).Validate()
		if err != nil {
			return err
		}
		if err := results.Fault(); err != nil {
			return err
		}
		d, err := deck.Build(p.Cards)
		if err != nil {
			return err
		}

		seed := settings.Seed
		if cmd.Flags().Changed("seed") {
			seed, _ = cmd.Flags().GetUint64("seed")
		}
		if seed == 0 {
			seed = rand.Uint64()
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		out := cmd.OutOrStdout()

		opts := []engine.Option{engine.WithSeed(seed)}
		if !quiet {
			opts = append(opts, engine.WithObserver(func(ev engine.Event) { printEvent(out, d, ev) }))
		}
		e, err := engine.New(p.Spec, d, opts...)
		if err != nil {
			return err
		}

		if from, _ := cmd.Flags().GetString("from"); from != "" {
			data, err := os.ReadFile(from)
			if err != nil {
				return err
			}
			if err := e.Import(data); err != nil {
				return fmt.Errorf("%s: %w", from, err)
			}
		}

		maxTurns, _ := cmd.Flags().GetInt("max-turns")
		if maxTurns < 1 {
			return fmt.Errorf("--max-turns must be at least 1")
		}
		playErr := e.Play(maxTurns)
		if playErr != nil && !errors.Is(playErr, engine.ErrTurnLimit) {
			return playErr
		}

		if path, _ := cmd.Flags().GetString("export"); path != "" {
			data, err := e.Export()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("error writing %s: %w", path, err)
			}
		}

		s := e.State()
		switch e.Status() {
		case engine.StatusWon:
			success(cmd, "Won after %d turns: %s (seed %d)", s.Turn, s.Message, seed)
		case engine.StatusLost:
			fmt.Fprintf(out, "%s Lost after %d turns: %s (seed %d)\n", failMark("✗"), s.Turn, s.Message, seed)
		default:
			fmt.Fprintf(out, "%s Stopped after %d turns without an ending (seed %d)\n", warnMark("!"), s.Turn, seed)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Uint64("seed", 0, "Seed for shuffles and rolls (0 picks one)")
	simulateCmd.Flags().String("from", "", "Continue from an exported game file")
	simulateCmd.Flags().String("export", "", "Write the final state to this file")
	simulateCmd.Flags().Int("max-turns", 500, "Stop after this many turns")
	simulateCmd.Flags().BoolP("quiet", "q", false, "Only print the outcome")
}

func printEvent(w io.Writer, d *deck.Deck, ev engine.Event) {
	switch ev.Kind {
	case engine.EventStarted, engine.EventRestored:
		fmt.Fprintf(w, "%s game %s\n", label("·"), ev.Kind)
	case engine.EventReshuffle:
		fmt.Fprintf(w, "%s deck reshuffled\n", label("·"))
	case engine.EventRolled:
		if len(ev.Dice) == 0 {
			fmt.Fprintf(w, "%s turn %d\n", label("#"), ev.Turn)
			return
		}
		dice := make([]string, len(ev.Dice))
		for i, n := range ev.Dice {
			dice[i] = fmt.Sprint(n)
		}
		fmt.Fprintf(w, "%s turn %d: rolled %s = %d\n", label("#"), ev.Turn, strings.Join(dice, "+"), ev.Roll)
	case engine.EventDrew:
		title := ev.Card
		if c, err := d.GetCard(ev.Card); err == nil {
			title = fmt.Sprintf("%s %s", ev.Card, c.Title)
		}
		fmt.Fprintf(w, "    %s  tokens %d  stability %d\n", title, ev.Tokens, ev.Stability)
	case engine.EventSpecial:
		result := failMark("failure")
		if ev.Success {
			result = okMark("success")
		}
		fmt.Fprintf(w, "    %s rolled %d: %s\n", ev.Card, ev.Roll, result)
	case engine.EventPenalty:
		fmt.Fprintf(w, "    %s risk check hit, stability %d\n", warnMark("!"), ev.Stability)
	case engine.EventEnded:
		fmt.Fprintf(w, "%s game over: %s\n", label("·"), ev.Message)
	}
}
