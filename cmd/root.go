package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/wretched/internal/config"
	"github.com/arcanaland/wretched/internal/ctxlog"
)

// settings is the tool configuration after flags were applied
var settings = config.Default()

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "wretched",
	Short: "Compile solo journaling games into a single HTML file",
	Long: `Wretched compiles a game directory (config, cards, theme and story) into one
self-contained HTML file that plays offline in any browser.

A game directory holds config.yaml and cards.yaml (or .yml/.toml), and
optionally theme.yaml and story.md.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}
		if flags.Changed("log-format") {
			cfg.LogFormat, _ = flags.GetString("log-format")
		}
		if noColor, _ := flags.GetBool("no-color"); noColor {
			cfg.NoColor = true
		}
		if cfg.NoColor || !isTerminal(os.Stdout) {
			color.NoColor = true
		}
		settings = cfg

		logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")
	RootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	label    = color.New(color.FgCyan).SprintFunc()
)

func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okMark("✓"), fmt.Sprintf(format, args...))
}
