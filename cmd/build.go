package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/arcanaland/wretched/internal/builder"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Compile a game directory into one HTML file",
	Long: `Build validates the game in the given directory and writes a single HTML file
containing the stylesheet, the story, the game data and the game engine.

The file is named after the game title unless --output is given.

Examples:
  wretched build ./last-lighthouse
  wretched build ./last-lighthouse -o dist/lighthouse.html --minify`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		minify := settings.Minify
		if cmd.Flags().Changed("minify") {
			minify, _ = cmd.Flags().GetBool("minify")
		}

		opts := builder.Options{Output: output, OutputDir: settings.OutputDir, Minify: minify}

		var bar *progressbar.ProgressBar
		if isTerminal(os.Stderr) {
			bar = progressbar.NewOptions(len(builder.Stages),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("building"),
				progressbar.OptionClearOnFinish(),
			)
			opts.OnStage = func(stage string) {
				bar.Describe(stage)
				_ = bar.Add(1)
			}
		}

		res, err := builder.Build(cmd.Context(), args[0], opts)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "%s %s\n", warnMark("!"), w)
		}
		success(cmd, "Built %s (%s, id %s)", res.Path, humanize.Bytes(uint64(res.Size)), res.ID)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("output", "o", "", "Output file (default <title-slug>.html)")
	buildCmd.Flags().BoolP("minify", "m", false, "Minify the generated HTML, CSS and script")
}
