package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wretched/internal/config"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the wretched configuration file",
	Long: `The configuration file lives at $XDG_CONFIG_HOME/wretched/config.toml.
Every value can be overridden with a WRETCHED_* environment variable,
e.g. WRETCHED_MINIFY=true.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := config.GetConfigFilePath()
		if err := config.WriteDefault(path, force); err != nil {
			return err
		}
		success(cmd, "Config file initialized at: %s", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", label("file:      "), config.GetConfigFilePath())
		fmt.Fprintf(out, "%s %t\n", label("minify:    "), settings.Minify)
		fmt.Fprintf(out, "%s %s\n", label("output_dir:"), settings.OutputDir)
		fmt.Fprintf(out, "%s %s\n", label("log_level: "), settings.LogLevel)
		fmt.Fprintf(out, "%s %s\n", label("log_format:"), settings.LogFormat)
		fmt.Fprintf(out, "%s %t\n", label("no_color:  "), settings.NoColor)
		fmt.Fprintf(out, "%s %d\n", label("seed:      "), settings.Seed)
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
