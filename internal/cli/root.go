package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsmania/internal/config"
	"github.com/ppiankov/newsmania/internal/model"
)

// Version is set at build time with -ldflags "-X github.com/ppiankov/newsmania/internal/cli.Version=..."
var Version = "dev"

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any subcommand runs
	cfg = model.DefaultConfig()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "newsmania",
	Short: "Newsmania - news feeds with credibility scoring",
	Long: `Newsmania fetches news by category, rates each article's credibility
with transparent heuristics, and answers questions about articles.

A credibility score is a signal about sourcing and language, not a verdict
on whether a story is true.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsmania %s\n", Version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.newsmania/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.AddCommand(versionCmd)
}

// initConfig loads configuration and installs the logger
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	if err := config.InitLogger(loaded.Log); err != nil {
		return err
	}
	cfg = loaded

	if verbose {
		if used := config.Used(cfgFile); used != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", used)
		}
	}
	return nil
}
