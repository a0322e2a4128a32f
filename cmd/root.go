// Package cmd contains all CLI commands for the vtab binary.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/klytics/voxtable/cmd/completion"
	cmdconfig "github.com/klytics/voxtable/cmd/config"
	"github.com/klytics/voxtable/cmd/interpret"
	"github.com/klytics/voxtable/cmd/listen"
	cmdshell "github.com/klytics/voxtable/cmd/shell"
	"github.com/klytics/voxtable/cmd/version"
	"github.com/klytics/voxtable/internal/config"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
	lang       string
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vtab",
		Short: "Build tables by speaking to them",
		Long: `vtab turns spoken commands into a data table.

Say (or type, or pipe in) phrases like:
  Create a table with 3 columns named Name, Age and City
  Add a row: John, 25, Delhi

Transcripts come from stdin, a file, a watched directory or the
interactive shell. English and Arabic commands are understood.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
			config.Load()
			if noColor || !viper.GetBool("output.color") {
				color.NoColor = true
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", os.Getenv("VTAB_LANG"), "Message language: en | ar | auto (default from config)")

	// Register subcommands
	rootCmd.AddCommand(interpret.NewCommand())
	rootCmd.AddCommand(listen.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
