// Package config provides "vtab config", which inspects and edits the
// settings read by listen, shell and interpret.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/klytics/voxtable/internal/config"
	"github.com/klytics/voxtable/internal/output"
)

// NewCommand returns the config command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit vtab settings",
		Long: `Inspect and edit the settings vtab reads on every run.

Values come from three places, highest priority first:
  VTAB_* environment variables   e.g. VTAB_LOCALE=ar, VTAB_WATCH_DEBOUNCE_MS=200
  ~/.vtab/config.yaml            written by "init" and "set"
  built-in defaults

Example:
  vtab config set recognizer.max_retries 5
  vtab config get locale
  vtab config show --json`,
	}

	cmd.AddCommand(
		initCommand(),
		showCommand(),
		getCommand(),
		setCommand(),
		resetCommand(),
		pathCommand(),
		validateCommand(),
		envCommand(),
	)
	return cmd
}

// writerFor honors --json, then output.format. An unparsable format falls
// back to text so that the config commands can still repair it.
func writerFor(cmd *cobra.Command) *output.Writer {
	format, err := output.ParseFormat(viper.GetString("output.format"))
	if err != nil {
		format = output.FormatText
	}
	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		format = output.FormatJSON
	}
	return output.NewWriter(format).To(cmd.OutOrStdout())
}

func completeKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return lo.Filter(config.Keys(), func(k string, _ int) bool {
		return strings.HasPrefix(k, toComplete)
	}), cobra.ShellCompDirectiveNoFileComp
}

func lookup(key string) (config.Setting, error) {
	config.Load()
	s, ok := config.Lookup(key)
	if !ok {
		return s, fmt.Errorf("unknown config key %q (see 'vtab config show')", key)
	}
	return s, nil
}

func initCommand() *cobra.Command {
	var defaultsOnly bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Choose language, add matching and retries step by step",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Load()
			if defaultsOnly {
				if err := config.WizardNonInteractive(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote defaults to %s\n", config.ConfigPath())
				return nil
			}
			return config.Wizard(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&defaultsOnly, "no-interactive", false, "Write the defaults without asking")
	return cmd
}

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List every setting with its value and origin",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Load()
			settings := config.Settings()

			w := writerFor(cmd)
			if w.Structured() {
				return w.WriteResult("config show", settings, "")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", config.ConfigPath())
			renderSettings(out, settings)
			return nil
		},
	}
}

func renderSettings(out io.Writer, settings []config.Setting) {
	tw := tablewriter.NewWriter(out)
	tw.SetHeader([]string{"Key", "Value", "From", "Default"})
	tw.SetAutoFormatHeaders(false)
	for _, s := range settings {
		def := s.Default
		if s.Source == config.SourceDefault {
			def = ""
		}
		tw.Append([]string{s.Key, s.Value, s.Source, def})
	}
	tw.Render()
}

func getCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Print one setting",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lookup(args[0])
			if err != nil {
				return err
			}
			w := writerFor(cmd)
			if w.Structured() {
				return w.WriteResult("config get", s, "")
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Value)
			if s.Source != config.SourceDefault {
				color.New(color.Faint).Fprintf(cmd.ErrOrStderr(), "(from %s, default %s)\n", s.Source, s.Default)
			}
			return nil
		},
	}
}

func setCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Change one setting and save it",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			before, err := lookup(key)
			if err != nil {
				return err
			}
			if err := config.Set(key, value); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s -> %s\n", key, before.Value, value)
			if before.Source == config.SourceEnv {
				color.New(color.FgYellow).Fprintf(out, "%s is set in the environment and still takes precedence\n", before.Env)
			}
			return nil
		},
	}
}

func resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the config file and go back to defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ResetConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s; defaults restored\n", config.ConfigPath())
			return nil
		},
	}
}

func pathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the config file lives",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
		},
	}
}

var severityColor = map[string]color.Attribute{
	"error":   color.FgRed,
	"warning": color.FgYellow,
	"info":    color.FgGreen,
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check settings for invalid values and risky choices",
		RunE: func(cmd *cobra.Command, args []string) error {
			issues := config.Validate()
			failed := lo.CountBy(issues, func(i config.ConfigIssue) bool { return i.Severity == "error" })

			w := writerFor(cmd)
			if w.Structured() {
				if err := w.WriteResult("config validate", issues, ""); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, issue := range issues {
					color.New(severityColor[issue.Severity]).Fprintf(out, "%-7s %s\n", issue.Severity, issue.Message)
					if issue.Fix != "" {
						fmt.Fprintf(out, "        try: %s\n", issue.Fix)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d invalid setting(s)", failed)
			}
			return nil
		},
	}
}

func envCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the settings as VTAB_* shell exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Load()
			w := writerFor(cmd)
			if w.Structured() {
				return w.WriteResult("config env", config.ToEnv(), "")
			}
			for _, s := range config.Settings() {
				fmt.Fprintf(cmd.OutOrStdout(), "export %s=%q\n", s.Env, s.Value)
			}
			return nil
		},
	}
}
