// Package interpret provides the "vtab interpret" command.
package interpret

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/klytics/voxtable/internal/command"
	"github.com/klytics/voxtable/internal/config"
	"github.com/klytics/voxtable/internal/output"
)

// Result pairs a transcript with the command it produced.
type Result struct {
	Transcript string          `json:"transcript" yaml:"transcript"`
	Command    command.Command `json:"command" yaml:"command"`
}

// NewCommand creates the "interpret" command.
func NewCommand() *cobra.Command {
	var (
		looseAdd  bool
		templates bool
	)

	cmd := &cobra.Command{
		Use:   "interpret [transcript...]",
		Short: "Show the command a transcript would produce",
		Long: `Interpret a transcript without changing any table.

With no arguments (or "-") each line of stdin is interpreted separately.

Example:
  vtab interpret "create a table with 3 columns named Name, Age and City"
  vtab interpret --json "add a row: John, 25"
  cat phrases.txt | vtab interpret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			lang, _ := cmd.Flags().GetString("lang")
			rt, err := config.Resolve(lang, jsonFlag)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("loose-add") {
				looseAdd = rt.Interpreter.LooseAdd
			}
			interp := command.New(command.WithLooseAdd(looseAdd))
			w := output.NewWriter(rt.Format).To(cmd.OutOrStdout())

			if templates {
				return listTemplates(w, cmd.OutOrStdout(), interp)
			}

			var transcripts []string
			if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
				transcripts, err = readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("could not read transcripts from stdin: %w", err)
				}
				if len(transcripts) == 0 {
					return fmt.Errorf("no transcript provided; pass text as arguments or pipe lines to stdin")
				}
			} else {
				transcripts = []string{strings.Join(args, " ")}
			}

			results := make([]Result, 0, len(transcripts))
			for _, t := range transcripts {
				results = append(results, Result{Transcript: t, Command: interp.Interpret(t)})
			}

			if w.Structured() {
				if len(results) == 1 {
					return w.WriteResult("interpret", results[0], "")
				}
				return w.WriteResult("interpret", results, "")
			}
			for _, r := range results {
				printResult(w, r, len(results) > 1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&looseAdd, "loose-add", false, `Treat any "add ..." phrase as a row (default from config)`)
	cmd.Flags().BoolVar(&templates, "templates", false, "List the phrase templates in priority order")
	return cmd
}

func printResult(w *output.Writer, r Result, showTranscript bool) {
	if showTranscript {
		w.WriteLn(color.New(color.Faint).Sprint(r.Transcript))
	}
	switch r.Command.Kind {
	case command.Unknown:
		w.WriteLn(color.New(color.FgYellow).Sprint(r.Command.String()))
	default:
		w.WriteLn(color.New(color.FgGreen).Sprint(r.Command.String()) +
			color.New(color.Faint).Sprintf("  (%s)", r.Command.Template))
	}
}

func listTemplates(w *output.Writer, dest io.Writer, interp *command.Interpreter) error {
	type entry struct {
		Name    string `json:"name" yaml:"name"`
		Kind    string `json:"kind" yaml:"kind"`
		Keyword string `json:"keyword" yaml:"keyword"`
		Pattern string `json:"pattern" yaml:"pattern"`
	}
	var entries []entry
	for _, t := range interp.Templates() {
		entries = append(entries, entry{t.Name, t.Kind.String(), t.Keyword, t.Pattern.String()})
	}
	if w.Structured() {
		return w.WriteResult("interpret templates", entries, "")
	}

	tw := tablewriter.NewWriter(dest)
	tw.SetHeader([]string{"#", "Template", "Kind", "Keyword"})
	tw.SetAutoFormatHeaders(false)
	for i, e := range entries {
		tw.Append([]string{fmt.Sprint(i + 1), e.Name, e.Kind, e.Keyword})
	}
	tw.Render()
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
