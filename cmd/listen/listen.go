// Package listen provides the "vtab listen" command, which fills a table
// from a stream of transcripts.
package listen

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/voxtable/internal/config"
	"github.com/klytics/voxtable/internal/formats/export"
	"github.com/klytics/voxtable/internal/i18n"
	"github.com/klytics/voxtable/internal/output"
	"github.com/klytics/voxtable/internal/recognizer"
	"github.com/klytics/voxtable/internal/session"
	"github.com/klytics/voxtable/internal/watch"
)

// NewCommand creates the "listen" command.
func NewCommand() *cobra.Command {
	var (
		source    string
		watchDir  string
		outPath   string
		outFormat string
		showTable bool
		noBanner  bool
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Build a table from transcripts as they arrive",
		Long: `Read transcripts and apply every recognized command to the session table.

Each line is one finalized piece of speech. Lines that do not form a command
on their own are joined with the next ones until they do. Special lines:
  ~ text            partial result, shown but not interpreted
  !error <code>     recognition error (network, no-speech, aborted, not-allowed, ...)
  !end              the recognizer stopped on its own
  # comment         ignored

With --watch, every new or modified .txt file in the directory is read the
same way. Press Ctrl+C to stop.

Example:
  vtab listen --source session.txt --output people.xlsx
  vtab listen --source session.txt --output - --format xlsx > people.xlsx
  speech-to-text | vtab listen --show-table
  vtab listen --watch ./transcripts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			lang, _ := cmd.Flags().GetString("lang")
			rt, err := config.Resolve(lang, jsonFlag)
			if err != nil {
				return err
			}
			w := output.NewWriter(rt.Format).To(cmd.OutOrStdout())

			// With --output - stdout carries only the exported table.
			toStdout := outPath == "-"
			if toStdout {
				if w.Structured() {
					return fmt.Errorf("--output - cannot be combined with --json")
				}
				if !export.Supported(outFormat) {
					return fmt.Errorf("unsupported export format %q (supported: %s)", outFormat, strings.Join(export.SupportedFormats, ", "))
				}
			}

			sess := session.New(session.Options{
				Locale:     rt.Locale,
				LooseAdd:   rt.Interpreter.LooseAdd,
				Recognizer: rt.RecognizerConfig(),
				Out:        cmd.OutOrStdout(),
				Quiet:      w.Structured() || toStdout,
				ShowTable:  showTable,
			})

			src, closeSrc, err := openSource(cmd, rt, source, watchDir)
			if err != nil {
				return err
			}
			defer closeSrc()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !w.Structured() && !toStdout && !noBanner {
				sess.Banner()
				color.New(color.FgCyan).Fprintln(cmd.OutOrStdout(), sess.Messages().Get(i18n.Listening))
			}

			runErr := sess.Recognizer.Run(ctx, src)
			summary := sess.Summary()

			if toStdout {
				if !summary.Table.Empty() {
					opts := export.Options{RightToLeft: sess.Messages().RTL()}
					if err := export.Stream(summary.Table, outFormat, cmd.OutOrStdout(), opts); err != nil {
						return err
					}
				}
				if runErr != nil {
					return fmt.Errorf("listening stopped: %w", runErr)
				}
				return nil
			}

			if runErr != nil && !w.Structured() {
				sess.ReportError(runErr)
			}
			if outPath != "" && !summary.Table.Empty() {
				path, err := export.Export(summary.Table, outPath, export.Options{RightToLeft: sess.Messages().RTL()})
				if err != nil {
					return err
				}
				summary.Export = path
			}

			if w.Structured() {
				if runErr != nil {
					if err := output.FprintJSON(cmd.OutOrStdout(), output.Failure("listen", runErr, output.ExitSystemError)); err != nil {
						return err
					}
					return fmt.Errorf("listening stopped: %w", runErr)
				}
				return w.WriteResult("listen", summary, "")
			}

			if !showTable {
				summary.Table.Render(cmd.OutOrStdout(), sess.Messages().Get(i18n.TableEmpty))
			}
			if summary.Export != "" {
				color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), sess.Messages().Get(i18n.TableExported, summary.Export))
			}
			if runErr != nil {
				return fmt.Errorf("listening stopped: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "-", "Transcript file, or - for stdin")
	cmd.Flags().StringVar(&watchDir, "watch", "", "Watch a directory for transcript files instead")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Export the table when done (.csv, .xlsx, .json, .yaml, .md), or - for stdout")
	cmd.Flags().StringVar(&outFormat, "format", "csv", "Format for --output - ("+strings.Join(export.SupportedFormats, ", ")+")")
	cmd.Flags().BoolVar(&showTable, "show-table", false, "Print the table after every change")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "Skip the title and example commands")
	cmd.MarkFlagsMutuallyExclusive("source", "watch")
	return cmd
}

func openSource(cmd *cobra.Command, rt *config.Runtime, source, dir string) (recognizer.Source, func(), error) {
	if dir != "" {
		ws, err := watch.New(rt.WatchConfig(dir))
		if err != nil {
			return nil, nil, err
		}
		return ws, func() { ws.Close() }, nil
	}
	if source == "" || source == "-" {
		return recognizer.NewLineSource(cmd.InOrStdin()), func() {}, nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open transcript %q: %w", source, err)
	}
	return recognizer.NewLineSource(f), func() { f.Close() }, nil
}

