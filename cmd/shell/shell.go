// Package shell provides the "vtab shell" interactive REPL command.
package shell

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/voxtable/internal/config"
	"github.com/klytics/voxtable/internal/i18n"
	"github.com/klytics/voxtable/internal/session"
	shellpkg "github.com/klytics/voxtable/internal/shell"
)

// NewCommand creates the "shell" command.
func NewCommand() *cobra.Command {
	var evalLines []string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive vtab shell",
		Long: `Start an interactive REPL where every line you type is treated as speech.

Built-ins: help, show, export [path], clear, lang en|ar, history, exit.
The table lives until you exit.

Example:
  vtab shell
  vtab shell --eval "create a table with 2 columns named Name, Age" --eval "add a row: Asha, 31" --eval show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			rt, err := config.Resolve(lang, false)
			if err != nil {
				return err
			}

			sess := session.New(session.Options{
				Locale:     rt.Locale,
				LooseAdd:   rt.Interpreter.LooseAdd,
				Recognizer: rt.RecognizerConfig(),
				Out:        cmd.OutOrStdout(),
			})

			sh, err := shellpkg.NewSession(sess.Table, sess.Messages())
			if err != nil {
				return err
			}
			sh.OnLocale = sess.SetMessages
			sh.OnClear = sess.Recognizer.Reset
			sh.ExportPath = rt.Output.ExportPath
			sh.Out = cmd.OutOrStdout()

			if len(evalLines) > 0 {
				sh.Reader = shellpkg.NewScript(evalLines...)
			} else {
				if err := sh.Open(); err != nil {
					return err
				}
				sess.Out = sh.Out
			}
			defer sh.Close()

			if err := sess.Recognizer.Run(cmd.Context(), sh); err != nil {
				sess.ReportError(err)
				return fmt.Errorf("listening stopped: %w", err)
			}
			if u := strings.TrimSpace(sess.Recognizer.Utterance()); u != "" && len(evalLines) > 0 {
				fmt.Fprintf(sh.Out, "%s: %q\n", sess.Messages().Get(i18n.Transcript), u)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&evalLines, "eval", nil, "Run lines non-interactively and exit (repeatable)")
	return cmd
}
