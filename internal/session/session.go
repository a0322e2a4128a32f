// Package session connects a recognizer to the table it fills and reports
// what happened in the user's language.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/klytics/voxtable/internal/command"
	"github.com/klytics/voxtable/internal/i18n"
	"github.com/klytics/voxtable/internal/recognizer"
	"github.com/klytics/voxtable/internal/table"
)

// Options configure a Session.
type Options struct {
	Locale     i18n.Locale
	LooseAdd   bool
	Recognizer recognizer.Config
	Out        io.Writer
	// Quiet suppresses status lines, for machine-readable output.
	Quiet bool
	// ShowTable renders the table after every change.
	ShowTable bool
}

// Entry records one recognized or rejected utterance.
type Entry struct {
	Utterance string          `json:"utterance" yaml:"utterance"`
	Command   command.Command `json:"command" yaml:"command"`
	Outcome   string          `json:"outcome" yaml:"outcome"`
}

// Summary is the machine-readable result of a session.
type Summary struct {
	Entries []Entry        `json:"entries" yaml:"entries"`
	Table   table.Snapshot `json:"table" yaml:"table"`
	Export  string         `json:"export,omitempty" yaml:"export,omitempty"`
}

// Session owns the table and the recognizer feeding it.
type Session struct {
	Table       *table.Table
	Interpreter *command.Interpreter
	Recognizer  *recognizer.Recognizer
	Out         io.Writer

	messages  *i18n.Messages
	auto      bool
	quiet     bool
	showTable bool
	entries   []Entry
	logger    *slog.Logger
}

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	errMark  = color.New(color.FgRed).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
)

// New builds a session with an empty table.
func New(opts Options) *Session {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	s := &Session{
		Table:       table.New(),
		Interpreter: command.New(command.WithLooseAdd(opts.LooseAdd)),
		Out:         opts.Out,
		messages:    i18n.New(opts.Locale),
		auto:        opts.Locale == i18n.Auto,
		quiet:       opts.Quiet,
		showTable:   opts.ShowTable,
		logger:      slog.Default(),
	}
	s.Recognizer = recognizer.New(opts.Recognizer, s.Interpreter, s.Hooks())
	return s
}

// Messages returns the current message set.
func (s *Session) Messages() *i18n.Messages {
	return s.messages
}

// SetMessages switches the message language.
func (s *Session) SetMessages(m *i18n.Messages) {
	s.messages = m
	s.auto = false
}

// Entries returns every utterance handled so far.
func (s *Session) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Summary returns the entries and the final table.
func (s *Session) Summary() Summary {
	return Summary{Entries: s.Entries(), Table: s.Table.Snapshot()}
}

// Hooks returns the recognizer callbacks that apply commands to the table.
func (s *Session) Hooks() recognizer.Hooks {
	return recognizer.Hooks{
		OnCommand:      s.handleCommand,
		OnUnrecognized: s.handleUnrecognized,
		OnInterim: func(text string) {
			s.status(faint("… " + text))
		},
		OnState: func(from, to recognizer.State) {
			s.logger.Debug("recognizer state", "from", from, "to", to)
		},
		OnRetry: func(attempt, max int, delay time.Duration) {
			s.logger.Debug("retrying recognition", "attempt", attempt, "max", max, "delay", delay)
			s.status(warnMark("! ") + s.messages.Get(i18n.Retrying, attempt, max))
		},
	}
}

func (s *Session) handleCommand(cmd command.Command, utterance string) {
	if s.auto {
		s.messages = i18n.New(i18n.Detect(utterance, s.messages.Locale()))
	}
	res := s.Table.Apply(cmd)
	s.entries = append(s.entries, Entry{Utterance: utterance, Command: cmd, Outcome: res.Outcome.String()})
	s.logger.Debug("command applied", "template", cmd.Template, "outcome", res.Outcome)

	switch res.Outcome {
	case table.Created:
		s.status(okMark("✓ ") + s.messages.Get(i18n.TableCreated, res.Columns))
	case table.RowAdded:
		s.status(okMark("✓ ") + s.messages.Get(i18n.RowAdded))
	case table.NoColumns:
		s.status(warnMark("! ") + s.messages.Get(i18n.NoColumns))
		return
	}
	if s.showTable && !s.quiet {
		s.Table.Snapshot().Render(s.Out, s.messages.Get(i18n.TableEmpty))
	}
}

func (s *Session) handleUnrecognized(utterance string) {
	s.entries = append(s.entries, Entry{
		Utterance: utterance,
		Command:   command.Command{},
		Outcome:   table.Unrecognized.String(),
	})
	s.status(warnMark("? ") + s.messages.Get(i18n.NotRecognized) + faint(fmt.Sprintf(" (%q)", utterance)))
}

// Describe returns the localized text for an error that ended listening.
func (s *Session) Describe(err error) string {
	var fatal *recognizer.FatalError
	retries := 0
	if errors.As(err, &fatal) {
		retries = fatal.Retries
	}
	switch {
	case errors.Is(err, recognizer.ErrNotAllowed), errors.Is(err, recognizer.ErrAudioCapture):
		return s.messages.Get(i18n.MicrophoneDenied)
	case errors.Is(err, recognizer.ErrNotSupported):
		return s.messages.Get(i18n.NotSupported)
	case errors.Is(err, recognizer.ErrNetwork):
		return s.messages.Get(i18n.RecognitionUnavailable, retries)
	case fatal != nil:
		return s.messages.Get(i18n.RecognitionError, fatal.Err)
	}
	return s.messages.Get(i18n.RecognitionError, err)
}

// ReportError prints Describe(err) as an error line.
func (s *Session) ReportError(err error) {
	s.status(errMark("✗ ") + s.Describe(err))
}

// Banner prints the title and example commands.
func (s *Session) Banner() {
	m := s.messages
	s.status(color.New(color.Bold).Sprint(m.Get(i18n.AppTitle)) + " - " + m.Get(i18n.AppDescription))
	s.status(m.Get(i18n.ExampleCommands) + ":")
	s.status("  " + m.Get(i18n.ExampleCreate))
	s.status("  " + m.Get(i18n.ExampleAdd))
	s.status("")
}

func (s *Session) status(line string) {
	if s.quiet {
		return
	}
	fmt.Fprintln(s.Out, line)
}
