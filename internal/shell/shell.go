// Package shell provides the interactive vtab REPL. A Session is a
// recognizer.Source: typed lines that are not shell built-ins are handed to
// the recognizer as final transcript chunks.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/klytics/voxtable/internal/formats/export"
	"github.com/klytics/voxtable/internal/i18n"
	"github.com/klytics/voxtable/internal/recognizer"
	"github.com/klytics/voxtable/internal/table"
)

// LineReader is the part of *readline.Instance the session uses.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Session manages an interactive vtab shell session.
type Session struct {
	Table          *table.Table
	Messages       *i18n.Messages
	Out            io.Writer
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	// Reader supplies lines. Open sets it to a readline instance; tests set
	// it directly.
	Reader LineReader

	// BuiltIns is the list of shell commands for completion.
	BuiltIns []string

	// ExportPath is used by "export" when no path is given.
	ExportPath string

	// OnLocale is called after "lang" switches the message language.
	OnLocale func(*i18n.Messages)

	// OnClear is called after "clear" empties the table, so a half-spoken
	// utterance does not carry over.
	OnClear func()

	spoken int
}

// NewSession creates a new interactive session over tbl.
func NewSession(tbl *table.Table, msgs *i18n.Messages) (*Session, error) {
	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".vtab", "shell_history")

	// Ensure parent dir exists
	os.MkdirAll(filepath.Dir(histFile), 0755)

	if msgs == nil {
		msgs = i18n.New(i18n.English)
	}
	return &Session{
		Table:       tbl,
		Messages:    msgs,
		Out:         os.Stdout,
		HistoryFile: histFile,
		StartTime:   time.Now(),
		BuiltIns: []string{
			"help", "show", "export", "clear", "lang", "history", "exit", "quit",
		},
	}, nil
}

// Open attaches a readline instance to the terminal.
func (s *Session) Open() error {
	completer := readline.NewPrefixCompleter(s.buildCompleter()...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vtab> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("could not open terminal: %w", err)
	}
	s.Reader = rl
	s.Out = rl.Stdout()

	fmt.Fprintf(s.Out, "%s\n", s.Messages.Get(i18n.AppTitle))
	fmt.Fprintln(s.Out, "Type 'help' for commands, 'exit' to quit.")
	fmt.Fprintln(s.Out)
	return nil
}

// Script replays fixed lines, then reports io.EOF.
type Script struct {
	lines []string
}

// NewScript returns a LineReader over lines.
func NewScript(lines ...string) *Script {
	return &Script{lines: lines}
}

// Readline returns the next line.
func (sc *Script) Readline() (string, error) {
	if len(sc.lines) == 0 {
		return "", io.EOF
	}
	line := sc.lines[0]
	sc.lines = sc.lines[1:]
	return line, nil
}

// Close drops any unread lines.
func (sc *Script) Close() error {
	sc.lines = nil
	return nil
}

// Close releases the terminal.
func (s *Session) Close() error {
	if s.Reader == nil {
		return nil
	}
	return s.Reader.Close()
}

// Next reads lines until one is a transcript chunk. Built-ins run inline.
// It returns io.EOF on exit, Ctrl+D or Ctrl+C. Readline does not observe
// ctx while blocked, so cancellation takes effect at the next line.
func (s *Session) Next(ctx context.Context) (recognizer.Event, error) {
	if s.Reader == nil {
		return recognizer.Event{}, fmt.Errorf("shell session is not open")
	}
	for {
		if err := ctx.Err(); err != nil {
			return recognizer.Event{}, err
		}
		line, err := s.Reader.Readline()
		if err != nil { // io.EOF or interrupt
			return recognizer.Event{}, io.EOF
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s.CommandHistory = append(s.CommandHistory, line)

		handled, exit := s.Eval(line)
		if exit {
			fmt.Fprintf(s.Out, "\nSession ended. %d lines spoken in %s.\n",
				s.spoken, formatDuration(time.Since(s.StartTime)))
			return recognizer.Event{}, io.EOF
		}
		if handled {
			continue
		}
		ev, ok := recognizer.ParseLine(line)
		if !ok {
			continue
		}
		if ev.Type == recognizer.EventResult && ev.Final {
			s.spoken++
		}
		return ev, nil
	}
}

// Restart is a no-op; the terminal stays open across restarts.
func (s *Session) Restart(context.Context) error { return nil }

// Eval runs line when it is a shell built-in. handled is false for lines
// that should be interpreted as speech.
func (s *Session) Eval(line string) (handled, exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true, false
	}
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		if arg != "" {
			return false, false
		}
		return true, true
	case "help":
		if arg != "" {
			return false, false
		}
		s.printHelp()
	case "show":
		if arg != "" {
			return false, false
		}
		s.Table.Snapshot().Render(s.Out, s.Messages.Get(i18n.TableEmpty))
	case "history":
		if arg != "" {
			return false, false
		}
		for i, cmd := range s.CommandHistory {
			fmt.Fprintf(s.Out, "  %d  %s\n", i+1, cmd)
		}
	case "clear":
		if arg != "" {
			return false, false
		}
		s.Table.Clear()
		if s.OnClear != nil {
			s.OnClear()
		}
		fmt.Fprintln(s.Out, s.Messages.Get(i18n.TableCleared))
	case "export":
		if strings.Contains(arg, " ") {
			return false, false
		}
		if arg == "" {
			arg = s.ExportPath
		}
		path, err := export.Export(s.Table.Snapshot(), arg, export.Options{RightToLeft: s.Messages.RTL()})
		if err != nil {
			fmt.Fprintf(s.Out, "%s: %s\n", s.Messages.Get(i18n.Error), err)
			break
		}
		fmt.Fprintln(s.Out, s.Messages.Get(i18n.TableExported, path))
	case "lang":
		if arg == "" || strings.Contains(arg, " ") {
			return false, false
		}
		loc, err := i18n.Parse(arg)
		if err != nil || loc == i18n.Auto {
			fmt.Fprintf(s.Out, "%s: lang takes en or ar\n", s.Messages.Get(i18n.Error))
			break
		}
		s.Messages = i18n.New(loc)
		if s.OnLocale != nil {
			s.OnLocale(s.Messages)
		}
		fmt.Fprintf(s.Out, "%s\n", s.Messages.Get(i18n.AppTitle))
	default:
		return false, false
	}
	return true, false
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return s.BuiltIns
	}

	parts := strings.Fields(input)
	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		prefix := strings.ToLower(parts[0])
		var matches []string
		for _, cmd := range s.BuiltIns {
			if strings.HasPrefix(cmd, prefix) {
				matches = append(matches, cmd)
			}
		}
		sort.Strings(matches)
		return matches
	}

	if len(parts) == 2 && parts[0] == "lang" {
		var matches []string
		for _, l := range []string{"en", "ar"} {
			if strings.HasPrefix(l, parts[1]) {
				matches = append(matches, l)
			}
		}
		return matches
	}
	return nil
}

func (s *Session) printHelp() {
	m := s.Messages
	fmt.Fprintf(s.Out, "%s:\n", m.Get(i18n.ExampleCommands))
	fmt.Fprintf(s.Out, "  %s\n", m.Get(i18n.ExampleCreate))
	fmt.Fprintf(s.Out, "  %s\n", m.Get(i18n.ExampleAdd))
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "Shell commands:")
	fmt.Fprintln(s.Out, "  help           show this help")
	fmt.Fprintln(s.Out, "  show           print the table")
	fmt.Fprintln(s.Out, "  export [path]  write the table (csv, xlsx, json, yaml, md)")
	fmt.Fprintln(s.Out, "  clear          remove the table")
	fmt.Fprintln(s.Out, "  lang en|ar     switch message language")
	fmt.Fprintln(s.Out, "  history        show typed lines")
	fmt.Fprintln(s.Out, "  exit           exit the shell")
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "Anything else is treated as speech. Prefix a line with ~ for a partial")
	fmt.Fprintln(s.Out, "result or type !error network to simulate a dropped connection.")
}

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.BuiltIns {
		if cmd == "lang" {
			items = append(items, readline.PcItem(cmd, readline.PcItem("en"), readline.PcItem("ar")))
			continue
		}
		items = append(items, readline.PcItem(cmd))
	}
	return items
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
