package recognizer

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineSource reads transcript lines from a reader. Each non-empty line is a
// final result, except for these directives:
//
//	# comment          ignored
//	~ text             interim result
//	!error <code>      recognition error, e.g. "!error network"
//	!end               source ended
//
// Reading happens on a background goroutine so that Next honors context
// cancellation even while the reader is blocked.
type LineSource struct {
	scanner *bufio.Scanner
	once    sync.Once
	lines   chan string
	err     error
}

// NewLineSource wraps r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{scanner: bufio.NewScanner(r)}
}

func (s *LineSource) start() {
	s.lines = make(chan string)
	go func() {
		defer close(s.lines)
		for s.scanner.Scan() {
			s.lines <- s.scanner.Text()
		}
		// err is published by the close of lines.
		s.err = s.scanner.Err()
	}()
}

// Next returns the next event, or io.EOF when the reader is exhausted.
func (s *LineSource) Next(ctx context.Context) (Event, error) {
	s.once.Do(s.start)
	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case line, ok := <-s.lines:
			if !ok {
				if s.err != nil {
					return Event{}, s.err
				}
				return Event{}, io.EOF
			}
			if ev, ok := ParseLine(line); ok {
				return ev, nil
			}
		}
	}
}

// Restart is a no-op: reading simply continues with the next line.
func (s *LineSource) Restart(context.Context) error {
	return nil
}

// ParseLine converts one line of a transcript script to an event. It
// returns false for blank lines and comments.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "", strings.HasPrefix(line, "#"):
		return Event{}, false
	case strings.HasPrefix(line, "~"):
		return Interim(strings.TrimSpace(line[1:])), true
	case line == "!end":
		return Event{Type: EventEnd}, true
	case strings.HasPrefix(line, "!error"):
		return Failure(ErrorFromCode(strings.TrimPrefix(line, "!error"))), true
	}
	return Final(line), true
}
