package recognizer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/klytics/voxtable/internal/command"
)

type recorded struct {
	commands     []command.Command
	utterances   []string
	unrecognized []string
	states       []string
	retries      []int
}

func newRecorded(cfg Config) (*Recognizer, *recorded) {
	rec := &recorded{}
	r := New(cfg, nil, Hooks{
		OnCommand: func(cmd command.Command, utterance string) {
			rec.commands = append(rec.commands, cmd)
			rec.utterances = append(rec.utterances, utterance)
		},
		OnUnrecognized: func(u string) { rec.unrecognized = append(rec.unrecognized, u) },
		OnState: func(from, to State) {
			rec.states = append(rec.states, from.String()+">"+to.String())
		},
		OnRetry: func(attempt, _ int, _ time.Duration) { rec.retries = append(rec.retries, attempt) },
	})
	return r, rec
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestFeedDispatchesCommand(t *testing.T) {
	req := require.New(t)
	r, rec := newRecorded(fastConfig())
	req.NoError(r.Start())

	cmd, err := r.Feed(Final("create a table with 3 columns named Name, Age, City"))
	req.NoError(err)
	req.Equal(command.CreateTable, cmd.Kind)
	req.Len(rec.commands, 1)
	req.Empty(r.Utterance(), "utterance should reset after a recognized command")
}

func TestFeedAccumulatesSplitUtterance(t *testing.T) {
	req := require.New(t)
	r, rec := newRecorded(fastConfig())
	req.NoError(r.Start())

	cmd, err := r.Feed(Final("create a table with 2 columns"))
	req.NoError(err)
	req.Equal(command.Unknown, cmd.Kind)
	req.Equal("create a table with 2 columns", r.Utterance())
	req.Equal([]string{"create a table with 2 columns"}, rec.unrecognized)

	cmd, err = r.Feed(Final("named Name, Age"))
	req.NoError(err)
	req.Equal(command.CreateTable, cmd.Kind)
	req.Equal([]string{"Name", "Age"}, cmd.Names())
	req.Equal("create a table with 2 columns named Name, Age", rec.utterances[0])
}

func TestInterimDoesNotInterpret(t *testing.T) {
	req := require.New(t)
	r, rec := newRecorded(fastConfig())
	req.NoError(r.Start())

	_, err := r.Feed(Interim("add a row: John"))
	req.NoError(err)
	req.Equal("add a row: John", r.Interim())
	req.Empty(rec.commands)
	req.Empty(r.Utterance())
}

func TestResultsIgnoredWhenNotListening(t *testing.T) {
	req := require.New(t)
	r, rec := newRecorded(fastConfig())

	cmd, err := r.Feed(Final("add a row: a, b"))
	req.NoError(err)
	req.Equal(command.Unknown, cmd.Kind)
	req.Empty(rec.commands)
}

func TestTransientErrorRetriesThenFails(t *testing.T) {
	req := require.New(t)
	r, rec := newRecorded(fastConfig())
	req.NoError(r.Start())

	for attempt := 1; attempt <= 2; attempt++ {
		_, err := r.Feed(Failure(ErrNetwork))
		req.NoError(err)
		req.Equal(Retrying, r.State())
		req.Equal(time.Millisecond, r.RetryDelay())
		req.True(r.Resume())
		req.Equal(Listening, r.State())
	}

	_, err := r.Feed(Failure(ErrNetwork))
	var fatal *FatalError
	req.ErrorAs(err, &fatal)
	req.Equal(2, fatal.Retries)
	req.ErrorIs(err, ErrNetwork)
	req.Equal(Idle, r.State())
	req.Equal([]int{1, 2}, rec.retries)
}

func TestSuccessResetsRetries(t *testing.T) {
	req := require.New(t)
	r, _ := newRecorded(fastConfig())
	req.NoError(r.Start())

	_, err := r.Feed(Failure(ErrNetwork))
	req.NoError(err)
	req.True(r.Resume())
	req.Equal(1, r.Retries())

	_, err = r.Feed(Final("hello"))
	req.NoError(err)
	req.Equal(0, r.Retries())
}

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		state State
		fatal bool
	}{
		{"no speech ignored", ErrNoSpeech, Listening, false},
		{"aborted stops", ErrAborted, Stopped, false},
		{"not allowed fatal", ErrNotAllowed, Idle, true},
		{"not supported fatal", ErrNotSupported, Idle, true},
		{"unknown code fatal", ErrorFromCode("bad-grammar"), Idle, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			r, _ := newRecorded(fastConfig())
			req.NoError(r.Start())

			_, err := r.Feed(Failure(tt.err))
			if tt.fatal {
				var fatal *FatalError
				req.ErrorAs(err, &fatal)
				req.ErrorIs(err, tt.err)
			} else {
				req.NoError(err)
			}
			req.Equal(tt.state, r.State())
		})
	}
}

func TestStopPreventsRetry(t *testing.T) {
	req := require.New(t)
	r, _ := newRecorded(fastConfig())
	req.NoError(r.Start())

	_, err := r.Feed(Failure(ErrNetwork))
	req.NoError(err)
	r.Stop()
	req.False(r.Resume())
	req.Equal(Stopped, r.State())

	_, err = r.Feed(Failure(ErrNetwork))
	req.NoError(err)
	req.Equal(Stopped, r.State())
}

func TestStartTwice(t *testing.T) {
	req := require.New(t)
	r, rec := newRecorded(fastConfig())
	req.NoError(r.Start())
	req.ErrorIs(r.Start(), ErrAlreadyListening)

	r.Stop()
	req.NoError(r.Start())
	req.Equal([]string{"idle>listening", "listening>stopped", "stopped>listening"}, rec.states)
}

func TestEndWithoutAutoRestart(t *testing.T) {
	req := require.New(t)
	cfg := fastConfig()
	cfg.AutoRestart = false
	r, _ := newRecorded(cfg)
	req.NoError(r.Start())

	_, err := r.Feed(Event{Type: EventEnd})
	req.NoError(err)
	req.Equal(Idle, r.State())
}

func TestRunScript(t *testing.T) {
	req := require.New(t)
	script := strings.Join([]string{
		"# session",
		"create a table with 3 columns named Name, Age, City",
		"~ add a row",
		"!error no-speech",
		"!error network",
		"add a row: John, 25, Delhi",
		"!end",
		"add a row: Asha, 31",
	}, "\n")

	r, rec := newRecorded(fastConfig())
	err := r.Run(context.Background(), NewLineSource(strings.NewReader(script)))
	req.NoError(err)
	req.Equal(Idle, r.State())
	req.Len(rec.commands, 3)
	req.Equal([]string{"John", "25", "Delhi"}, rec.commands[1].Values)
	req.Equal([]int{1}, rec.retries)
}

func TestRunReturnsFatal(t *testing.T) {
	req := require.New(t)
	script := "add a row: x\n!error not-allowed\nadd a row: never"

	r, rec := newRecorded(fastConfig())
	err := r.Run(context.Background(), NewLineSource(strings.NewReader(script)))
	req.ErrorIs(err, ErrNotAllowed)
	req.Equal(Idle, r.State())
	req.Len(rec.commands, 1)
}

func TestRunRetriesExhausted(t *testing.T) {
	req := require.New(t)
	script := "!error network\n!error network\n!error network\nadd a row: never"

	r, _ := newRecorded(fastConfig())
	err := r.Run(context.Background(), NewLineSource(strings.NewReader(script)))
	var fatal *FatalError
	req.ErrorAs(err, &fatal)
	req.Equal(2, fatal.Retries)
}

// blockingSource never delivers; it returns only when ctx is done.
type blockingSource struct{}

func (blockingSource) Next(ctx context.Context) (Event, error) {
	<-ctx.Done()
	return Event{}, ctx.Err()
}

func TestRunStopsOnManualStop(t *testing.T) {
	req := require.New(t)
	r := New(fastConfig(), nil, Hooks{})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), blockingSource{}) }()

	req.Eventually(func() bool { return r.State() == Listening }, time.Second, time.Millisecond)
	r.Stop()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	req.Equal(Stopped, r.State())
}

type failingRestart struct{ *LineSource }

func (failingRestart) Restart(context.Context) error { return errors.New("device busy") }

func TestRunRestartFailureIsFatal(t *testing.T) {
	req := require.New(t)
	src := &failingRestart{LineSource: NewLineSource(strings.NewReader("!end\nadd a row: x"))}

	r, _ := newRecorded(fastConfig())
	err := r.Run(context.Background(), src)
	var fatal *FatalError
	req.ErrorAs(err, &fatal)
	req.Contains(err.Error(), "device busy")
}

func TestParseLine(t *testing.T) {
	req := require.New(t)

	_, ok := ParseLine("   ")
	req.False(ok)
	_, ok = ParseLine("# note")
	req.False(ok)

	ev, ok := ParseLine("~ partial")
	req.True(ok)
	req.Equal(Interim("partial"), ev)

	ev, ok = ParseLine("!error Network")
	req.True(ok)
	req.ErrorIs(ev.Err, ErrNetwork)

	ev, _ = ParseLine("!end")
	req.Equal(EventEnd, ev.Type)

	ev, _ = ParseLine(" add a row: a ")
	req.Equal(Final("add a row: a"), ev)
}

func TestLineSourceEOF(t *testing.T) {
	src := NewLineSource(strings.NewReader(""))
	_, err := src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestRunReturnsOnCancelWhileReaderBlocked(t *testing.T) {
	req := require.New(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	dispatched := make(chan command.Command, 1)
	r := New(fastConfig(), nil, Hooks{
		OnCommand: func(cmd command.Command, _ string) { dispatched <- cmd },
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, NewLineSource(pr)) }()

	_, err := pw.Write([]byte("create a table with 1 column named Name\n"))
	req.NoError(err)
	select {
	case cmd := <-dispatched:
		req.Equal(command.CreateTable, cmd.Kind)
	case <-time.After(time.Second):
		t.Fatal("command was not dispatched")
	}

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel while the reader was blocked")
	}
	req.Equal(Stopped, r.State())
}

func TestLineSourceNextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	src := NewLineSource(pr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := src.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLineSourceReaderError(t *testing.T) {
	pr, pw := io.Pipe()
	pw.CloseWithError(errors.New("mic unplugged"))
	_, err := NewLineSource(pr).Next(context.Background())
	require.EqualError(t, err, "mic unplugged")
}
