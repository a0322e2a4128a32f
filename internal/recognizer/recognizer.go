// Package recognizer drives the listening lifecycle around a transcript
// source: it accumulates finalized chunks into the current utterance, runs
// the command interpreter on the whole utterance, and retries or gives up on
// recognition errors.
package recognizer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/klytics/voxtable/internal/command"
)

// Source delivers recognition events. Next blocks until an event is
// available and returns io.EOF once the source is exhausted.
type Source interface {
	Next(ctx context.Context) (Event, error)
}

// Restarter is implemented by sources that can resume delivery after a
// transient error or an end event.
type Restarter interface {
	Restart(ctx context.Context) error
}

// Config controls retry and restart behaviour.
type Config struct {
	MaxRetries  int
	RetryDelay  time.Duration
	AutoRestart bool
}

// DefaultConfig retries network errors twice, 1.5s apart, and restarts
// sources that end on their own.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  2,
		RetryDelay:  1500 * time.Millisecond,
		AutoRestart: true,
	}
}

// Hooks receive lifecycle notifications. Any hook may be nil. Hooks run
// outside the Recognizer's lock.
type Hooks struct {
	OnCommand      func(cmd command.Command, utterance string)
	OnUnrecognized func(utterance string)
	OnInterim      func(text string)
	OnState        func(from, to State)
	OnRetry        func(attempt, max int, delay time.Duration)
}

// Recognizer is the listening state machine.
type Recognizer struct {
	Config      Config
	Interpreter *command.Interpreter
	Hooks       Hooks
	Logger      *slog.Logger

	mu         sync.Mutex
	state      State
	retries    int
	manualStop bool
	utterance  string
	interim    string
	delay      time.Duration
	backoff    backoff.BackOff
	cancel     context.CancelFunc
}

// New creates an idle Recognizer. A nil interpreter uses the default
// template table.
func New(cfg Config, interp *command.Interpreter, hooks Hooks) *Recognizer {
	if interp == nil {
		interp = command.New()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Recognizer{
		Config:      cfg,
		Interpreter: interp,
		Hooks:       hooks,
		Logger:      slog.Default(),
		backoff:     backoff.NewConstantBackOff(cfg.RetryDelay),
	}
}

// State returns the current lifecycle state.
func (r *Recognizer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Utterance returns the finalized text accumulated since the last
// recognized command.
func (r *Recognizer) Utterance() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.utterance
}

// Interim returns the latest non-final text.
func (r *Recognizer) Interim() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interim
}

// Retries returns the number of retries since the last success or start.
func (r *Recognizer) Retries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retries
}

// Start moves an idle or stopped Recognizer to Listening and forgets any
// partial utterance.
func (r *Recognizer) Start() error {
	return r.start(nil)
}

func (r *Recognizer) start(cancel context.CancelFunc) error {
	r.mu.Lock()
	if r.state == Listening || r.state == Retrying {
		r.mu.Unlock()
		return ErrAlreadyListening
	}
	r.cancel = cancel
	r.manualStop = false
	r.retries = 0
	r.utterance = ""
	r.interim = ""
	r.backoff.Reset()
	from := r.setState(Listening)
	r.mu.Unlock()

	r.notifyState(from, Listening)
	return nil
}

// Stop is a manual stop: the Recognizer moves to Stopped and does not
// restart. A running Run returns.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	r.manualStop = true
	r.retries = 0
	r.interim = ""
	from := r.setState(Stopped)
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.notifyState(from, Stopped)
}

// Reset discards the partial utterance without changing state.
func (r *Recognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.utterance = ""
	r.interim = ""
}

// Feed applies one event. For a final result it returns the command that
// was dispatched (Unknown when nothing matched). It returns a *FatalError
// when listening cannot continue.
func (r *Recognizer) Feed(ev Event) (command.Command, error) {
	switch ev.Type {
	case EventResult:
		return r.handleResult(ev), nil
	case EventError:
		return command.Command{}, r.handleError(ev.Err)
	case EventEnd:
		r.handleEnd()
	}
	return command.Command{}, nil
}

func (r *Recognizer) handleResult(ev Event) command.Command {
	r.mu.Lock()
	if r.state != Listening {
		r.mu.Unlock()
		return command.Command{}
	}
	if !ev.Final {
		r.interim = ev.Text
		r.mu.Unlock()
		if r.Hooks.OnInterim != nil {
			r.Hooks.OnInterim(ev.Text)
		}
		return command.Command{}
	}

	r.interim = ""
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		r.mu.Unlock()
		return command.Command{}
	}
	r.utterance = strings.TrimSpace(r.utterance + " " + text)
	r.retries = 0
	r.backoff.Reset()
	utterance := r.utterance
	r.mu.Unlock()

	cmd := r.Interpreter.Interpret(utterance)
	r.Logger.Debug("interpreted utterance", "utterance", utterance, "command", cmd.Kind.String(), "template", cmd.Template)
	if !cmd.Recognized() {
		if r.Hooks.OnUnrecognized != nil {
			r.Hooks.OnUnrecognized(utterance)
		}
		return cmd
	}

	r.mu.Lock()
	r.utterance = ""
	r.mu.Unlock()

	if r.Hooks.OnCommand != nil {
		r.Hooks.OnCommand(cmd, utterance)
	}
	return cmd
}

func (r *Recognizer) handleError(err error) error {
	switch Classify(err) {
	case Ignorable:
		r.Logger.Debug("ignoring recognition error", "error", err)
		return nil
	case Abort:
		r.Logger.Debug("recognition aborted")
		r.Stop()
		return nil
	case Transient:
		r.mu.Lock()
		if r.manualStop || r.state != Listening {
			r.mu.Unlock()
			return nil
		}
		if r.retries < r.Config.MaxRetries {
			r.retries++
			attempt := r.retries
			r.delay = r.backoff.NextBackOff()
			delay := r.delay
			from := r.setState(Retrying)
			r.mu.Unlock()

			r.Logger.Debug("transient recognition error", "error", err, "attempt", attempt, "delay", delay)
			r.notifyState(from, Retrying)
			if r.Hooks.OnRetry != nil {
				r.Hooks.OnRetry(attempt, r.Config.MaxRetries, delay)
			}
			return nil
		}
		r.mu.Unlock()
	}
	return r.fail(err)
}

func (r *Recognizer) handleEnd() {
	r.mu.Lock()
	if r.state != Listening || r.Config.AutoRestart {
		r.interim = ""
		r.mu.Unlock()
		return
	}
	r.interim = ""
	from := r.setState(Idle)
	r.mu.Unlock()
	r.notifyState(from, Idle)
}

// fail moves to Idle and wraps err as a *FatalError.
func (r *Recognizer) fail(err error) error {
	r.mu.Lock()
	retries := r.retries
	r.retries = 0
	r.interim = ""
	from := r.setState(Idle)
	r.mu.Unlock()

	r.Logger.Debug("fatal recognition error", "error", err, "retries", retries)
	r.notifyState(from, Idle)
	return &FatalError{Err: err, Retries: retries}
}

// Resume moves Retrying back to Listening. It returns false if the
// Recognizer was stopped while waiting.
func (r *Recognizer) Resume() bool {
	r.mu.Lock()
	if r.state != Retrying || r.manualStop {
		r.mu.Unlock()
		return false
	}
	from := r.setState(Listening)
	r.mu.Unlock()
	r.notifyState(from, Listening)
	return true
}

// RetryDelay returns how long to wait before resuming from Retrying.
func (r *Recognizer) RetryDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delay
}

// Run starts listening and feeds events from src until the source is
// exhausted, the Recognizer is stopped, ctx is cancelled, or a fatal error
// occurs. Only fatal errors are returned.
func (r *Recognizer) Run(ctx context.Context, src Source) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := r.start(cancel); err != nil {
		return err
	}
	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
	}()

	for {
		ev, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.finish()
				return nil
			}
			if ctx.Err() != nil {
				r.Stop()
				return nil
			}
			ev = Failure(err)
		}

		if _, err := r.Feed(ev); err != nil {
			return err
		}

		switch r.State() {
		case Retrying:
			if err := sleep(ctx, r.RetryDelay()); err != nil {
				r.Stop()
				return nil
			}
			if err := restart(ctx, src); err != nil {
				return r.fail(err)
			}
			r.Resume()
		case Listening:
			if ev.Type != EventEnd {
				continue
			}
			if _, ok := src.(Restarter); !ok {
				r.finish()
				return nil
			}
			r.Logger.Debug("auto-restarting source")
			if err := restart(ctx, src); err != nil {
				return r.fail(err)
			}
		default:
			return nil
		}
	}
}

// finish moves a listening Recognizer to Idle when its source runs dry.
func (r *Recognizer) finish() {
	r.mu.Lock()
	if r.state != Listening && r.state != Retrying {
		r.mu.Unlock()
		return
	}
	r.interim = ""
	from := r.setState(Idle)
	r.mu.Unlock()
	r.notifyState(from, Idle)
}

func (r *Recognizer) setState(to State) State {
	from := r.state
	r.state = to
	return from
}

func (r *Recognizer) notifyState(from, to State) {
	if from == to {
		return
	}
	r.Logger.Debug("recognizer state", "from", from.String(), "to", to.String())
	if r.Hooks.OnState != nil {
		r.Hooks.OnState(from, to)
	}
}

func restart(ctx context.Context, src Source) error {
	if rs, ok := src.(Restarter); ok {
		return rs.Restart(ctx)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
