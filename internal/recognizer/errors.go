package recognizer

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes reported by speech sources.
var (
	ErrNetwork          = errors.New("network")
	ErrNoSpeech         = errors.New("no-speech")
	ErrAborted          = errors.New("aborted")
	ErrNotAllowed       = errors.New("not-allowed")
	ErrNotSupported     = errors.New("not-supported")
	ErrAudioCapture     = errors.New("audio-capture")
	ErrAlreadyListening = errors.New("recognizer is already listening")
)

var codes = map[string]error{
	"network":             ErrNetwork,
	"no-speech":           ErrNoSpeech,
	"aborted":             ErrAborted,
	"not-allowed":         ErrNotAllowed,
	"service-not-allowed": ErrNotAllowed,
	"not-supported":       ErrNotSupported,
	"audio-capture":       ErrAudioCapture,
}

// ErrorFromCode maps a speech error code to its sentinel error. Unknown codes
// become plain errors, which are fatal.
func ErrorFromCode(code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	if err, ok := codes[code]; ok {
		return err
	}
	return fmt.Errorf("recognition error: %s", code)
}

// Class is how the lifecycle reacts to an error.
type Class int

const (
	// Fatal errors end listening.
	Fatal Class = iota
	// Transient errors are retried up to Config.MaxRetries times.
	Transient
	// Ignorable errors leave the state unchanged.
	Ignorable
	// Abort errors stop listening as if the user had stopped.
	Abort
)

// Classify returns the class of err.
func Classify(err error) Class {
	switch {
	case errors.Is(err, ErrNetwork):
		return Transient
	case errors.Is(err, ErrNoSpeech):
		return Ignorable
	case errors.Is(err, ErrAborted):
		return Abort
	}
	return Fatal
}

// FatalError reports why listening ended.
type FatalError struct {
	Err     error
	Retries int
}

func (e *FatalError) Error() string {
	if e.Retries > 0 {
		return fmt.Sprintf("speech recognition failed after %d retries: %v", e.Retries, e.Err)
	}
	return fmt.Sprintf("speech recognition failed: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
