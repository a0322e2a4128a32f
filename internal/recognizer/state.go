package recognizer

import "fmt"

// State is the lifecycle state of a Recognizer.
type State int

const (
	// Idle: not listening; the initial state and the state after a fatal error.
	Idle State = iota
	// Listening: results are accumulated and interpreted.
	Listening
	// Retrying: waiting to resume after a transient error.
	Retrying
	// Stopped: stopped by the user; never restarts on its own.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Retrying:
		return "retrying"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EventType identifies what a Source reported.
type EventType int

const (
	// EventResult carries transcript text, interim or final.
	EventResult EventType = iota
	// EventError carries a recognition error.
	EventError
	// EventEnd means the source stopped delivering without an error.
	EventEnd
)

func (t EventType) String() string {
	switch t {
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is one notification from a Source.
type Event struct {
	Type  EventType
	Text  string
	Final bool
	Err   error
}

// Final returns a finalized result event.
func Final(text string) Event {
	return Event{Type: EventResult, Text: text, Final: true}
}

// Interim returns a non-final result event.
func Interim(text string) Event {
	return Event{Type: EventResult, Text: text}
}

// Failure returns an error event.
func Failure(err error) Event {
	return Event{Type: EventError, Err: err}
}
