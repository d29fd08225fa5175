package models

// EventType discriminates orchestrator events.
type EventType string

const (
	EventLog      EventType = "log"
	EventProgress EventType = "progress"
	EventError    EventType = "error"
)

// Event is one orchestrator occurrence surfaced to the caller. The producer
// enqueues, the consumer drains; no presentation layer is assumed.
type Event struct {
	Type    EventType
	Percent int
	Message string
	Err     error
}

// LogEvent builds a log event.
func LogEvent(msg string) Event {
	return Event{Type: EventLog, Message: msg}
}

// ProgressEvent builds a progress event with pct in [0,100].
func ProgressEvent(pct int) Event {
	return Event{Type: EventProgress, Percent: pct}
}

// ErrorEvent builds an error event.
func ErrorEvent(msg string, err error) Event {
	return Event{Type: EventError, Message: msg, Err: err}
}
