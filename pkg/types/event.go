package types

import "time"

// EventType defines the type of event emitted by the bridge.
type EventType string

const (
	EventTypeSessionReady    EventType = "session_ready"    // EventTypeSessionReady indicates the browser session was launched.
	EventTypeSessionFailed   EventType = "session_failed"   // EventTypeSessionFailed indicates the browser session could not be launched.
	EventTypeCommandStart    EventType = "command_start"    // EventTypeCommandStart indicates the worker dequeued a command.
	EventTypeCommandSkipped  EventType = "command_skipped"  // EventTypeCommandSkipped indicates an abandoned command was not executed.
	EventTypeCommandDone     EventType = "command_done"     // EventTypeCommandDone indicates a command's reply was delivered.
	EventTypeStateTransition EventType = "state_transition" // EventTypeStateTransition indicates a completion detector state change.
)

// Event represents a notification emitted by the bridge worker.
type Event struct {
	// Type indicates the kind of event.
	Type EventType

	// CommandID identifies the command the event belongs to, if any.
	CommandID string

	// Kind is the kind of the command the event belongs to, if any.
	Kind CommandKind

	// From and To hold detector state names for state transition events.
	From string
	To   string

	// Error contains error information for failure events.
	Error error

	// At is when the event was emitted.
	At time.Time
}

// NewCommandEvent creates an event tied to a command.
func NewCommandEvent(eventType EventType, cmd *Command, err error) *Event {
	return &Event{
		Type:      eventType,
		CommandID: cmd.ID,
		Kind:      cmd.Kind,
		Error:     err,
		At:        time.Now(),
	}
}

// NewTransitionEvent creates a detector state transition event.
func NewTransitionEvent(cmd *Command, from, to string) *Event {
	return &Event{
		Type:      EventTypeStateTransition,
		CommandID: cmd.ID,
		Kind:      cmd.Kind,
		From:      from,
		To:        to,
		At:        time.Now(),
	}
}

// NewSessionEvent creates a session lifecycle event.
func NewSessionEvent(eventType EventType, err error) *Event {
	return &Event{
		Type:  eventType,
		Error: err,
		At:    time.Now(),
	}
}

// IsTerminal returns true if the event closes out a command.
func (e *Event) IsTerminal() bool {
	return e.Type == EventTypeCommandDone || e.Type == EventTypeCommandSkipped
}
