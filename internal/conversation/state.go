package conversation

import (
	"fmt"
	"strings"
)

const unknownCause = "unknown error"

// State is an immutable snapshot of a session. Transitions are made by the pure
// functions in this file; none of them modify their input.
type State struct {
	History    History
	Request    RequestState
	Connection ConnectionStatus
	Staged     string
}

func NewState() State {
	return State{
		History:    History{},
		Request:    Idle,
		Connection: Checking,
	}
}

// CanSubmit reports whether text would be accepted in state s.
func CanSubmit(s State, text string) bool {
	return strings.TrimSpace(text) != "" && s.Request == Idle && s.Connection != Error
}

// Accept appends the user turn and moves the request to Pending. The staged buffer is
// cleared because accepted text is not retained.
func Accept(s State, text string) (State, bool) {
	if !CanSubmit(s, text) {
		return s, false
	}
	next := s
	next.History = s.History.Append(Message{Role: RoleUser, Content: text})
	next.Request = Pending
	next.Staged = ""
	return next, true
}

// Resolve appends the assistant reply and returns the request to Idle.
func Resolve(s State, reply string) State {
	next := s
	next.History = s.History.Append(Message{Role: RoleAssistant, Content: reply})
	next.Request = Idle
	return next
}

// Fail appends the error turn for cause. The request is left in Failed until Settle.
func Fail(s State, cause error) State {
	next := s
	next.History = s.History.Append(Message{Role: RoleAssistant, Content: ErrorText(cause)})
	next.Request = Failed
	return next
}

func Settle(s State) State {
	next := s
	next.Request = Idle
	return next
}

// Stage sets the staged input buffer.
func Stage(s State, text string) State {
	next := s
	next.Staged = text
	return next
}

// WithConnection records the probe result. The status can only leave Checking once.
func WithConnection(s State, status ConnectionStatus) (State, bool) {
	if s.Connection != Checking || status == Checking {
		return s, false
	}
	next := s
	next.Connection = status
	return next, true
}

// ErrorText renders the assistant turn shown for a failed exchange.
func ErrorText(cause error) string {
	reason := unknownCause
	if cause != nil && cause.Error() != "" {
		reason = cause.Error()
	}
	return fmt.Sprintf("Sorry, I encountered an error: %s. Please try again or check if the backend is running.", reason)
}
