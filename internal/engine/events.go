package engine

import "github.com/dwiyanr/examflow/internal/model"

// EventType enumerates the discrete transitions a session announces.
type EventType string

const (
	// EventTick fires once per second while the countdown is running.
	EventTick EventType = "tick"
	// EventAutoAdvance fires when a per-question countdown expires on a
	// non-final question and the session moves to the next one.
	EventAutoAdvance EventType = "auto_advance"
	// EventSubmitted fires exactly once, on manual or timer-driven submit.
	EventSubmitted EventType = "submitted"
)

// Event describes one session transition. SecondsLeft and Result are only
// set where they apply.
type Event struct {
	Type         EventType               `json:"type"`
	CurrentIndex int                     `json:"current_index"`
	SecondsLeft  *int                    `json:"seconds_left,omitempty"`
	Result       *model.SubmissionResult `json:"result,omitempty"`
}

// NotifyFunc receives session events. It is invoked outside the session
// lock and must not call back into the session.
type NotifyFunc func(Event)
