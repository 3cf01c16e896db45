package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionSubmit   Action = "submit"
	ActionState    Action = "state"
	ActionPing     Action = "ping"
)

// RequestPayload is the single client message shape; fields beyond Action
// are only read where the action needs them.
type RequestPayload struct {
	Action Action `json:"action"`
	// QID and OptionID are required for the answer action.
	QID      string `json:"q_id,omitempty"`
	OptionID string `json:"option_id,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventSaved       Event = "saved"
	EventState       Event = "state"
	EventTick        Event = "tick"
	EventAutoAdvance Event = "auto_advance"
	EventGraded      Event = "graded"
	EventPong        Event = "pong"
)

// EventPayload is the server message envelope. Data holds the
// event-specific body.
type EventPayload struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ErrorPayload is sent for rejected actions and protocol errors.
type ErrorPayload struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
