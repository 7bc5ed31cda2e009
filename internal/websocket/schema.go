package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is the single message shape sent by the client.
// Only the fields relevant to Action are set.
type RequestPayload struct {
	Action      Action   `json:"action"`
	QuestionID  string   `json:"question_id,omitempty"`
	AnswerScore *float64 `json:"answer_score,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventSaved     Event = "saved"
	EventCompleted Event = "completed"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ResponsePayload wraps every server message.
type ResponsePayload struct {
	Event Event  `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// SavedData acknowledges an autosaved answer.
type SavedData struct {
	QuestionID    string `json:"question_id"`
	AnsweredCount int    `json:"answered_count"`
}
