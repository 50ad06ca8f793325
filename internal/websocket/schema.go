package websocket

import "github.com/stemsi/coursemart-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError           Event = "error"
	EventSnapshot        Event = "snapshot"
	EventAttemptRecorded Event = "attempt_recorded"
	EventPong            Event = "pong"
)

// SnapshotResponse is sent once after connecting: every student's best result
// so far.
type SnapshotResponse struct {
	Event         Event              `json:"event"`
	TotalAttempts int                `json:"total_attempts"`
	Students      []model.QuizResult `json:"students"`
}

// AttemptRecordedResponse is pushed for each newly graded attempt.
type AttemptRecordedResponse struct {
	Event   Event              `json:"event"`
	Attempt model.AttemptEvent `json:"attempt"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
