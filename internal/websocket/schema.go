package websocket

import (
	"github.com/stemsi/sitesafe-learn/internal/model"
	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect Action = "select"
	ActionAnswer Action = "answer"
	ActionScore  Action = "score"
	ActionReset  Action = "reset"
	ActionState  Action = "state"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SelectRequest answers the InlineCheck of one section.
type SelectRequest struct {
	Action    Action `json:"action"`
	SectionID string `json:"section_id" binding:"required,max=64"`
	Option    *int   `json:"option" binding:"required,min=0,max=7"`
}

// AnswerRequest answers one quiz question.
type AnswerRequest struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id" binding:"required,max=64"`
	Option     *int   `json:"option" binding:"required,min=0,max=7"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventRevealed Event = "revealed"
	EventScored   Event = "scored"
	EventReset    Event = "reset"
	EventState    Event = "state"
	EventPong     Event = "pong"
	EventError    Event = "error"
)

// Widget kinds carried by a revealed event.
const (
	WidgetCheck = "check"
	WidgetQuiz  = "quiz"
)

// RevealedResponse follows a selection on either widget. Score is set for
// quiz answers only.
type RevealedResponse struct {
	Event     Event            `json:"event"`
	Widget    string           `json:"widget"`
	SectionID string           `json:"section_id,omitempty"`
	Outcome   quiz.Outcome     `json:"outcome"`
	Score     *model.QuizScore `json:"score,omitempty"`
}

type ScoredResponse struct {
	Event Event           `json:"event"`
	Score model.QuizScore `json:"score"`
}

type ResetResponse struct {
	Event Event            `json:"event"`
	Quiz  *model.QuizState `json:"quiz"`
}

type StateResponse struct {
	Event Event             `json:"event"`
	State *model.MountState `json:"state"`
}

type ErrorResponse struct {
	Event  Event             `json:"event"`
	Code   string            `json:"code"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
