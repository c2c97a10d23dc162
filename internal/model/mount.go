package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

// MountTicket identifies one rendering of a page. The token is a signed JWT
// the client echoes back with every selection.
type MountTicket struct {
	MountID   uuid.UUID `json:"mount_id"`
	Page      string    `json:"page"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MountSnapshot is the persisted widget state of one mount: the selected
// option per inline check (keyed by section id) and per quiz question.
// A question is revealed exactly when it has an entry.
type MountSnapshot struct {
	Checks map[string]int `json:"checks,omitempty"`
	Quiz   map[string]int `json:"quiz,omitempty"`
}

// MountState is the full display state of a mounted page.
type MountState struct {
	MountID uuid.UUID    `json:"mount_id"`
	Page    string       `json:"page"`
	Checks  []CheckState `json:"checks"`
	Quiz    *QuizState   `json:"quiz,omitempty"`
}

// CheckState is the state of one InlineCheck.
type CheckState struct {
	SectionID string        `json:"section_id"`
	Item      quiz.ItemView `json:"item"`
}

// QuizScore is the running result of the page quiz.
type QuizScore struct {
	quiz.Score
	Percent int         `json:"percent"`
	Status  quiz.Status `json:"status"`
}

// NewQuizScore summarises z.
func NewQuizScore(z *quiz.Quiz) QuizScore {
	s := z.Score()
	return QuizScore{Score: s, Percent: s.Percent(), Status: z.Status()}
}

// QuizState is the state of the page quiz.
type QuizState struct {
	Title string `json:"title"`
	QuizScore
	Items []quiz.ItemView `json:"items"`
}

// QuizAnswerResult is returned after a quiz selection.
type QuizAnswerResult struct {
	Outcome quiz.Outcome `json:"outcome"`
	Score   QuizScore    `json:"score"`
}

// SelectOptionRequest is the payload for answering an InlineCheck.
type SelectOptionRequest struct {
	Option *int `json:"option" form:"option" binding:"required,min=0,max=7"`
}

// AnswerQuizRequest is the payload for answering one quiz question.
type AnswerQuizRequest struct {
	QuestionID string `json:"question_id" form:"question_id" binding:"required,max=64"`
	Option     *int   `json:"option" form:"option" binding:"required,min=0,max=7"`
}
