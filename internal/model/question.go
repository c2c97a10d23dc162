package model

import (
	"encoding/json"
	"errors"

	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

// Question is the content shape of a knowledge-check question.
type Question struct {
	ID           string   `json:"id" validate:"required,slug,max=64"`
	Prompt       string   `json:"question" validate:"required,max=1000"`
	Options      []string `json:"options" validate:"min=2,max=8,dive,required,max=500"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0"`
	Explanation  string   `json:"explanation" validate:"required"`
}

// ErrMissingCorrectIndex is returned when a question names no correct option.
var ErrMissingCorrectIndex = errors.New("question has no correct_index")

// ErrConflictingCorrectIndex is returned when correct_index and its legacy
// alias correct_answer disagree.
var ErrConflictingCorrectIndex = errors.New("correct_index and correct_answer disagree")

// UnmarshalJSON accepts correct_answer as an alias of correct_index; older
// study modules were authored with that name.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            string   `json:"id"`
		Prompt        string   `json:"question"`
		Options       []string `json:"options"`
		CorrectIndex  *int     `json:"correct_index"`
		CorrectAnswer *int     `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idx := raw.CorrectIndex
	switch {
	case idx == nil && raw.CorrectAnswer == nil:
		return ErrMissingCorrectIndex
	case idx == nil:
		idx = raw.CorrectAnswer
	case raw.CorrectAnswer != nil && *raw.CorrectAnswer != *idx:
		return ErrConflictingCorrectIndex
	}

	*q = Question{
		ID:           raw.ID,
		Prompt:       raw.Prompt,
		Options:      raw.Options,
		CorrectIndex: *idx,
		Explanation:  raw.Explanation,
	}
	return nil
}

// Engine converts the content record into an engine question.
func (q Question) Engine() quiz.Question {
	return quiz.Question{
		ID:           q.ID,
		Prompt:       q.Prompt,
		Options:      append([]string(nil), q.Options...),
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
	}
}

// Public strips the answer and explanation.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Prompt: q.Prompt, Options: append([]string(nil), q.Options...)}
}
