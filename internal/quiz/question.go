// Package quiz implements the knowledge-check engine behind every study page:
// the single-question InlineCheck widget (Check) and the end-of-section
// assessment (Quiz). Both are plain in-memory state machines; callers own
// persistence and rendering.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Engine errors. Content errors (invalid questions, duplicates) are authoring
// mistakes and are expected to abort startup; selection errors are caller
// mistakes and leave state untouched.
var (
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrDuplicateQuestion = errors.New("duplicate question id")
	ErrNoQuestions       = errors.New("quiz has no questions")
	ErrOptionOutOfRange  = errors.New("option index out of range")
	ErrUnknownQuestion   = errors.New("unknown question id")
)

// MinOptions is the smallest number of choices a question may offer.
const MinOptions = 2

// Question is a single multiple-choice item. It is never mutated after
// construction.
type Question struct {
	ID           string
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  string
}

// Validate reports whether q is well formed.
func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: %s: empty prompt", ErrInvalidQuestion, q.ID)
	}
	if len(q.Options) < MinOptions {
		return fmt.Errorf("%w: %s: needs at least %d options, got %d", ErrInvalidQuestion, q.ID, MinOptions, len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: %s: option %d is blank", ErrInvalidQuestion, q.ID, i)
		}
	}
	if !q.HasOption(q.CorrectIndex) {
		return fmt.Errorf("%w: %s: correct index %d outside [0,%d)", ErrInvalidQuestion, q.ID, q.CorrectIndex, len(q.Options))
	}
	return nil
}

// HasOption reports whether option is a selectable index of q.
func (q Question) HasOption(option int) bool {
	return option >= 0 && option < len(q.Options)
}

// IsCorrect reports whether option is the correct choice.
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectIndex
}

// ValidateSet validates every question and rejects duplicate ids.
func ValidateSet(qs []Question) error {
	seen := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
