package quiz

import "fmt"

// Status is the derived completion state of a Quiz. It is computed from the
// recorded answers and never stored.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
)

// Score is a snapshot of quiz results. Correct <= Answered <= Total.
type Score struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Percent returns Correct as a whole-number percentage of Total.
func (s Score) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Correct * 100 / s.Total
}

// Quiz is an ordered multi-question assessment. Every question is
// independently answerable; the quiz never advances on its own.
type Quiz struct {
	title string
	items []item
	index map[string]int
}

// NewQuiz validates qs and returns a quiz with no answers.
func NewQuiz(title string, qs []Question) (*Quiz, error) {
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	if err := ValidateSet(qs); err != nil {
		return nil, err
	}

	z := &Quiz{
		title: title,
		items: make([]item, len(qs)),
		index: make(map[string]int, len(qs)),
	}
	for i, q := range qs {
		z.items[i] = newItem(q)
		z.index[q.ID] = i
	}
	return z, nil
}

// Title returns the display title.
func (z *Quiz) Title() string {
	return z.title
}

// Len returns the number of questions.
func (z *Quiz) Len() int {
	return len(z.items)
}

// Answer records option for questionID and reveals that question.
func (z *Quiz) Answer(questionID string, option int) (Outcome, error) {
	i, ok := z.index[questionID]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	return z.items[i].choose(option)
}

// Score counts correct answers among the questions answered so far.
func (z *Quiz) Score() Score {
	s := Score{Total: len(z.items)}
	for i := range z.items {
		if !z.items[i].answered() {
			continue
		}
		s.Answered++
		if z.items[i].correct() {
			s.Correct++
		}
	}
	return s
}

// Complete reports whether every question has an answer.
func (z *Quiz) Complete() bool {
	for i := range z.items {
		if !z.items[i].answered() {
			return false
		}
	}
	return true
}

// Status returns StatusComplete once every question is answered.
func (z *Quiz) Status() Status {
	if z.Complete() {
		return StatusComplete
	}
	return StatusInProgress
}

// Reset clears every answer so the quiz can be retaken.
func (z *Quiz) Reset() {
	for i := range z.items {
		z.items[i].clear()
	}
}

// Item returns the view of one question.
func (z *Quiz) Item(questionID string) (ItemView, bool) {
	i, ok := z.index[questionID]
	if !ok {
		return ItemView{}, false
	}
	return z.items[i].view(), true
}

// Items returns views of all questions in order.
func (z *Quiz) Items() []ItemView {
	views := make([]ItemView, len(z.items))
	for i := range z.items {
		views[i] = z.items[i].view()
	}
	return views
}

// Answers returns a copy of the recorded answers keyed by question id.
func (z *Quiz) Answers() map[string]int {
	out := make(map[string]int)
	for i := range z.items {
		if z.items[i].answered() {
			out[z.items[i].q.ID] = z.items[i].selected
		}
	}
	return out
}

// Restore replaces the quiz state with a snapshot taken by Answers. The
// snapshot is checked in full first; on error the quiz is unchanged.
func (z *Quiz) Restore(answers map[string]int) error {
	for id, option := range answers {
		i, ok := z.index[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
		}
		if !z.items[i].q.HasOption(option) {
			return fmt.Errorf("%w: %s: %d", ErrOptionOutOfRange, id, option)
		}
	}

	z.Reset()
	for id, option := range answers {
		_, _ = z.items[z.index[id]].choose(option)
	}
	return nil
}
