package quiz

// Check is an InlineCheck: one question embedded in article flow with
// immediate feedback.
type Check struct {
	it item
}

// NewCheck validates q and returns an unanswered Check.
func NewCheck(q Question) (*Check, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &Check{it: newItem(q)}, nil
}

// Question returns the underlying question.
func (c *Check) Question() Question {
	return c.it.q
}

// Select records option as the reader's answer and reveals the explanation.
// Re-selecting replaces the previous answer.
func (c *Check) Select(option int) (Outcome, error) {
	return c.it.choose(option)
}

// Answered reports whether an option has been chosen.
func (c *Check) Answered() bool {
	return c.it.answered()
}

// Selected returns the chosen option or NoSelection.
func (c *Check) Selected() int {
	return c.it.selected
}

// IsCorrect reports whether the current selection is correct.
func (c *Check) IsCorrect() bool {
	return c.it.correct()
}

// View returns a display snapshot.
func (c *Check) View() ItemView {
	return c.it.view()
}
