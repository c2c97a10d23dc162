package quiz

import "fmt"

// NoSelection is the Selected value of an unanswered item.
const NoSelection = -1

// OptionState is the display emphasis of one option.
type OptionState string

const (
	OptionIdle            OptionState = "idle"
	OptionChosenCorrect   OptionState = "chosen_correct"
	OptionChosenIncorrect OptionState = "chosen_incorrect"
	OptionCorrectRevealed OptionState = "correct"
)

// Outcome is the result of a selection.
type Outcome struct {
	QuestionID  string `json:"question_id"`
	Selected    int    `json:"selected"`
	Correct     bool   `json:"correct"`
	Changed     bool   `json:"changed"`
	Explanation string `json:"explanation"`
}

// OptionView is one rendered option.
type OptionView struct {
	Index int         `json:"index"`
	Text  string      `json:"text"`
	State OptionState `json:"state"`
}

// ItemView is a read-only snapshot of one question's state.
type ItemView struct {
	QuestionID  string       `json:"question_id"`
	Prompt      string       `json:"prompt"`
	Options     []OptionView `json:"options"`
	Answered    bool         `json:"answered"`
	Revealed    bool         `json:"revealed"`
	Selected    int          `json:"selected"`
	Correct     bool         `json:"correct"`
	Explanation string       `json:"explanation,omitempty"`
}

// item is the per-question state machine shared by Check and Quiz:
// Unanswered -> Answered(i) -> Answered(i'). Transitions happen only on an
// explicit selection; answering reveals and only clear() hides again.
type item struct {
	q        Question
	selected int
	revealed bool
}

func newItem(q Question) item {
	return item{q: q, selected: NoSelection}
}

func (it *item) answered() bool {
	return it.selected != NoSelection
}

func (it *item) correct() bool {
	return it.answered() && it.q.IsCorrect(it.selected)
}

func (it *item) choose(option int) (Outcome, error) {
	if !it.q.HasOption(option) {
		return Outcome{}, fmt.Errorf("%w: %s: %d", ErrOptionOutOfRange, it.q.ID, option)
	}

	changed := it.selected != option
	it.selected = option
	it.revealed = true

	return Outcome{
		QuestionID:  it.q.ID,
		Selected:    option,
		Correct:     it.q.IsCorrect(option),
		Changed:     changed,
		Explanation: it.q.Explanation,
	}, nil
}

func (it *item) clear() {
	it.selected = NoSelection
	it.revealed = false
}

func (it *item) view() ItemView {
	v := ItemView{
		QuestionID: it.q.ID,
		Prompt:     it.q.Prompt,
		Options:    make([]OptionView, len(it.q.Options)),
		Answered:   it.answered(),
		Revealed:   it.revealed,
		Selected:   it.selected,
		Correct:    it.correct(),
	}
	if it.revealed {
		v.Explanation = it.q.Explanation
	}

	for i, text := range it.q.Options {
		state := OptionIdle
		switch {
		case !it.revealed:
		case i == it.selected && it.q.IsCorrect(i):
			state = OptionChosenCorrect
		case i == it.selected:
			state = OptionChosenIncorrect
		case it.q.IsCorrect(i):
			state = OptionCorrectRevealed
		}
		v.Options[i] = OptionView{Index: i, Text: text, State: state}
	}
	return v
}
