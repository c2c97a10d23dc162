package web

import (
	"fmt"

	"github.com/stemsi/sitesafe-learn/internal/model"
	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

// Widget is one rendered question form.
type Widget struct {
	Item       quiz.ItemView
	Action     string
	Ticket     string
	QuestionID string
}

// PageView is the data of page.html.
type PageView struct {
	Page      *model.Page
	Ticket    string
	Checks    map[string]*Widget
	Quiz      *model.QuizState
	QuizItems []Widget
}

// IndexView is the data of index.html.
type IndexView struct {
	Pages []model.PageSummary
}

// ErrorView is the data of error.html.
type ErrorView struct {
	Status  int
	Message string
}

// NewPageView binds a mount state to its page for rendering.
func NewPageView(p *model.Page, ticket string, state *model.MountState) PageView {
	v := PageView{
		Page:   p,
		Ticket: ticket,
		Checks: make(map[string]*Widget, len(state.Checks)),
		Quiz:   state.Quiz,
	}
	for _, c := range state.Checks {
		v.Checks[c.SectionID] = &Widget{
			Item:   c.Item,
			Action: fmt.Sprintf("/learn/%s/checks/%s", p.Slug, c.SectionID),
			Ticket: ticket,
		}
	}
	if state.Quiz != nil {
		action := fmt.Sprintf("/learn/%s/quiz/answers", p.Slug)
		for _, item := range state.Quiz.Items {
			v.QuizItems = append(v.QuizItems, Widget{
				Item:       item,
				Action:     action,
				Ticket:     ticket,
				QuestionID: item.QuestionID,
			})
		}
	}
	return v
}
