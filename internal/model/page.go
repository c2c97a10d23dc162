package model

import "time"

// PageKind distinguishes marketing guides from study modules.
type PageKind string

const (
	PageKindGuide  PageKind = "GUIDE"
	PageKindModule PageKind = "MODULE"
)

// Page is one content page: article sections, optional inline checks, FAQs,
// key takeaways and an optional end-of-page quiz.
type Page struct {
	Slug      string     `json:"slug" validate:"required,slug,max=100"`
	Kind      PageKind   `json:"kind" validate:"required,oneof=GUIDE MODULE"`
	Title     string     `json:"title" validate:"required,max=255"`
	Summary   string     `json:"summary" validate:"max=500"`
	Sections  []Section  `json:"sections" validate:"required,min=1,dive"`
	FAQs      []FAQ      `json:"faqs,omitempty" validate:"dive"`
	Takeaways []string   `json:"takeaways,omitempty" validate:"dive,required"`
	Quiz      *QuizBlock `json:"quiz,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Section is a block of article copy with an optional InlineCheck.
type Section struct {
	ID         string    `json:"id" validate:"required,slug,max=64"`
	Heading    string    `json:"heading" validate:"required,max=255"`
	Paragraphs []string  `json:"paragraphs" validate:"dive,required"`
	Check      *Question `json:"check,omitempty"`
}

// FAQ is a question/answer pair shown under the article.
type FAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// QuizBlock is the end-of-page assessment.
type QuizBlock struct {
	Title     string     `json:"title" validate:"required,max=255"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// PageSummary is the catalog listing entry for a page.
type PageSummary struct {
	Slug       string   `json:"slug"`
	Kind       PageKind `json:"kind"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	CheckCount int      `json:"check_count"`
	QuizLength int      `json:"quiz_length"`
}

// Listing builds the catalog entry for p.
func (p *Page) Listing() PageSummary {
	s := PageSummary{
		Slug:    p.Slug,
		Kind:    p.Kind,
		Title:   p.Title,
		Summary: p.Summary,
	}
	for _, sec := range p.Sections {
		if sec.Check != nil {
			s.CheckCount++
		}
	}
	if p.Quiz != nil {
		s.QuizLength = len(p.Quiz.Questions)
	}
	return s
}

// Section returns the section with the given id.
func (p *Page) Section(id string) (*Section, bool) {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i], true
		}
	}
	return nil, false
}

// PublicQuestion is a question as shown before it is answered. It never
// carries the correct option or the explanation.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// PublicSection is a section with its check stripped of answers.
type PublicSection struct {
	ID         string          `json:"id"`
	Heading    string          `json:"heading"`
	Paragraphs []string        `json:"paragraphs"`
	Check      *PublicQuestion `json:"check,omitempty"`
}

// PublicQuiz is the quiz block stripped of answers.
type PublicQuiz struct {
	Title     string           `json:"title"`
	Questions []PublicQuestion `json:"questions"`
}

// PublicPage is the API shape of a page.
type PublicPage struct {
	Slug      string          `json:"slug"`
	Kind      PageKind        `json:"kind"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	Sections  []PublicSection `json:"sections"`
	FAQs      []FAQ           `json:"faqs"`
	Takeaways []string        `json:"takeaways"`
	Quiz      *PublicQuiz     `json:"quiz,omitempty"`
}

// Public returns p without answers, for clients that reveal them only
// through a mount.
func (p *Page) Public() PublicPage {
	out := PublicPage{
		Slug:      p.Slug,
		Kind:      p.Kind,
		Title:     p.Title,
		Summary:   p.Summary,
		Sections:  make([]PublicSection, len(p.Sections)),
		FAQs:      append([]FAQ{}, p.FAQs...),
		Takeaways: append([]string{}, p.Takeaways...),
	}
	for i, sec := range p.Sections {
		out.Sections[i] = PublicSection{ID: sec.ID, Heading: sec.Heading, Paragraphs: sec.Paragraphs}
		if sec.Check != nil {
			q := sec.Check.Public()
			out.Sections[i].Check = &q
		}
	}
	if p.Quiz != nil {
		out.Quiz = &PublicQuiz{Title: p.Quiz.Title, Questions: make([]PublicQuestion, len(p.Quiz.Questions))}
		for i, q := range p.Quiz.Questions {
			out.Quiz.Questions[i] = q.Public()
		}
	}
	return out
}
