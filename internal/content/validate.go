package content

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stemsi/sitesafe-learn/internal/model"
	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// newValidator returns a validator for content documents. Field names in
// errors use the JSON keys authors write.
func newValidator() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl govalidator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidatePage checks document structure, then builds every widget through
// the engine so any question it would reject fails here instead.
func ValidatePage(v *govalidator.Validate, p *model.Page) error {
	if err := v.Struct(p); err != nil {
		return fmt.Errorf("page %q: %w", p.Slug, describe(err))
	}

	sections := make(map[string]struct{}, len(p.Sections))
	var checks []quiz.Question
	for _, sec := range p.Sections {
		if _, dup := sections[sec.ID]; dup {
			return fmt.Errorf("page %q: duplicate section id %q", p.Slug, sec.ID)
		}
		sections[sec.ID] = struct{}{}

		if sec.Check == nil {
			continue
		}
		if _, err := quiz.NewCheck(sec.Check.Engine()); err != nil {
			return fmt.Errorf("page %q: section %q: %w", p.Slug, sec.ID, err)
		}
		checks = append(checks, sec.Check.Engine())
	}
	if err := quiz.ValidateSet(checks); err != nil {
		return fmt.Errorf("page %q: inline checks: %w", p.Slug, err)
	}

	if p.Quiz != nil {
		if _, err := quiz.NewQuiz(p.Quiz.Title, engineQuestions(p.Quiz.Questions)); err != nil {
			return fmt.Errorf("page %q: quiz: %w", p.Slug, err)
		}
	}
	return nil
}

// describe flattens validator errors into one readable line.
func describe(err error) error {
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidContent, strings.Join(parts, "; "))
}

func engineQuestions(qs []model.Question) []quiz.Question {
	out := make([]quiz.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Engine()
	}
	return out
}
