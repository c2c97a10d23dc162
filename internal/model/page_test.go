package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestQuestionUnmarshalCorrectIndex(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    int
		wantErr error
	}{
		{"canonical", `{"id":"a","question":"Q","options":["x","y"],"correct_index":1,"explanation":"e"}`, 1, nil},
		{"legacy alias", `{"id":"a","question":"Q","options":["x","y"],"correct_answer":0,"explanation":"e"}`, 0, nil},
		{"both agree", `{"id":"a","question":"Q","options":["x","y"],"correct_index":1,"correct_answer":1,"explanation":"e"}`, 1, nil},
		{"both disagree", `{"id":"a","question":"Q","options":["x","y"],"correct_index":1,"correct_answer":0,"explanation":"e"}`, 0, ErrConflictingCorrectIndex},
		{"missing", `{"id":"a","question":"Q","options":["x","y"],"explanation":"e"}`, 0, ErrMissingCorrectIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Question
			err := json.Unmarshal([]byte(tt.doc), &q)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && q.CorrectIndex != tt.want {
				t.Fatalf("CorrectIndex = %d, want %d", q.CorrectIndex, tt.want)
			}
		})
	}
}

func TestPublicPageHidesAnswers(t *testing.T) {
	q := Question{ID: "q1", Prompt: "Which?", Options: []string{"a", "b"}, CorrectIndex: 1, Explanation: "because b"}
	p := &Page{
		Slug:     "p",
		Kind:     PageKindModule,
		Title:    "P",
		Sections: []Section{{ID: "s1", Heading: "H", Paragraphs: []string{"x"}, Check: &q}},
		Quiz:     &QuizBlock{Title: "Quiz", Questions: []Question{q}},
	}

	raw, err := json.Marshal(p.Public())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	body := string(raw)
	for _, leak := range []string{"correct_index", "because b", "explanation"} {
		if strings.Contains(body, leak) {
			t.Errorf("public page leaks %q: %s", leak, body)
		}
	}

	s := p.Listing()
	if s.CheckCount != 1 || s.QuizLength != 1 {
		t.Errorf("listing = %+v", s)
	}
}
