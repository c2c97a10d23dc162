package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stemsi/sitesafe-learn/internal/quiz"
	"github.com/stemsi/sitesafe-learn/internal/response"
	"github.com/stemsi/sitesafe-learn/internal/service"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   response.ErrCode
	}{
		{fmt.Errorf("x: %w", service.ErrPageNotFound), http.StatusNotFound, response.ErrPageNotFound},
		{service.ErrCheckNotFound, http.StatusNotFound, response.ErrCheckNotFound},
		{service.ErrNoQuiz, http.StatusNotFound, response.ErrNoQuiz},
		{fmt.Errorf("%w: q", quiz.ErrUnknownQuestion), http.StatusBadRequest, response.ErrUnknownQuestion},
		{fmt.Errorf("%w: 9", quiz.ErrOptionOutOfRange), http.StatusBadRequest, response.ErrOptionRange},
		{service.ErrMountExpired, http.StatusGone, response.ErrMountExpired},
		{service.ErrInvalidTicket, http.StatusUnauthorized, response.ErrTicketInvalid},
		{errors.New("redis down"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		status, code := classify(tt.err)
		if status != tt.wantStatus || code != tt.wantCode {
			t.Errorf("classify(%v) = %d %s, want %d %s", tt.err, status, code, tt.wantStatus, tt.wantCode)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		90 * time.Second:             "1m 30s",
		2*time.Hour + 5*time.Minute:  "2h 5m 0s",
		26*time.Hour + 3*time.Second: "1d 2h 0m 3s",
	}
	for d, want := range tests {
		if got := formatDuration(d); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestBuildUpgraderOrigins(t *testing.T) {
	open := buildUpgrader(nil)
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	if !open.CheckOrigin(req) {
		t.Error("empty allow-list should accept any origin")
	}

	strict := buildUpgrader([]string{"https://sitesafe.example"})
	if strict.CheckOrigin(req) {
		t.Error("foreign origin accepted")
	}
	req.Header.Set("Origin", "https://SITESAFE.example")
	if !strict.CheckOrigin(req) {
		t.Error("allowed origin rejected")
	}
}
