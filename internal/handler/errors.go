package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/quiz"
	"github.com/stemsi/sitesafe-learn/internal/response"
	"github.com/stemsi/sitesafe-learn/internal/service"
)

// classify maps domain errors to an HTTP status and API error code.
func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrPageNotFound):
		return http.StatusNotFound, response.ErrPageNotFound
	case errors.Is(err, service.ErrCheckNotFound):
		return http.StatusNotFound, response.ErrCheckNotFound
	case errors.Is(err, service.ErrNoQuiz):
		return http.StatusNotFound, response.ErrNoQuiz
	case errors.Is(err, quiz.ErrUnknownQuestion):
		return http.StatusBadRequest, response.ErrUnknownQuestion
	case errors.Is(err, quiz.ErrOptionOutOfRange):
		return http.StatusBadRequest, response.ErrOptionRange
	case errors.Is(err, service.ErrMountExpired):
		return http.StatusGone, response.ErrMountExpired
	case errors.Is(err, service.ErrInvalidTicket):
		return http.StatusUnauthorized, response.ErrTicketInvalid
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// logUnexpected records errors that are not the caller's fault.
func logUnexpected(log zerolog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
}
