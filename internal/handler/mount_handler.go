package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/middleware"
	"github.com/stemsi/sitesafe-learn/internal/model"
	"github.com/stemsi/sitesafe-learn/internal/response"
	"github.com/stemsi/sitesafe-learn/internal/service"
	"github.com/stemsi/sitesafe-learn/internal/validator"
)

// MountHandler serves the JSON API for pages and mounts.
type MountHandler struct {
	pageService  *service.PageService
	mountService *service.MountService
	log          zerolog.Logger
}

// NewMountHandler creates a new MountHandler.
func NewMountHandler(pageService *service.PageService, mountService *service.MountService, log zerolog.Logger) *MountHandler {
	return &MountHandler{
		pageService:  pageService,
		mountService: mountService,
		log:          log.With().Str("component", "mount_handler").Logger(),
	}
}

func (h *MountHandler) fail(c *gin.Context, err error) {
	status, code := classify(err)
	logUnexpected(h.log, status, err)
	response.Fail(c, status, code)
}

// ListPages godoc
// GET /api/v1/pages
func (h *MountHandler) ListPages(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"pages": h.pageService.List()})
}

// GetPage godoc
// GET /api/v1/pages/:slug
// Returns page content without answers; they are revealed through a mount.
func (h *MountHandler) GetPage(c *gin.Context) {
	page, err := h.pageService.Get(c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, page.Public())
}

// CreateMount godoc
// POST /api/v1/pages/:slug/mounts
// Starts a fresh rendering of the page and returns its ticket.
func (h *MountHandler) CreateMount(c *gin.Context) {
	ticket, err := h.mountService.Mount(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ticket)
}

// GetMount godoc
// GET /api/v1/mount
func (h *MountHandler) GetMount(c *gin.Context) {
	m := middleware.GetMount(c)
	if m == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTicketRequired)
		return
	}

	state, err := h.mountService.State(c.Request.Context(), m)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// SelectCheck godoc
// POST /api/v1/mount/checks/:section_id/select
func (h *MountHandler) SelectCheck(c *gin.Context) {
	m := middleware.GetMount(c)
	if m == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTicketRequired)
		return
	}

	var req model.SelectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.mountService.SelectCheck(c.Request.Context(), m, c.Param("section_id"), *req.Option)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// AnswerQuiz godoc
// POST /api/v1/mount/quiz/answers
func (h *MountHandler) AnswerQuiz(c *gin.Context) {
	m := middleware.GetMount(c)
	if m == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTicketRequired)
		return
	}

	var req model.AnswerQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.mountService.AnswerQuiz(c.Request.Context(), m, req.QuestionID, *req.Option)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// GetScore godoc
// GET /api/v1/mount/quiz/score
func (h *MountHandler) GetScore(c *gin.Context) {
	m := middleware.GetMount(c)
	if m == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTicketRequired)
		return
	}

	score, err := h.mountService.Score(c.Request.Context(), m)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, score)
}

// ResetQuiz godoc
// POST /api/v1/mount/quiz/reset
func (h *MountHandler) ResetQuiz(c *gin.Context) {
	m := middleware.GetMount(c)
	if m == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTicketRequired)
		return
	}

	state, err := h.mountService.ResetQuiz(c.Request.Context(), m)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// DiscardMount godoc
// DELETE /api/v1/mount
// Called when the reader navigates away.
func (h *MountHandler) DiscardMount(c *gin.Context) {
	m := middleware.GetMount(c)
	if m == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTicketRequired)
		return
	}

	if err := h.mountService.Discard(c.Request.Context(), m); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}
