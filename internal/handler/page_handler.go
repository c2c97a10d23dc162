package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/model"
	"github.com/stemsi/sitesafe-learn/internal/response"
	"github.com/stemsi/sitesafe-learn/internal/service"
	"github.com/stemsi/sitesafe-learn/internal/validator"
	"github.com/stemsi/sitesafe-learn/internal/web"
)

// ticketParam carries the mount ticket through links and forms.
const ticketParam = "m"

// PageHandler serves the server-rendered site. Widgets post forms and
// follow a redirect back to the anchored widget.
type PageHandler struct {
	pageService  *service.PageService
	mountService *service.MountService
	log          zerolog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(pageService *service.PageService, mountService *service.MountService, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		pageService:  pageService,
		mountService: mountService,
		log:          log.With().Str("component", "page_handler").Logger(),
	}
}

// Index godoc
// GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", web.IndexView{Pages: h.pageService.List()})
}

// Show godoc
// GET /learn/:slug
// Renders the page for the mount named by ?m=, or mounts it afresh when the
// ticket is absent, expired or for another page.
func (h *PageHandler) Show(c *gin.Context) {
	slug := c.Param("slug")
	page, err := h.pageService.Get(slug)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	token := c.Query(ticketParam)
	m, err := h.liveMount(token, slug)
	if err != nil {
		ticket, err := h.mountService.Mount(ctx, slug)
		if err != nil {
			h.fail(c, err)
			return
		}
		token = ticket.Token
		if m, err = h.mountService.ParseTicket(token); err != nil {
			h.fail(c, err)
			return
		}
	}

	state, err := h.mountService.State(ctx, m)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "page.html", web.NewPageView(page, token, state))
}

// SelectCheck godoc
// POST /learn/:slug/checks/:section_id
func (h *PageHandler) SelectCheck(c *gin.Context) {
	slug, sectionID := c.Param("slug"), c.Param("section_id")

	m, ok := h.formMount(c, slug)
	if !ok {
		return
	}

	var req model.SelectOptionRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		h.failValidation(c, fields)
		return
	}

	if _, err := h.mountService.SelectCheck(c.Request.Context(), m, sectionID, *req.Option); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, slug, c.PostForm(ticketParam), "check-"+sectionID)
}

// AnswerQuiz godoc
// POST /learn/:slug/quiz/answers
func (h *PageHandler) AnswerQuiz(c *gin.Context) {
	slug := c.Param("slug")

	m, ok := h.formMount(c, slug)
	if !ok {
		return
	}

	var req model.AnswerQuizRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		h.failValidation(c, fields)
		return
	}

	if _, err := h.mountService.AnswerQuiz(c.Request.Context(), m, req.QuestionID, *req.Option); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, slug, c.PostForm(ticketParam), "q-"+req.QuestionID)
}

// ResetQuiz godoc
// POST /learn/:slug/quiz/reset
func (h *PageHandler) ResetQuiz(c *gin.Context) {
	slug := c.Param("slug")

	m, ok := h.formMount(c, slug)
	if !ok {
		return
	}

	if _, err := h.mountService.ResetQuiz(c.Request.Context(), m); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, slug, c.PostForm(ticketParam), "quiz")
}

// liveMount parses token and checks it belongs to slug.
func (h *PageHandler) liveMount(token, slug string) (*service.MountClaims, error) {
	if token == "" {
		return nil, service.ErrInvalidTicket
	}
	m, err := h.mountService.ParseTicket(token)
	if err != nil {
		return nil, err
	}
	if m.Page != slug {
		return nil, fmt.Errorf("%w: ticket is for %q", service.ErrInvalidTicket, m.Page)
	}
	return m, nil
}

// formMount resolves the posted ticket. A dead ticket sends the reader to a
// fresh rendering of the page; there is nothing to salvage.
func (h *PageHandler) formMount(c *gin.Context, slug string) (*service.MountClaims, bool) {
	if _, err := h.pageService.Get(slug); err != nil {
		h.fail(c, err)
		return nil, false
	}

	m, err := h.liveMount(c.PostForm(ticketParam), slug)
	if err != nil {
		if errors.Is(err, service.ErrMountExpired) {
			h.log.Debug().Str("page", slug).Msg("Expired mount, remounting")
		}
		c.Redirect(http.StatusSeeOther, "/learn/"+url.PathEscape(slug))
		return nil, false
	}
	return m, true
}

func (h *PageHandler) redirect(c *gin.Context, slug, token, anchor string) {
	target := url.URL{
		Path:     "/learn/" + slug,
		RawQuery: url.Values{ticketParam: {token}}.Encode(),
		Fragment: anchor,
	}
	c.Redirect(http.StatusSeeOther, target.String())
}

func (h *PageHandler) fail(c *gin.Context, err error) {
	status, code := classify(err)
	logUnexpected(h.log, status, err)
	c.HTML(status, "error.html", web.ErrorView{Status: status, Message: response.GetMessage(code)})
}

func (h *PageHandler) failValidation(c *gin.Context, fields map[string]string) {
	msg := response.GetMessage(response.ErrValidation)
	for _, m := range fields {
		msg = m
		break
	}
	c.HTML(http.StatusBadRequest, "error.html", web.ErrorView{Status: http.StatusBadRequest, Message: msg})
}
