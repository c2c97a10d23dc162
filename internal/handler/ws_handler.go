package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/middleware"
	"github.com/stemsi/sitesafe-learn/internal/response"
	"github.com/stemsi/sitesafe-learn/internal/service"
	"github.com/stemsi/sitesafe-learn/internal/validator"
	ws "github.com/stemsi/sitesafe-learn/internal/websocket"
)

var timeNow = time.Now

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams widget interactions of one mount over a WebSocket.
type WSHandler struct {
	mountService *service.MountService
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(mountService *service.MountService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		mountService: mountService,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// MountStream godoc
// WS /ws/v1/mount?token=
// Upgrades to WebSocket for selecting options and reading the score of the
// mounted page. Closing the socket does not discard the mount.
func (h *WSHandler) MountStream(c *gin.Context) {
	m := middleware.GetMount(c)
	if m == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTicketRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(ws.MaxMessageSize)

	wsLog := h.log.With().
		Str("mount_id", m.MountID.String()).
		Str("page", m.Page).
		Logger()

	wsLog.Debug().Msg("Mount stream connected")

	ctx := c.Request.Context()
	for {
		data, err := ws.ReadMessage(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if m.ExpiresAt != nil && !m.ExpiresAt.After(timeNow()) {
			_ = ws.WriteError(conn, string(response.ErrMountExpired), response.GetMessage(response.ErrMountExpired))
			return
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = ws.WriteError(conn, string(response.ErrInvalidPayload), response.GetMessage(response.ErrInvalidPayload))
			continue
		}

		if err := h.dispatch(ctx, conn, m, env.Action, data); err != nil {
			wsLog.Debug().Err(err).Msg("Write failed")
			return
		}
	}
}

// dispatch handles one client action. A returned error means the socket is
// no longer writable.
func (h *WSHandler) dispatch(ctx context.Context, conn *websocket.Conn, m *service.MountClaims, action ws.Action, data []byte) error {
	switch action {
	case ws.ActionPing:
		return ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})

	case ws.ActionSelect:
		var req ws.SelectRequest
		if fields := decode(data, &req); fields != nil {
			return writeValidation(conn, fields)
		}
		out, err := h.mountService.SelectCheck(ctx, m, req.SectionID, *req.Option)
		if err != nil {
			return h.writeFailure(conn, err)
		}
		return ws.WriteTyped(conn, ws.RevealedResponse{
			Event:     ws.EventRevealed,
			Widget:    ws.WidgetCheck,
			SectionID: req.SectionID,
			Outcome:   *out,
		})

	case ws.ActionAnswer:
		var req ws.AnswerRequest
		if fields := decode(data, &req); fields != nil {
			return writeValidation(conn, fields)
		}
		res, err := h.mountService.AnswerQuiz(ctx, m, req.QuestionID, *req.Option)
		if err != nil {
			return h.writeFailure(conn, err)
		}
		return ws.WriteTyped(conn, ws.RevealedResponse{
			Event:   ws.EventRevealed,
			Widget:  ws.WidgetQuiz,
			Outcome: res.Outcome,
			Score:   &res.Score,
		})

	case ws.ActionScore:
		score, err := h.mountService.Score(ctx, m)
		if err != nil {
			return h.writeFailure(conn, err)
		}
		return ws.WriteTyped(conn, ws.ScoredResponse{Event: ws.EventScored, Score: *score})

	case ws.ActionReset:
		state, err := h.mountService.ResetQuiz(ctx, m)
		if err != nil {
			return h.writeFailure(conn, err)
		}
		return ws.WriteTyped(conn, ws.ResetResponse{Event: ws.EventReset, Quiz: state})

	case ws.ActionState:
		state, err := h.mountService.State(ctx, m)
		if err != nil {
			return h.writeFailure(conn, err)
		}
		return ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: state})

	default:
		h.log.Debug().Str("action", string(action)).Msg("Unknown action")
		return ws.WriteError(conn, string(response.ErrUnknownAction), "unknown action: "+string(action))
	}
}

func (h *WSHandler) writeFailure(conn *websocket.Conn, err error) error {
	status, code := classify(err)
	logUnexpected(h.log, status, err)
	return ws.WriteError(conn, string(code), response.GetMessage(code))
}

func decode(data []byte, dst interface{}) map[string]string {
	if err := json.Unmarshal(data, dst); err != nil {
		return validator.TranslateErrors(err)
	}
	return validator.Validate(dst)
}

func writeValidation(conn *websocket.Conn, fields map[string]string) error {
	return ws.WriteFieldErrors(conn, string(response.ErrValidation), response.GetMessage(response.ErrValidation), fields)
}
