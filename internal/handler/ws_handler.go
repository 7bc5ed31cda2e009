package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/neuronalfit/assessment-backend/internal/middleware"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
	ws "github.com/neuronalfit/assessment-backend/internal/websocket"
	"github.com/rs/zerolog"
)

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

// WSHandler streams answers of an in-progress session over a WebSocket.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:id/stream?token=...
// Upgrades to WebSocket for answer autosave and session submission.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	// The session must be running before the upgrade.
	state, err := h.sessionService.State(c.Request.Context(), sessionID)
	if err != nil {
		failWith(c, err)
		return
	}
	if state.Session.Status != model.SessionStatusInProgress {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotInProgress)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("evaluator_id", claims.UserID).
		Str("session_id", sessionID.String()).
		Logger()

	wsLog.Info().Msg("Evaluator connected")
	_ = ws.WriteJSON(conn, ws.EventState, state)

	answered := make(map[string]struct{}, len(state.Answers))
	for qid := range state.Answers {
		answered[qid] = struct{}{}
	}

	// The connection outlives the upgrade request; use a context detached from it.
	ctx := context.WithoutCancel(c.Request.Context())

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(ctx, conn, wsLog, sessionID, &msg, answered)
		case ws.ActionSubmit:
			if h.handleSubmit(ctx, conn, wsLog, sessionID) {
				return
			}
		case ws.ActionPing:
			_ = ws.WriteJSON(conn, ws.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleAnswer autosaves a single answer.
func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, sessionID uuid.UUID, msg *ws.RequestPayload, answered map[string]struct{}) {
	if msg.QuestionID == "" || msg.AnswerScore == nil {
		_ = ws.WriteError(conn, "question_id and answer_score are required")
		return
	}

	if _, err := h.sessionService.Autosave(ctx, sessionID, msg.QuestionID, *msg.AnswerScore, msg.Notes); err != nil {
		_ = ws.WriteError(conn, wsErrorMessage(err))
		if !isClientError(err) {
			wsLog.Error().Err(err).Msg("Autosave error")
		}
		return
	}

	answered[msg.QuestionID] = struct{}{}
	_ = ws.WriteJSON(conn, ws.EventSaved, ws.SavedData{
		QuestionID:    msg.QuestionID,
		AnsweredCount: len(answered),
	})
}

// handleSubmit completes the session. It reports whether the stream should end.
func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, sessionID uuid.UUID) bool {
	sess, err := h.sessionService.Complete(ctx, sessionID)
	if err != nil {
		_ = ws.WriteError(conn, wsErrorMessage(err))
		if !isClientError(err) {
			wsLog.Error().Err(err).Msg("Submit error")
		}
		return false
	}

	wsLog.Info().Msg("Session submitted")
	_ = ws.WriteJSON(conn, ws.EventCompleted, sess)
	return true
}

func isClientError(err error) bool {
	return errors.Is(err, service.ErrSessionNotInProgress) ||
		errors.Is(err, service.ErrInvalidTransition) ||
		errors.Is(err, service.ErrUnknownQuestion) ||
		errors.Is(err, service.ErrInvalidScore) ||
		errors.Is(err, service.ErrSessionNotFound)
}

func wsErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrSessionNotInProgress):
		return response.GetMessage(response.ErrSessionNotInProgress)
	case errors.Is(err, service.ErrInvalidTransition):
		return response.GetMessage(response.ErrInvalidTransition)
	case errors.Is(err, service.ErrUnknownQuestion):
		return response.GetMessage(response.ErrUnknownQuestion)
	case errors.Is(err, service.ErrInvalidScore):
		return response.GetMessage(response.ErrInvalidScore)
	case errors.Is(err, service.ErrSessionNotFound):
		return response.GetMessage(response.ErrNotFound)
	default:
		return response.GetMessage(response.ErrInternal)
	}
}
