package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/middleware"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/neuronalfit/assessment-backend/internal/validator"
)

// SessionHandler handles the lifecycle of test sessions.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// CreateSession godoc
// POST /api/v1/sessions
// Opens a pending session for a student, led by the calling evaluator.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.Create(c.Request.Context(), req.StudentID, claims.UserID)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": sess})
}

// GetSession godoc
// GET /api/v1/sessions/:id
// Returns the session with every answer recorded so far.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	state, err := h.sessionService.State(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// StartSession godoc
// POST /api/v1/sessions/:id/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	h.transition(c, h.sessionService.Start)
}

// CompleteSession godoc
// POST /api/v1/sessions/:id/complete
// Persists buffered answers and closes the session.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	h.transition(c, h.sessionService.Complete)
}

// CancelSession godoc
// POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) CancelSession(c *gin.Context) {
	h.transition(c, h.sessionService.Cancel)
}

// RecordResponse godoc
// POST /api/v1/sessions/:id/responses
// Stores the answer to one question of an in-progress session.
func (h *SessionHandler) RecordResponse(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.RecordResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.sessionService.RecordResponse(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"response": resp})
}

func (h *SessionHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*model.TestSession, error)) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	sess, err := apply(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess})
}
