package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
	"github.com/neuronalfit/assessment-backend/internal/service"
)

// failWith maps a service error onto the API error envelope.
// Unexpected errors are attached to the context so the access log records them.
func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrInvalidRole):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrStudentNotFound), errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionNotInProgress):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotInProgress)
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrSessionNotCompleted):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	case errors.Is(err, service.ErrInvalidScore):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidScore)
	case errors.Is(err, scoring.ErrEmptyReport):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrEmptyReport)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramUUID parses a UUID path parameter, answering 400 when malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// paramInt parses a positive integer path parameter, answering 400 when malformed.
func paramInt(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
