package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/middleware"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/neuronalfit/assessment-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	evaluatorService *service.EvaluatorService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(evaluatorService *service.EvaluatorService) *AuthHandler {
	return &AuthHandler{evaluatorService: evaluatorService}
}

// Login godoc
// POST /api/v1/auth/login
// Authenticates an evaluator and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.evaluatorService.Login(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the identity carried by the current token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"evaluator_id": claims.UserID,
		"role":         claims.Role,
		"expires_at":   claims.ExpiresAt.Time,
	})
}
