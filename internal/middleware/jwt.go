package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

var errTokenMissing = errors.New("authorization header or token query required")

// RequireEvaluatorJWT validates an evaluator JWT from the Authorization header.
func RequireEvaluatorJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireWSAuth validates an evaluator JWT from the query param ?token=...
// Used for WebSocket upgrade requests.
func RequireWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractAndValidateClaims(c *gin.Context, authService *service.AuthService) (*service.Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = strings.TrimSpace(parts[1])
		}
	}

	if tokenStr == "" {
		return nil, errTokenMissing
	}

	return authService.ValidateToken(tokenStr)
}

func abortTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errTokenMissing):
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.Is(err, jwt.ErrTokenExpired):
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
	default:
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
	}
}
