package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/response"
)

// RequireRole checks that the JWT carries one of the given roles.
// Must run after RequireEvaluatorJWT.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !slices.Contains(roles, claims.Role) {
			code := response.ErrForbidden
			if len(roles) == 1 && roles[0] == model.RoleAdmin {
				code = response.ErrAdminAccessOnly
			}
			response.AbortFail(c, http.StatusForbidden, code)
			return
		}

		c.Next()
	}
}
