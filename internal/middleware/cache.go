package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl lets clients reuse responses that never change during a deployment,
// such as the questionnaire catalog.
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
