package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"LoginChat/logger"
)

// Origin rejects cross-origin websocket upgrades unless the Origin
// header is in the allow list. An empty allow list permits everything,
// which is the demo default.
func Origin(allowed []string) gin.HandlerFunc {
	allow := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allow[o] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if len(allow) == 0 || origin == "" {
			c.Next()
			return
		}
		if _, ok := allow[origin]; !ok {
			logger.Warnf("[origin] rejected origin=%s path=%s", origin, c.Request.URL.Path)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
