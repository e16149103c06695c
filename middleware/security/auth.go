package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"LoginChat/tools/errs"
	"LoginChat/tools/security"
)

// CtxUserIDKey is written by Middleware; downstream handlers read the
// authenticated identity through it.
const CtxUserIDKey = "authUserId"

// Middleware validates the Authorization bearer token and stores the
// token subject in the request context.
func Middleware(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}
		claims, err := security.Verify(opts, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid.WithDetail(err.Error()))
			return
		}
		c.Set(CtxUserIDKey, claims.UserID())
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if authz == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return authz
}
