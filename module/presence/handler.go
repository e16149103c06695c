package presence

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"LoginChat/logger"
	"LoginChat/tools/errs"
)

// Lookup reports mirrored liveness for one user. *storage.Mirror
// implements it; tests substitute a fake.
type Lookup interface {
	Lookup(ctx context.Context, user string) (nodeID string, online bool, err error)
}

// Handler exposes the mirrored-presence query surface. It is only
// mounted when the redis mirror is configured.
type Handler struct {
	mirror Lookup
}

func NewHandler(mirror Lookup) *Handler {
	return &Handler{mirror: mirror}
}

// Register mounts the routes behind the bearer-token middleware.
func (h *Handler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	r.GET("/presence/:user", auth, h.Presence)
}

// Presence answers whether :user is currently online and, if so, on
// which gateway node.
func (h *Handler) Presence(c *gin.Context) {
	user := c.Param("user")
	nodeID, online, err := h.mirror.Lookup(c.Request.Context(), user)
	if err != nil {
		logger.Errorf("[presence] lookup failed user=%s err=%v", user, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	resp := gin.H{"user_id": user, "online": online}
	if online {
		resp["node_id"] = nodeID
	}
	c.JSON(http.StatusOK, resp)
}
