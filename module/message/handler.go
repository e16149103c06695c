package message

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"LoginChat/logger"
	midsec "LoginChat/middleware/security"
	"LoginChat/tools/errs"
)

// Handler exposes the history REST surface consumed by the chat client
// when it opens a conversation.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Register mounts the routes behind the bearer-token middleware.
func (h *Handler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	r.GET("/history/:peer", auth, h.History)
}

// History returns the conversation between the authenticated user and
// :peer, oldest first.
func (h *Handler) History(c *gin.Context) {
	userID := c.GetString(midsec.CtxUserIDKey)
	peer := c.Param("peer")
	if peer == "" {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail("missing peer"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	msgs, err := h.store.FetchHistory(c.Request.Context(), userID, peer, limit)
	if err != nil {
		logger.Errorf("[history] fetch failed user=%s peer=%s err=%v", userID, peer, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
