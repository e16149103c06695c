package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"LoginChat/logger"
	"LoginChat/tools/errs"
	"LoginChat/tools/security"
)

// Handler issues demo bearer tokens. In a real deployment the login
// service owns token issuance and shares the HMAC secret with this
// gateway; this endpoint exists so the demo runs standalone.
type Handler struct {
	jwt security.Options
}

func NewHandler(jwt security.Options) *Handler {
	return &Handler{jwt: jwt}
}

func (h *Handler) Register(r *gin.Engine) {
	r.POST("/auth/token", h.Token)
}

type tokenRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	token, exp, err := security.Generate(h.jwt, req.UserID, req.DisplayName)
	if err != nil {
		logger.Errorf("[auth] token issue failed user=%s err=%v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expire_at":  exp.UnixMilli(),
		"token_hash": security.HashToken(token),
	})
}
