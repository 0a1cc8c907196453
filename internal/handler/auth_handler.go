package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linktrace-go/internal/apperrors"
	"linktrace-go/internal/dto"
	"linktrace-go/internal/i18n"
	"linktrace-go/internal/service"
	"linktrace-go/response"
)

// LoginHandler 看板登录，成功后写会话 cookie
func (h *Handler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		zap.L().Warn("Login failed",
			zap.String("username", req.Username))
		_ = c.Error(err)
		return
	}

	c.SetCookie(service.SessionCookieName, token, int(service.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, response.OK("", i18n.T(c.Request.Context(), "msg.login_ok", nil)))
}

// LogoutHandler 清除会话 cookie
func (h *Handler) LogoutHandler(c *gin.Context) {
	c.SetCookie(service.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, response.OK("", i18n.T(c.Request.Context(), "msg.logout_ok", nil)))
}
