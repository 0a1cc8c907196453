package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linktrace-go/internal/apperrors"
	"linktrace-go/internal/service"
)

// AuthMiddleware 看板接口鉴权：校验会话 cookie
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(service.SessionCookieName)
		if err != nil || token == "" {
			_ = c.Error(apperrors.WithCode(http.StatusUnauthorized, apperrors.KindInvalidRequest, "error.unauthorized"))
			c.Abort()
			return
		}

		if err := auth.VerifySession(token); err != nil {
			_ = c.Error(apperrors.WithCode(http.StatusUnauthorized, apperrors.KindInvalidRequest, "error.unauthorized"))
			c.Abort()
			return
		}

		c.Next()
	}
}
