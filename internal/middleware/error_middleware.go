package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linktrace-go/internal/apperrors"
	"linktrace-go/internal/i18n"
	"linktrace-go/response"
)

// GlobalErrorMiddleware 全局错误中间件。
// AppError 按自身状态码返回，消息 key 在这里统一本地化。
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 如果有错误发生
		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					localized := i18n.T(c.Request.Context(), appErr.Message, nil)
					c.AbortWithStatusJSON(appErr.Code, response.Error(localized))
					return
				}
			}

			// 默认处理未定义的错误
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				response.Error(i18n.T(c.Request.Context(), "error.system", nil)))
			return
		}
	}
}
