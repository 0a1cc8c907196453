package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// maxFingerprintBody 指纹上报请求体上限（64 KiB）
const maxFingerprintBody = 64 << 10

// TrackFingerprintHandler 接收客户端回传的指纹并合并到点击记录。
// 参数非法返回 400；其余情况一律 204——遥测失败绝不向客户端冒 5xx。
func (h *Handler) TrackFingerprintHandler(c *gin.Context) {
	idStr := c.Param("clickId")
	clickID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || clickID < 1 {
		c.Status(http.StatusBadRequest)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFingerprintBody)

	var partial map[string]interface{}
	if err := json.NewDecoder(c.Request.Body).Decode(&partial); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if partial == nil {
		// JSON null 不算合法载荷
		c.Status(http.StatusBadRequest)
		return
	}

	h.clicks.MergeFingerprint(c.Request.Context(), clickID, partial)
	c.Status(http.StatusNoContent)
}
