package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linktrace-go/constant"
	"linktrace-go/internal/model"
	"linktrace-go/internal/service"
	"linktrace-go/pkg/logging"
	"linktrace-go/pkg/utils"
)

// ClickIDHeader 重定向响应携带点击 ID 的响应头
const ClickIDHeader = "X-Click-Id"

// ClickIDCookie 点击 ID cookie，客户端脚本凭它回传指纹
const ClickIDCookie = "linktrace_click_id"

// RedirectHandler 重定向主流程：解析 → 提取 IP → 地理增强 → 记录点击 → 302。
// 解析失败直接 404 且不落任何点击；解析成功后任何遥测失败都不阻断重定向。
func (h *Handler) RedirectHandler(c *gin.Context) {
	path := c.Request.URL.Path[1:]

	// 保留路径不参与短码解析
	if path == "" || constant.IsReservedPath(c.Request.URL.Path) {
		c.Status(http.StatusNotFound)
		return
	}

	link, err := h.links.ResolveShortCode(c.Request.Context(), path)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	ip := utils.DeriveClientIP(c.Request)

	// 地理增强：尽力而为，失败时各字段为空
	loc, _ := h.geo.ResolveIP(c.Request.Context(), ip)

	snap := service.ClickSnapshot{
		IP:          ip,
		UserAgent:   c.Request.UserAgent(),
		Referrer:    c.Request.Referer(),
		Location:    loc,
		Fingerprint: requestFingerprint(c),
	}

	clickID, err := h.clicks.RecordClick(c.Request.Context(), link.ID, snap)
	if err != nil {
		// 遥测缺失可接受，重定向可用性优先
		logging.Logger.Warn("Failed to record click",
			zap.Uint("link_id", link.ID),
			zap.String("short_code", link.ShortCode),
			zap.Error(err))
	}

	h.stats.RecordVisit(link.ShortCode, ip)

	if clickID > 0 {
		idStr := strconv.FormatUint(uint64(clickID), 10)
		c.Header(ClickIDHeader, idStr)
		c.SetCookie(ClickIDCookie, idStr, 300, "/", "", false, false)
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusFound, link.OriginalURL)
}

// requestFingerprint 服务端能拿到的请求侧信号快照
func requestFingerprint(c *gin.Context) model.JSONMap {
	headers := make(map[string]interface{})
	for _, name := range []string{"Accept", "Accept-Language", "Accept-Encoding", "Sec-Ch-Ua", "Sec-Ch-Ua-Platform", "Sec-Ch-Ua-Mobile", "Dnt"} {
		if v := c.GetHeader(name); v != "" {
			headers[name] = v
		}
	}

	return model.JSONMap{
		"host":         c.Request.Host,
		"path":         c.Request.URL.Path,
		"query":        c.Request.URL.RawQuery,
		"headers":      headers,
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	}
}
