package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linktrace-go/internal/service"
)

// Handler 汇聚各服务，gin 路由方法按文件拆分
type Handler struct {
	links  *service.LinkService
	clicks *service.ClickService
	geo    *service.GeoService
	stats  *service.StatsService
	auth   *service.AuthService
}

func New(links *service.LinkService, clicks *service.ClickService, geo *service.GeoService, stats *service.StatsService, auth *service.AuthService) *Handler {
	return &Handler{
		links:  links,
		clicks: clicks,
		geo:    geo,
		stats:  stats,
		auth:   auth,
	}
}

// HealthHandler 存活探针
func (h *Handler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
