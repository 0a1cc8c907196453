package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linktrace-go/internal/apperrors"
	"linktrace-go/internal/dto"
	"linktrace-go/internal/i18n"
	"linktrace-go/response"
)

// CreateLinkHandler 创建短链。短码冲突重试与 CodeExhausted 都发生在服务层，
// 这里只负责把错误按用户可见的方式呈现。
func (h *Handler) CreateLinkHandler(c *gin.Context) {
	var req dto.CreateLinkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	if err := req.Validate(); err != nil {
		_ = c.Error(apperrors.InvalidRequestError(err.Error()))
		return
	}

	link, err := h.links.CreateLink(c.Request.Context(), req.OriginalURL)
	if err != nil {
		zap.L().Warn("Link creation failed",
			zap.Error(err),
			zap.String("original_url", req.OriginalURL),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(link, i18n.T(c.Request.Context(), "msg.link_created", nil)))
}

// ListLinksHandler 分页查询短链列表（带累计点击数）
func (h *Handler) ListLinksHandler(c *gin.Context) {
	var query dto.LinkListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	pageResp, err := h.links.ListLinks(c.Request.Context(), query.Page, query.Size, query.ShortCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pageResp, "success"))
}

// ListClicksHandler 分页查询某条短链的点击明细
func (h *Handler) ListClicksHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_request"))
		return
	}

	var query dto.ClickListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	pageResp, err := h.links.ListClicks(c.Request.Context(), uint(id), query.Page, query.Size)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pageResp, "success"))
}

// GetStatsHandler 查询某条短链的每日 PV/UV
func (h *Handler) GetStatsHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_request"))
		return
	}

	stats, err := h.links.GetDailyStats(c.Request.Context(), uint(id))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(stats, "success"))
}
