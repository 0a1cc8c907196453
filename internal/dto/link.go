package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"linktrace-go/pkg/utils"
)

// CreateLinkRequest 用于创建短链的请求参数
type CreateLinkRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required,url"` // Gin 内置 URL 校验
}

// Validate 自定义验证逻辑（协议、长度）
func (r *CreateLinkRequest) Validate() error {
	return utils.ValidateOriginalURL(r.OriginalURL)
}

// LinkListQuery 短链列表查询参数，shortCode 为模糊过滤
type LinkListQuery struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	Size      int    `form:"size,default=10" binding:"min=1,max=100"`
	ShortCode string `form:"shortCode" binding:"omitempty,shortcode"`
}

// ClickListQuery 点击明细分页参数
type ClickListQuery struct {
	Page int `form:"page,default=1" binding:"min=1"`
	Size int `form:"size,default=10" binding:"min=1,max=100"`
}

var shortCodeCharset = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,8}$`)

// RegisterValidations 注册自定义 binding 校验规则，main 启动时调用一次
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
		return shortCodeCharset.MatchString(fl.Field().String())
	})
}
