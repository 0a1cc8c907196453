package apperrors

import (
	"net/http"
)

// Kind 错误分类（按含义而非 HTTP 码区分）
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotFound       Kind = "not_found"
	KindCodeExhausted  Kind = "code_exhausted"
	KindPersistence    Kind = "persistence"
	KindSystem         Kind = "system"
)

// AppError 自定义错误类型
type AppError struct {
	Code    int
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode 创建通用业务错误
func WithCode(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, KindInvalidRequest, message)
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, KindInvalidRequest, "error.invalid_request")
}

// NotFoundError 短链不存在
func NotFoundError(message string) *AppError {
	return WithCode(http.StatusNotFound, KindNotFound, message)
}

// CodeExhaustedError 短码生成重试次数耗尽
func CodeExhaustedError() *AppError {
	return WithCode(http.StatusConflict, KindCodeExhausted, "error.code_exhausted")
}

// PersistenceError 数据库操作失败（唯一键冲突之外的错误）
func PersistenceError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindPersistence,
		Message: "error.persistence",
		Cause:   cause,
	}
}

// SystemError 封装系统内部错误
func SystemError(message string) *AppError {
	return WithCode(http.StatusInternalServerError, KindSystem, message)
}

// SystemErrorDefault 默认系统内部错误
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, KindSystem, "error.system")
}
