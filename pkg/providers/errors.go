package providers

import (
	"errors"
	"fmt"
	"strings"
)

// 错误代码常量
const (
	ErrCodeTransport   = "TRANSPORT_ERROR"
	ErrCodeAuth        = "AUTH_ERROR"
	ErrCodeQuota       = "QUOTA_ERROR"
	ErrCodeEmptyResult = "EMPTY_RESULT"
	ErrCodeContainerIO = "CONTAINER_IO_ERROR"
	ErrCodeConfig      = "CONFIG_ERROR"
)

// 预定义错误
var (
	// ErrEmptyText 空文本错误
	ErrEmptyText = errors.New("empty text provided")

	// ErrEmptyResult 后端清洗后无有效内容
	ErrEmptyResult = errors.New("backend returned no usable content")

	// ErrEchoedInput 后端原样返回了输入
	ErrEchoedInput = errors.New("backend echoed the input text")
)

// Error 提供商错误
type Error struct {
	Code    string // 错误代码
	Message string // 错误消息
	Cause   error  // 原因
}

// Error 实现error接口
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable 是否可重试：认证错误立即上报，其余在重试预算内重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case ErrCodeAuth, ErrCodeConfig, ErrCodeContainerIO:
		return false
	default:
		return true
	}
}

// NewError 创建提供商错误
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Classify 根据底层错误推断错误代码，用于包装来自 SDK 的错误
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case containsAny(errStr, "401", "invalid api key", "unauthorized", "authentication"):
		return NewError(ErrCodeAuth, "authentication failed", err)
	case containsAny(errStr, "429", "rate limit", "quota", "insufficient_quota"):
		return NewError(ErrCodeQuota, "rate or quota limit exceeded", err)
	default:
		return NewError(ErrCodeTransport, "request failed", err)
	}
}

// IsAuthError 判断是否为认证错误
func IsAuthError(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == ErrCodeAuth
}

// IsQuotaError 判断是否为配额错误
func IsQuotaError(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == ErrCodeQuota
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
