package providers

import (
	"context"
	"time"
)

// BaseConfig 基础配置
type BaseConfig struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// 请求超时
	Timeout time.Duration `json:"timeout"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout: 5 * time.Minute,
		Headers: make(map[string]string),
	}
}

// Request 一次翻译请求
type Request struct {
	// 待翻译文本
	Text string `json:"text"`

	// 术语指令（占位符模式下每个术语一行）
	TermInstructions []string `json:"term_instructions,omitempty"`

	// 源语言与目标语言（ISO-639-1 代码）
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`

	// 覆盖默认提示词（可选）
	PromptOverride string `json:"prompt_override,omitempty"`
}

// Provider 翻译后端接口，任何实现该契约的后端均可替换
type Provider interface {
	// Translate 执行一次翻译，返回原始（未清洗）的模型输出
	Translate(ctx context.Context, req *Request) (string, error)

	// TestConnection 测试后端连通性
	TestConnection(ctx context.Context) error

	// ListModels 列出后端可用的模型
	ListModels(ctx context.Context) ([]string, error)

	// GetName 获取提供商名称
	GetName() string
}
