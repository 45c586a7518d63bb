package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/termbridge/termbridge/pkg/providers"
)

// Config OpenAI配置
type Config struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
	}
}

// Provider OpenAI兼容提供商，任何暴露 chat completions 接口的后端均可使用
type Provider struct {
	config Config
	client openai.Client
}

// New 创建 OpenAI 提供商
func New(config Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.APIEndpoint != "" {
		opts = append(opts, option.WithBaseURL(config.APIEndpoint))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}
	for k, v := range config.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &Provider{
		config: config,
		client: openai.NewClient(opts...),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "openai"
}

// Translate 执行一次翻译调用，返回模型原始输出
func (p *Provider) Translate(ctx context.Context, req *providers.Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", providers.ErrEmptyText
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.buildSystemPrompt(req)),
			openai.UserMessage(req.Text),
		},
		Model:       p.config.Model,
		Temperature: openai.Float(p.config.Temperature),
	})
	if err != nil {
		return "", providers.Classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", providers.NewError(providers.ErrCodeEmptyResult, "empty completion", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// TestConnection 测试后端连通性
func (p *Provider) TestConnection(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return providers.Classify(err)
	}
	return nil
}

// ListModels 列出后端可用的模型
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, providers.Classify(err)
	}

	models := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// buildSystemPrompt 构建系统提示词，术语指令附加在末尾
func (p *Provider) buildSystemPrompt(req *providers.Request) string {
	prompt := req.PromptOverride
	if prompt == "" {
		prompt = fmt.Sprintf(
			"You are a professional translator. Translate the user's text from %s to %s. "+
				"Output only the translation, with no explanations, labels, or quotes.",
			req.SourceLang, req.TargetLang)
	}

	if len(req.TermInstructions) > 0 {
		prompt += "\n\nTerminology requirements:\n" + strings.Join(req.TermInstructions, "\n")
	}

	return prompt
}
