package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ProviderConfig 翻译后端配置
type ProviderConfig struct {
	// BaseURL OpenAI 兼容接口地址，空值使用官方端点
	BaseURL string `mapstructure:"base_url"`

	// APIKey 鉴权密钥，留空时从 TERMBRIDGE_API_KEY 环境变量读取
	APIKey string `mapstructure:"api_key"`

	// Model 模型名称
	Model string `mapstructure:"model"`

	// TimeoutSeconds 单次请求超时（秒）
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Config 一次运行的完整配置
type Config struct {
	// SourceLang / TargetLang ISO-639-1 语言代码
	SourceLang string `mapstructure:"source_lang"`
	TargetLang string `mapstructure:"target_lang"`

	// TerminologyPath 术语表 JSON 文件路径，空值表示不使用术语表
	TerminologyPath string `mapstructure:"terminology_path"`

	// TermPreprocess 是否启用术语预处理
	TermPreprocess bool `mapstructure:"term_preprocess"`

	// Strategy 术语策略：direct 或 placeholder
	Strategy string `mapstructure:"strategy"`

	// OutputMode 输出模式：bilingual 或 translation_only
	OutputMode string `mapstructure:"output_mode"`

	// OutputDir 输出目录，空值使用输入文件所在目录
	OutputDir string `mapstructure:"output_dir"`

	// MaxAttempts 每个单元的最大尝试次数
	MaxAttempts int `mapstructure:"max_attempts"`

	// RetryDelaySeconds 重试初始延迟（秒）
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds"`

	// Debug 调试日志
	Debug bool `mapstructure:"debug"`

	// Provider 翻译后端
	Provider ProviderConfig `mapstructure:"provider"`
}

// Load 加载配置文件。path 为空时按默认路径搜索 .termbridge.yaml；
// 找不到配置文件时返回默认配置而不报错。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".termbridge")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			cfg := defaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultConfig() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.SourceLang == "" {
		cfg.SourceLang = "zh"
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = "en"
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "direct"
	}
	if cfg.OutputMode == "" {
		cfg.OutputMode = "bilingual"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelaySeconds <= 0 {
		cfg.RetryDelaySeconds = 1
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "gpt-4o-mini"
	}
	if cfg.Provider.TimeoutSeconds <= 0 {
		cfg.Provider.TimeoutSeconds = 300
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("TERMBRIDGE_API_KEY")
	}
	if cfg.TerminologyPath != "" {
		cfg.TermPreprocess = true
	}
}

// Validate 校验语言与枚举字段。命令行覆盖配置后需要再次调用。
func (c *Config) Validate() error {
	if c.SourceLang == c.TargetLang {
		return fmt.Errorf("源语言与目标语言不能相同: %s", c.SourceLang)
	}
	switch c.Strategy {
	case "direct", "placeholder":
	default:
		return fmt.Errorf("未知的术语策略: %q", c.Strategy)
	}
	switch c.OutputMode {
	case "bilingual", "translation_only", "translation-only", "replace":
	default:
		return fmt.Errorf("未知的输出模式: %q", c.OutputMode)
	}
	return nil
}
