package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/termbridge/termbridge/internal/config"
	"github.com/termbridge/termbridge/internal/document"
	"github.com/termbridge/termbridge/internal/logger"
	"github.com/termbridge/termbridge/internal/pipeline"
	"github.com/termbridge/termbridge/internal/progress"
	"github.com/termbridge/termbridge/internal/terminology"
	"github.com/termbridge/termbridge/pkg/providers"
	"github.com/termbridge/termbridge/pkg/providers/openai"
	"go.uber.org/zap"
)

var (
	// 命令行标志变量
	cfgFile    string
	sourceLang string
	targetLang string
	termsPath  string
	strategy   string
	outputMode string
	outputDir  string
	debugMode  bool
	aggressive bool // 把混排单行也视为已翻译（有漏译风险）
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "termbridge [flags] input_file",
		Short: "termbridge 是一个术语感知的文档翻译工具",
		Long: `termbridge 翻译 Word 段落/表格与 Excel 单元格，保留文档结构，
并按术语表保证译法一致。支持双语对照与仅译文两种输出模式。

支持的文件格式:
  - .docx: Word 文档（段落、表格单元格、合并单元格）
  - .xlsx: Excel 工作簿（单元格、合并区域）`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "输出调试日志")
	rootCmd.Flags().StringVarP(&sourceLang, "source", "s", "", "源语言代码 (如 zh)")
	rootCmd.Flags().StringVarP(&targetLang, "target", "t", "", "目标语言代码 (如 en)")
	rootCmd.Flags().StringVar(&termsPath, "terms", "", "术语表 JSON 文件路径")
	rootCmd.Flags().StringVar(&strategy, "strategy", "", "术语策略: direct 或 placeholder")
	rootCmd.Flags().StringVarP(&outputMode, "mode", "m", "", "输出模式: bilingual 或 translation_only")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "输出目录")
	rootCmd.Flags().BoolVar(&aggressive, "aggressive-duplicate-detection", false,
		"把中外混排的单行也视为已翻译（默认关闭，有漏译风险）")

	rootCmd.AddCommand(newTestConnectionCommand())
	return rootCmd
}

func runTranslate(cmd *cobra.Command, inputPath string) error {
	log := logger.NewLogger(debugMode)
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("输入文件不可读: %w", err)
	}

	// 术语表加载失败降级为空表，不中止运行
	store := loadStore(cfg, log)

	strat, err := terminology.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	mode, err := document.ParseOutputMode(cfg.OutputMode)
	if err != nil {
		return err
	}

	doc, err := document.Open(inputPath, log)
	if err != nil {
		return fmt.Errorf("打开文档失败: %w", err)
	}
	defer func() { _ = doc.Close() }()

	bar, _ := pterm.DefaultProgressbar.WithTotal(100).WithTitle("准备中").Start()
	reporter := progress.NewReporter(func(fraction float64, message string) {
		current := int(fraction * 100)
		if delta := current - bar.Current; delta > 0 {
			bar.Add(delta)
		}
		bar.UpdateTitle(message)
	})

	pipe := pipeline.New(pipeline.Options{
		SourceLang:     cfg.SourceLang,
		TargetLang:     cfg.TargetLang,
		Strategy:       strat,
		OutputMode:     mode,
		TermPreprocess: cfg.TermPreprocess,
		Retry: pipeline.RetryPolicy{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
			BackoffFactor: 2.0,
			MaxDelay:      30 * time.Second,
			QuotaDelay:    10 * time.Second,
		},
	}, store, buildProvider(cfg),
		pipeline.NewScriptDetector(pipeline.DetectorOptions{AggressiveSingleLine: aggressive}),
		reporter, log)

	// Ctrl-C 触发协作式停止：当前单元之后不再继续
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopCh)
	go func() {
		if _, ok := <-stopCh; ok {
			log.Warn("收到中断信号，处理完当前单元后停止")
			pipe.Stop()
		}
	}()

	summary, err := pipe.Run(cmd.Context(), doc)
	_, _ = bar.Stop()
	if err != nil {
		return fmt.Errorf("翻译失败: %w", err)
	}

	// 失败的文档不产出任何文件；成功（含部分失败的单元）才写输出
	outputPath := document.OutputPath(inputPath, cfg.OutputDir, time.Now())
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := doc.Save(outputPath); err != nil {
		return fmt.Errorf("保存输出文件失败: %w", err)
	}

	log.Info("已写出翻译结果",
		zap.String("output", outputPath),
		zap.Int("translated", summary.Translated),
		zap.Int("failed", summary.Failed))
	pterm.Success.Printfln("完成: %s (成功 %d, 失败 %d, 跳过 %d)",
		outputPath, summary.Translated, summary.Failed,
		summary.SkippedDuplicate+summary.SkippedNoSource)
	return nil
}

// newTestConnectionCommand 测试后端连通性并列出可用模型
func newTestConnectionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "测试翻译后端连通性",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			provider := buildProvider(cfg)
			if err := provider.TestConnection(cmd.Context()); err != nil {
				return fmt.Errorf("连接失败: %w", err)
			}
			pterm.Success.Println("连接正常")

			models, err := provider.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("获取模型列表失败: %w", err)
			}
			for _, model := range models {
				fmt.Printf("  - %s\n", model)
			}
			return nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	// 命令行参数覆盖配置文件
	if sourceLang != "" {
		cfg.SourceLang = sourceLang
	}
	if targetLang != "" {
		cfg.TargetLang = targetLang
	}
	if termsPath != "" {
		cfg.TerminologyPath = termsPath
		cfg.TermPreprocess = true
	}
	if strategy != "" {
		cfg.Strategy = strategy
	}
	if outputMode != "" {
		cfg.OutputMode = outputMode
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	// 覆盖之后重新校验，命令行给出的组合同样要合法
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadStore(cfg *config.Config, log *zap.Logger) *terminology.Store {
	if cfg.TerminologyPath == "" {
		return terminology.Empty(log)
	}
	store, err := terminology.Load(cfg.TerminologyPath, log)
	if err != nil {
		log.Warn("术语表加载失败，降级为空术语表", zap.Error(err))
		return terminology.Empty(log)
	}
	return store
}

func buildProvider(cfg *config.Config) providers.Provider {
	providerCfg := openai.DefaultConfig()
	providerCfg.APIKey = cfg.Provider.APIKey
	providerCfg.APIEndpoint = cfg.Provider.BaseURL
	providerCfg.Model = cfg.Provider.Model
	providerCfg.Timeout = time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	return openai.New(providerCfg)
}
