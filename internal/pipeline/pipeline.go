package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/termbridge/termbridge/internal/document"
	"github.com/termbridge/termbridge/internal/progress"
	"github.com/termbridge/termbridge/internal/terminology"
	"github.com/termbridge/termbridge/pkg/providers"
	"go.uber.org/zap"
)

// Options 一次运行的完整配置，字段均有文档化的默认值，
// 不使用可变参数包（见 Config 的 applyDefaults）。
type Options struct {
	// SourceLang / TargetLang 传给后端的 ISO-639-1 语言代码
	SourceLang string
	TargetLang string

	// Strategy 术语策略
	Strategy terminology.Strategy

	// OutputMode 输出模式，仅由文档写回消费
	OutputMode document.OutputMode

	// TermPreprocess 是否启用术语预处理
	TermPreprocess bool

	// PromptOverride 覆盖默认提示词（可选）
	PromptOverride string

	// Retry 重试策略
	Retry RetryPolicy
}

// Summary 一次运行的统计
type Summary struct {
	Total            int  // 枚举到的单元数
	Translated       int  // 成功写回译文的单元数
	SkippedDuplicate int  // 判定为已含双语而跳过
	SkippedNoSource  int  // 不含源语言文字而跳过
	LocalRewrites    int  // 本地改写（未调用后端）
	Failed           int  // 重试耗尽后保留原文的单元数
	Stopped          bool // 是否被协作式停止打断
}

// Pipeline 术语感知翻译管线。
// 单线程顺序处理一篇文档；术语表在构造时传入且只读，无全局状态。
type Pipeline struct {
	opts      Options
	store     *terminology.Store
	provider  providers.Provider
	sub       *terminology.Substitutor
	guard     *FormulaGuard
	sanitizer *Sanitizer
	dup       Detector
	reporter  *progress.Reporter
	logger    *zap.Logger

	// 方向与术语表语言键由语言配置推导
	direction terminology.Direction
	termLang  string

	stopped atomic.Bool
}

// New 创建管线。detector 为 nil 时使用默认的双语检测；
// reporter 为 nil 时不上报进度。
func New(opts Options, store *terminology.Store, provider providers.Provider,
	detector Detector, reporter *progress.Reporter, logger *zap.Logger,
) *Pipeline {
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if detector == nil {
		detector = NewScriptDetector(DetectorOptions{})
	}

	direction := terminology.DirectionFor(opts.SourceLang)

	// 术语表按外文语言键组织：中译外取目标语言，外译中取源语言
	termLang := opts.TargetLang
	if direction == terminology.ForeignToSource {
		termLang = opts.SourceLang
	}

	return &Pipeline{
		opts:      opts,
		store:     store,
		provider:  provider,
		sub:       terminology.NewSubstitutor(logger),
		guard:     NewFormulaGuard(),
		sanitizer: NewSanitizer(),
		dup:       detector,
		reporter:  reporter,
		logger:    logger,
		direction: direction,
		termLang:  terminology.NormalizeLanguageKey(termLang),
	}
}

// Stop 请求协作式停止：在单元之间检查，进行中的调用不强制中断，
// 停止后观察到的结果被丢弃。
func (p *Pipeline) Stop() {
	p.stopped.Store(true)
}

// Run 顺序处理文档中的全部单元。
// 单元级失败只记录并保留原文，从不中止整篇文档；
// 文档级失败（容器不可读写、认证失败）返回错误。
func (p *Pipeline) Run(ctx context.Context, doc document.Document) (*Summary, error) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID))

	units, err := doc.Units()
	if err != nil {
		return nil, providers.NewError(providers.ErrCodeContainerIO, "枚举文档单元失败", err)
	}

	summary := &Summary{Total: len(units)}
	if len(units) == 0 {
		log.Info("未找到可翻译的单元")
		p.reporter.Report(1, "没有可翻译的内容")
		return summary, nil
	}

	log.Info("开始翻译",
		zap.Int("units", len(units)),
		zap.String("source", p.opts.SourceLang),
		zap.String("target", p.opts.TargetLang))
	p.reporter.Report(0, "开始翻译")

	for i, unit := range units {
		if p.stopped.Load() {
			summary.Stopped = true
			log.Warn("收到停止请求，中断处理", zap.Int("completed", i))
			break
		}

		if err := p.processUnit(ctx, unit, summary, log); err != nil {
			// 只有致命错误（认证失败、上下文取消）才会走到这里
			return summary, err
		}

		p.reporter.Report(float64(i+1)/float64(len(units)),
			fmt.Sprintf("已处理 %d/%d", i+1, len(units)))
	}

	if !summary.Stopped {
		p.reporter.Report(1, "翻译完成")
	}
	log.Info("翻译结束",
		zap.Int("translated", summary.Translated),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped_duplicate", summary.SkippedDuplicate),
		zap.Int("skipped_no_source", summary.SkippedNoSource),
		zap.Int("local_rewrites", summary.LocalRewrites))
	return summary, nil
}

// processUnit 完成单个单元的全部阶段
func (p *Pipeline) processUnit(ctx context.Context, unit document.Unit,
	summary *Summary, log *zap.Logger,
) error {
	text := unit.Text()

	// 空文本从不调用后端
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// 已含双语的单元整体跳过，不调用后端
	if p.dup.IsAlreadyTranslated(text) {
		summary.SkippedDuplicate++
		log.Debug("单元已含双语内容，跳过", zap.String("unit", unit.Ref()))
		return nil
	}

	// 中译外时不含表意文字的单元没有可译内容
	if p.direction == terminology.SourceToForeign && !ContainsHan(text) {
		summary.SkippedNoSource++
		log.Debug("单元不含源语言文字，跳过", zap.String("unit", unit.Ref()))
		return nil
	}

	terms := p.relevantTerms(text)

	// “纯数字+量词”单元本地改写，无需后端
	if rewritten, ok := terminology.StandaloneUnit(text, terms); ok {
		if err := p.write(unit, rewritten); err != nil {
			summary.Failed++
			log.Warn("写回失败", zap.String("unit", unit.Ref()), zap.Error(err))
			return nil
		}
		summary.LocalRewrites++
		summary.Translated++
		return nil
	}

	// 公式保护必须先于术语替换，保证数学标记不参与匹配
	protected, formulas := p.guard.Protect(text)

	req := &providers.Request{
		SourceLang:     p.opts.SourceLang,
		TargetLang:     p.opts.TargetLang,
		PromptOverride: p.opts.PromptOverride,
	}

	var placeholders *terminology.PlaceholderResult
	switch p.opts.Strategy {
	case terminology.StrategyPlaceholder:
		placeholders = p.sub.Placeholderize(protected, terms)
		req.Text = placeholders.Text
		req.TermInstructions = placeholders.Instructions
	default:
		req.Text = p.sub.DirectReplace(protected, terms)
	}

	outcome := translateWithRetry(ctx, p.provider, p.sanitizer, req, p.opts.Retry, log)
	if outcome.Fatal {
		return fmt.Errorf("后端返回不可重试的错误: %w", outcome.Err)
	}
	if p.stopped.Load() {
		// 停止请求之后观察到的结果直接丢弃
		summary.Stopped = true
		return nil
	}
	if !outcome.OK {
		summary.Failed++
		log.Warn("单元翻译失败，保留原文",
			zap.String("unit", unit.Ref()),
			zap.String("reason", outcome.Reason),
			zap.Int("attempts", outcome.Attempts))
		return nil
	}

	result := outcome.Text
	if placeholders != nil {
		result = placeholders.Restore(result)
	}
	result = p.guard.Restore(result, formulas)

	if err := p.write(unit, result); err != nil {
		summary.Failed++
		log.Warn("写回失败", zap.String("unit", unit.Ref()), zap.Error(err))
		return nil
	}

	summary.Translated++
	return nil
}

// relevantTerms 提取与单元相关的术语子集；
// 启用术语预处理但子集为空时，退回全表扫描以覆盖短小或歧义单元。
func (p *Pipeline) relevantTerms(text string) map[string]string {
	if !p.opts.TermPreprocess {
		return nil
	}

	terms := p.store.ExtractRelevant(text, p.termLang, p.direction)
	if len(terms) > 0 {
		return terms
	}

	// 量词归一化后再按全表匹配一次（"10台" 中的 "台" 需要先断开）
	normalized := terminology.NormalizeUnitWords(text)
	full := p.store.FullTable(p.termLang, p.direction)
	fallback := make(map[string]string)
	for match, replace := range full {
		if strings.Contains(normalized, match) {
			fallback[match] = replace
		}
	}
	return fallback
}

func (p *Pipeline) write(unit document.Unit, translated string) error {
	if p.opts.OutputMode == document.ModeTranslationOnly {
		return unit.WriteTranslationOnly(translated)
	}
	return unit.WriteBilingual(translated)
}
