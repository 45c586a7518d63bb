package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/termbridge/termbridge/pkg/providers"
	"go.uber.org/zap"
)

// RetryPolicy 重试策略
type RetryPolicy struct {
	// 最大尝试次数（含首次）
	MaxAttempts int

	// 初始延迟
	InitialDelay time.Duration

	// 退避因子（指数退避）
	BackoffFactor float64

	// 最大延迟
	MaxDelay time.Duration

	// 配额错误的专用延迟（通常更长）
	QuotaDelay time.Duration
}

// DefaultRetryPolicy 返回默认重试策略
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      30 * time.Second,
		QuotaDelay:    10 * time.Second,
	}
}

// Outcome 一个文本单元的终态：要么得到清洗后的译文，要么失败。
// 失败不携带异常，单元失败从不中止整篇文档。
type Outcome struct {
	// Text 清洗后的译文，失败时为空串
	Text string

	// OK 是否成功
	OK bool

	// Reason 失败原因（日志用）
	Reason string

	// Fatal 致命失败（认证、配置错误），需要中止整个运行
	Fatal bool

	// Err Fatal 时的分类错误，供上游按错误代码处理
	Err error

	// Attempts 实际尝试次数
	Attempts int
}

func success(text string, attempts int) Outcome {
	return Outcome{Text: text, OK: true, Attempts: attempts}
}

func failed(reason string, attempts int) Outcome {
	return Outcome{Reason: reason, Attempts: attempts}
}

// translateWithRetry 在重试预算内调用后端并做质量闸门检查：
// 清洗后为空、或与原文在空白归一化后完全相同（模型原样回显），均按失败重试。
func translateWithRetry(ctx context.Context, provider providers.Provider, sanitizer *Sanitizer,
	req *providers.Request, policy RetryPolicy, logger *zap.Logger,
) Outcome {
	delay := policy.InitialDelay
	var lastReason string

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return failed("context canceled", attempt)
		default:
		}

		raw, err := provider.Translate(ctx, req)
		if err != nil {
			classified := providers.Classify(err)
			if !classified.IsRetryable() {
				// 认证、配置等不可重试错误立即上报
				return Outcome{Reason: classified.Error(), Fatal: true,
					Err: classified, Attempts: attempt}
			}

			lastReason = classified.Error()
			logger.Warn("翻译调用失败",
				zap.Int("attempt", attempt),
				zap.Error(classified))

			wait := delay
			if providers.IsQuotaError(classified) {
				wait = policy.QuotaDelay
			}
			if !sleepCtx(ctx, wait) {
				return failed("context canceled", attempt)
			}
			delay = nextDelay(delay, policy)
			continue
		}

		cleaned := sanitizer.Sanitize(raw)
		switch {
		case strings.TrimSpace(cleaned) == "":
			lastReason = providers.ErrEmptyResult.Error()
		case normalizeWhitespace(cleaned) == normalizeWhitespace(req.Text):
			// 模型把输入原样回显，与传输失败区分开单独计为失败
			lastReason = providers.ErrEchoedInput.Error()
		default:
			return success(cleaned, attempt)
		}

		logger.Warn("翻译结果未通过质量闸门",
			zap.Int("attempt", attempt),
			zap.String("reason", lastReason))

		if attempt < policy.MaxAttempts && !sleepCtx(ctx, delay) {
			return failed("context canceled", attempt)
		}
		delay = nextDelay(delay, policy)
	}

	return failed(lastReason, policy.MaxAttempts)
}

func nextDelay(delay time.Duration, policy RetryPolicy) time.Duration {
	factor := policy.BackoffFactor
	if factor <= 1.0 {
		return delay
	}
	next := time.Duration(float64(delay) * factor)
	if policy.MaxDelay > 0 && next > policy.MaxDelay {
		return policy.MaxDelay
	}
	return next
}

// sleepCtx 可取消的等待，返回 false 表示上下文已取消
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
