package progress

import "sync"

// Func 进度回调：fraction 取值 [0,1]，message 为当前里程碑描述。
// 回调在管线所在的 goroutine 上调用，消费方不得阻塞。
type Func func(fraction float64, message string)

// Reporter 把管线的粗粒度里程碑转成单调不减的进度回调
type Reporter struct {
	mu   sync.Mutex
	fn   Func
	last float64
}

// NewReporter 创建进度上报器；fn 可为 nil（不上报）
func NewReporter(fn Func) *Reporter {
	return &Reporter{fn: fn}
}

// Report 上报一次进度。fraction 被钳制到 [last, 1]，保证单调不减。
func (r *Reporter) Report(fraction float64, message string) {
	if r == nil || r.fn == nil {
		return
	}

	r.mu.Lock()
	if fraction < r.last {
		fraction = r.last
	}
	if fraction > 1 {
		fraction = 1
	}
	r.last = fraction
	r.mu.Unlock()

	r.fn(fraction, message)
}
