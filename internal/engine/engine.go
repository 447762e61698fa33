// Package engine 分配智能引擎：人员-项目匹配、利用率预测、瓶颈检测、
// 空闲期预测与再平衡建议。
//
// 引擎无状态、同步执行：每次调用只读取传入的快照并返回派生结果，
// 不做 I/O、不持有跨请求状态，因此并发调用天然安全。
// 建议（Suggestion）只是数据，引擎从不修改分配。
package engine

// DefaultBenchThreshold 日分配总和 ≤ 20% 视为空闲（名义上的低比例占用不算真正占用）
const DefaultBenchThreshold = 20.0

// Engine 分配智能引擎
type Engine struct {
	tokenizer      Tokenizer
	teamFit        TeamFitScorer
	benchThreshold float64
}

// Option 引擎选项
type Option func(*Engine)

// WithStemming 经验评分分词时启用词干化
func WithStemming(enabled bool) Option {
	return func(e *Engine) { e.tokenizer.Stem = enabled }
}

// WithTeamFitScorer 替换团队契合度评分实现
func WithTeamFitScorer(s TeamFitScorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.teamFit = s
		}
	}
}

// WithBenchThreshold 设置默认空闲阈值
func WithBenchThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold >= 0 {
			e.benchThreshold = threshold
		}
	}
}

// New 创建引擎
func New(opts ...Option) *Engine {
	e := &Engine{
		teamFit:        CoAllocationTeamFit{},
		benchThreshold: DefaultBenchThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BenchThreshold 当前默认空闲阈值
func (e *Engine) BenchThreshold() float64 { return e.benchThreshold }

// ── 利用率状态 ──

// Status 利用率状态
type Status string

const (
	StatusCritical       Status = "critical"
	StatusOverallocated  Status = "overallocated"
	StatusOptimal        Status = "optimal"
	StatusAdequate       Status = "adequate"
	StatusUnderallocated Status = "underallocated"
	StatusBench          Status = "bench"
)

// ClassifyUtilization 按固定阈值分类：>110 critical，>100 overallocated，≥80 optimal，
// ≥50 adequate，>0 underallocated，其余 bench
func ClassifyUtilization(pct float64) Status {
	switch {
	case pct > 110:
		return StatusCritical
	case pct > 100:
		return StatusOverallocated
	case pct >= 80:
		return StatusOptimal
	case pct >= 50:
		return StatusAdequate
	case pct > 0:
		return StatusUnderallocated
	default:
		return StatusBench
	}
}

// 组织健康度分桶阈值，比逐日状态粗一档
const (
	orgOverallocatedAbove  = 110.0
	orgUnderallocatedBelow = 70.0
)
