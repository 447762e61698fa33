package errors

import "errors"

// ── 分配引擎错误分类 ──
// 「数据不足」不属于错误：评分降为 0、结果为空，由调用方判断意义

var (
	// ErrNotFound 资源或项目 ID 不存在
	ErrNotFound = errors.New("资源或项目不存在")
	// ErrInvalidRange 日期范围非法（结束早于开始）或容量配置非法
	ErrInvalidRange = errors.New("日期范围或容量非法")
	// ErrUpstreamUnavailable 持久化层不可用，调用方可决定是否使用降级数据
	ErrUpstreamUnavailable = errors.New("上游数据源不可用")
	// ErrInvalidGoal 未知的财务优化目标
	ErrInvalidGoal = errors.New("未知的财务优化目标")
)
