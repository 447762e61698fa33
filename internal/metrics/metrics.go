// Package metrics 分配引擎的 Prometheus 指标，注册在独立 Registry 上，由 /metrics 暴露。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 应用自定义 Registry
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ════════════════════════════════════════════════════════════
// 引擎运行
// ════════════════════════════════════════════════════════════

// EngineRunsTotal 按操作与结果统计引擎调用次数
var EngineRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Subsystem: "engine",
	Name:      "runs_total",
	Help:      "Engine invocations by operation and outcome",
}, []string{"operation", "outcome"})

// EngineDurationSeconds 引擎计算耗时（不含快照加载）
var EngineDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "pulse",
	Subsystem: "engine",
	Name:      "duration_seconds",
	Help:      "Time spent inside the engine per operation",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
}, []string{"operation"})

// SuggestionsTotal 生成的建议条数（按类型）
var SuggestionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Subsystem: "engine",
	Name:      "suggestions_total",
	Help:      "Rebalancing suggestions produced by type",
}, []string{"type"})

// BottlenecksDetected 最近一次瓶颈检测的瓶颈周数
var BottlenecksDetected = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "pulse",
	Subsystem: "engine",
	Name:      "bottlenecks_detected",
	Help:      "Number of bottleneck weeks found by the latest detection run",
})

// ════════════════════════════════════════════════════════════
// 快照加载 / 缓存
// ════════════════════════════════════════════════════════════

// SnapshotLoadSeconds 从持久化层加载快照的耗时
var SnapshotLoadSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "pulse",
	Subsystem: "snapshot",
	Name:      "load_seconds",
	Help:      "Time to load a snapshot from the store",
	Buckets:   prometheus.DefBuckets,
})

// ResourceLoadFailuresTotal 单个人员数据加载失败次数（批量计算继续进行）
var ResourceLoadFailuresTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "pulse",
	Subsystem: "snapshot",
	Name:      "resource_failures_total",
	Help:      "Per-resource load failures recorded during bulk snapshot loads",
})

// FallbackSnapshotsTotal 使用样例数据的次数
var FallbackSnapshotsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "pulse",
	Subsystem: "snapshot",
	Name:      "fallback_total",
	Help:      "Snapshots served from the sample dataset because the store was unavailable",
})

// CacheRequestsTotal 预测缓存命中情况：hit | miss | error
var CacheRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Subsystem: "cache",
	Name:      "requests_total",
	Help:      "Forecast cache lookups by result",
}, []string{"result"})

// ════════════════════════════════════════════════════════════
// HTTP
// ════════════════════════════════════════════════════════════

// HTTPRequestsTotal 按路由模板与状态码统计请求
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route template, method and status code",
}, []string{"route", "method", "status"})

// HTTPRequestSeconds 请求耗时
var HTTPRequestSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "pulse",
	Subsystem: "http",
	Name:      "request_seconds",
	Help:      "HTTP request latency by route template",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// RateLimitedTotal 被限流拒绝的请求
var RateLimitedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pulse",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the rate limiter",
}, []string{"route"})

// ── 辅助函数 ──

// ObserveRun 记录一次引擎调用
func ObserveRun(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EngineRunsTotal.WithLabelValues(operation, outcome).Inc()
	EngineDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
