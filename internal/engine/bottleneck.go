package engine

import (
	"sort"
	"time"
)

// ── 瓶颈检测 ──

// minBottleneckSeverity 单人过载属常态，至少两人同周过载才算系统性瓶颈
const minBottleneckSeverity = 2

// OverAllocatedResource 瓶颈周内的过载人员
type OverAllocatedResource struct {
	ResourceID            string  `json:"resource_id"`
	ResourceName          string  `json:"resource_name"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

// Bottleneck 多人同时过载的一周
type Bottleneck struct {
	WeekStart              time.Time               `json:"week_start"`
	WeekEnd                time.Time               `json:"week_end"`
	OverAllocatedResources []OverAllocatedResource `json:"over_allocated_resources"`
	Severity               int                     `json:"severity"`
	AverageOverallocation  float64                 `json:"average_overallocation"`
}

// BottleneckReport 瓶颈检测结果
type BottleneckReport struct {
	Range          DateRange         `json:"range"`
	Bottlenecks    []Bottleneck      `json:"bottlenecks"`
	Failures       []ResourceFailure `json:"failures,omitempty"`
	IsFallbackData bool              `json:"is_fallback_data"`
}

// DetectBottlenecks 扫描每个人员的周利用率，收集 >100% 的人员；
// 同周 ≥2 人才输出。按严重度降序，其次平均超额降序
func DetectBottlenecks(forecasts []ResourceForecast) []Bottleneck {
	type week struct {
		start, end time.Time
		over       []OverAllocatedResource
	}
	var order []time.Time
	weeks := make(map[time.Time]*week)
	for _, rf := range forecasts {
		for _, w := range rf.Weekly {
			if w.UtilizationPercentage <= 100 {
				continue
			}
			wk, ok := weeks[w.WeekStart]
			if !ok {
				wk = &week{start: w.WeekStart, end: w.WeekEnd}
				weeks[w.WeekStart] = wk
				order = append(order, w.WeekStart)
			}
			wk.over = append(wk.over, OverAllocatedResource{
				ResourceID:            rf.ResourceID,
				ResourceName:          rf.ResourceName,
				UtilizationPercentage: w.UtilizationPercentage,
			})
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]Bottleneck, 0)
	for _, start := range order {
		wk := weeks[start]
		if len(wk.over) < minBottleneckSeverity {
			continue
		}
		excess := 0.0
		for _, o := range wk.over {
			excess += o.UtilizationPercentage - 100
		}
		out = append(out, Bottleneck{
			WeekStart:              wk.start,
			WeekEnd:                wk.end,
			OverAllocatedResources: wk.over,
			Severity:               len(wk.over),
			AverageOverallocation:  excess / float64(len(wk.over)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].AverageOverallocation > out[j].AverageOverallocation
	})
	return out
}

// Bottlenecks 预测 + 瓶颈检测
func (e *Engine) Bottlenecks(snap *Snapshot, ids []string, r DateRange) (*BottleneckReport, error) {
	fc, err := e.Forecast(snap, ids, r, ForecastOptions{IncludeWeekly: true})
	if err != nil {
		return nil, err
	}
	return &BottleneckReport{
		Range:          fc.Range,
		Bottlenecks:    DetectBottlenecks(fc.Resources),
		Failures:       fc.Failures,
		IsFallbackData: fc.IsFallbackData,
	}, nil
}
