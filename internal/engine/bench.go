package engine

import "time"

// ── 空闲期预测 ──

// BenchPeriod 连续空闲日期
type BenchPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// ResourceBench 单人空闲预测
type ResourceBench struct {
	ResourceID        string        `json:"resource_id"`
	ResourceName      string        `json:"resource_name"`
	TotalDays         int           `json:"total_days"`
	TotalBenchDays    int           `json:"total_bench_days"`
	BenchPercentage   float64       `json:"bench_percentage"`
	Periods           []BenchPeriod `json:"periods"`
	SuggestedProjects []MatchScore  `json:"suggested_projects,omitempty"`
}

// BenchPrediction 空闲预测结果
type BenchPrediction struct {
	Range          DateRange         `json:"range"`
	Threshold      float64           `json:"threshold"`
	Resources      []ResourceBench   `json:"resources"`
	TotalBenchDays int               `json:"total_bench_days"`
	Failures       []ResourceFailure `json:"failures,omitempty"`
	IsFallbackData bool              `json:"is_fallback_data"`
}

// BenchOptions 空闲预测选项
type BenchOptions struct {
	// Threshold 日分配总和 ≤ 该值视为空闲；nil 时使用引擎默认值
	Threshold *float64
	// SuggestionLimit > 0 时为有空闲期的人员附带推荐项目
	SuggestionLimit int
}

// PredictBench 逐日统计分配总和 ≤ 阈值的日期，连续日期合并为一个空闲期
func (e *Engine) PredictBench(snap *Snapshot, ids []string, r DateRange, opts BenchOptions) (*BenchPrediction, error) {
	r, err := NewDateRange(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	idx, err := newIndex(snap)
	if err != nil {
		return nil, err
	}
	threshold := e.benchThreshold
	if opts.Threshold != nil && *opts.Threshold >= 0 {
		threshold = *opts.Threshold
	}
	resources, failures := idx.selectResources(ids)

	out := &BenchPrediction{
		Range:          r,
		Threshold:      threshold,
		Resources:      make([]ResourceBench, 0, len(resources)),
		Failures:       failures,
		IsFallbackData: snap.IsFallbackData,
	}
	for _, res := range resources {
		rb := benchForResource(idx, res, r, threshold)
		if opts.SuggestionLimit > 0 && len(rb.Periods) > 0 {
			rb.SuggestedProjects = e.matchProjects(idx, res, MatchQuery{Limit: opts.SuggestionLimit})
		}
		out.TotalBenchDays += rb.TotalBenchDays
		out.Resources = append(out.Resources, rb)
	}
	return out, nil
}

func benchForResource(idx *index, res *Resource, r DateRange, threshold float64) ResourceBench {
	rb := ResourceBench{
		ResourceID:   res.ID,
		ResourceName: res.Name,
		TotalDays:    r.Days(),
		Periods:      make([]BenchPeriod, 0),
	}
	var cur *BenchPeriod
	r.EachDay(func(day time.Time) {
		if idx.loadOn(res.ID, day) > threshold {
			if cur != nil {
				rb.Periods = append(rb.Periods, *cur)
				cur = nil
			}
			return
		}
		if cur == nil {
			cur = &BenchPeriod{Start: day}
		}
		cur.End = day
		cur.Days++
		rb.TotalBenchDays++
	})
	if cur != nil {
		rb.Periods = append(rb.Periods, *cur)
	}
	rb.BenchPercentage = float64(rb.TotalBenchDays) / float64(rb.TotalDays) * 100
	return rb
}
