package engine

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ── 利用率预测 ──

const peakPercentile = 0.9

// WeeklyUtilization 周利用率 = 周内逐日利用率的算术平均
type WeeklyUtilization struct {
	WeekStart             time.Time `json:"week_start"`
	WeekEnd               time.Time `json:"week_end"`
	UtilizationPercentage float64   `json:"utilization_percentage"`
	Status                Status    `json:"status"`
}

// PeakPeriod 连续处于高峰阈值以上的区间
type PeakPeriod struct {
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	Days               int       `json:"days"`
	AverageUtilization float64   `json:"average_utilization"`
	PeakUtilization    float64   `json:"peak_utilization"`
	Status             Status    `json:"status"`
}

// ResourceForecast 单人预测
type ResourceForecast struct {
	ResourceID         string              `json:"resource_id"`
	ResourceName       string              `json:"resource_name"`
	AverageUtilization float64             `json:"average_utilization"`
	PeakUtilization    float64             `json:"peak_utilization"`
	Status             Status              `json:"status"`
	PeakThreshold      float64             `json:"peak_threshold"`
	PeakPeriods        []PeakPeriod        `json:"peak_periods"`
	Daily              []UtilizationWindow `json:"daily,omitempty"`
	Weekly             []WeeklyUtilization `json:"weekly,omitempty"`
}

// OrganizationForecast 组织级预测
type OrganizationForecast struct {
	Range              DateRange          `json:"range"`
	TotalResources     int                `json:"total_resources"`
	AverageUtilization float64            `json:"average_utilization"`
	OverAllocated      int                `json:"over_allocated"`
	UnderAllocated     int                `json:"under_allocated"`
	OptimallyAllocated int                `json:"optimally_allocated"`
	Resources          []ResourceForecast `json:"resources"`
	Failures           []ResourceFailure  `json:"failures,omitempty"`
	IsFallbackData     bool               `json:"is_fallback_data"`
}

// ForecastOptions 预测输出选项
type ForecastOptions struct {
	IncludeDaily  bool
	IncludeWeekly bool
}

// Forecast 计算人员集合在区间内的利用率预测。ids 为空表示全部人员；
// 未知 ID 记入 Failures，其余人员照常计算
func (e *Engine) Forecast(snap *Snapshot, ids []string, r DateRange, opts ForecastOptions) (*OrganizationForecast, error) {
	r, err := NewDateRange(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	idx, err := newIndex(snap)
	if err != nil {
		return nil, err
	}
	resources, failures := idx.selectResources(ids)

	out := &OrganizationForecast{
		Range:          r,
		Resources:      make([]ResourceForecast, 0, len(resources)),
		Failures:       failures,
		IsFallbackData: snap.IsFallbackData,
	}
	for _, res := range resources {
		rf := forecastResource(idx, res, r)
		if !opts.IncludeDaily {
			rf.Daily = nil
		}
		if !opts.IncludeWeekly {
			rf.Weekly = nil
		}
		out.Resources = append(out.Resources, rf)
	}
	summarize(out)
	return out, nil
}

func forecastResource(idx *index, res *Resource, r DateRange) ResourceForecast {
	daily := idx.dailySeries(res.ID, r)
	avg := averageUtilization(daily)
	rf := ResourceForecast{
		ResourceID:         res.ID,
		ResourceName:       res.Name,
		AverageUtilization: avg,
		Status:             ClassifyUtilization(avg),
		Daily:              daily,
		Weekly:             weeklyBuckets(daily, r),
	}
	for _, d := range daily {
		if d.UtilizationPercentage > rf.PeakUtilization {
			rf.PeakUtilization = d.UtilizationPercentage
		}
	}
	rf.PeakThreshold, rf.PeakPeriods = detectPeaks(daily)
	return rf
}

// weeklyBuckets 从区间起始日开始每 7 天一桶，最后一桶截断
func weeklyBuckets(daily []UtilizationWindow, r DateRange) []WeeklyUtilization {
	weeks := r.Weeks()
	out := make([]WeeklyUtilization, 0, len(weeks))
	i := 0
	for _, w := range weeks {
		n := w.Days()
		bucket := daily[i:min(i+n, len(daily))]
		i += n
		avg := averageUtilization(bucket)
		out = append(out, WeeklyUtilization{
			WeekStart:             w.Start,
			WeekEnd:               w.End,
			UtilizationPercentage: avg,
			Status:                ClassifyUtilization(avg),
		})
	}
	return out
}

// detectPeaks 以逐日序列的 90 分位为阈值，合并连续 ≥ 阈值的日期。
// 阈值 ≤ 0（整段无分配）时不产出高峰
func detectPeaks(daily []UtilizationWindow) (float64, []PeakPeriod) {
	if len(daily) == 0 {
		return 0, nil
	}
	values := make([]float64, len(daily))
	for i, d := range daily {
		values[i] = d.UtilizationPercentage
	}
	sort.Float64s(values)
	threshold := stat.Quantile(peakPercentile, stat.Empirical, values, nil)
	if threshold <= 0 {
		return threshold, nil
	}

	type acc struct {
		start, end time.Time
		days       int
		sum, peak  float64
	}
	var (
		peaks []PeakPeriod
		cur   *acc
	)
	flush := func() {
		if cur == nil {
			return
		}
		avg := cur.sum / float64(cur.days)
		peaks = append(peaks, PeakPeriod{
			Start:              cur.start,
			End:                cur.end,
			Days:               cur.days,
			AverageUtilization: avg,
			PeakUtilization:    cur.peak,
			Status:             ClassifyUtilization(avg),
		})
		cur = nil
	}
	for _, d := range daily {
		if d.UtilizationPercentage < threshold {
			flush()
			continue
		}
		if cur == nil {
			cur = &acc{start: d.Date}
		}
		cur.end = d.Date
		cur.days++
		cur.sum += d.UtilizationPercentage
		cur.peak = max(cur.peak, d.UtilizationPercentage)
	}
	flush()
	return threshold, peaks
}

// summarize 组织健康度：>110 过载，<70 不足，其余为合理
func summarize(out *OrganizationForecast) {
	out.TotalResources = len(out.Resources)
	if out.TotalResources == 0 {
		return
	}
	sum := 0.0
	for _, rf := range out.Resources {
		sum += rf.AverageUtilization
		switch {
		case rf.AverageUtilization > orgOverallocatedAbove:
			out.OverAllocated++
		case rf.AverageUtilization < orgUnderallocatedBelow:
			out.UnderAllocated++
		default:
			out.OptimallyAllocated++
		}
	}
	out.AverageUtilization = sum / float64(out.TotalResources)
}
