package engine

import "time"

// UtilizationWindow 某人某天的利用率
type UtilizationWindow struct {
	ResourceID            string    `json:"resource_id"`
	Date                  time.Time `json:"date"`
	Capacity              float64   `json:"capacity"`
	AllocatedLoad         float64   `json:"allocated_load"`
	UtilizationPercentage float64   `json:"utilization_percentage"`
	Status                Status    `json:"status"`
}

// utilizationPercent 容量 ≤ 0 时利用率记为 0
func utilizationPercent(load, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return load / capacity * 100
}

// dailySeries 逐日计算利用率序列，可用性评分与预测共用
func (idx *index) dailySeries(resourceID string, r DateRange) []UtilizationWindow {
	series := make([]UtilizationWindow, 0, r.Days())
	r.EachDay(func(day time.Time) {
		capacity := idx.capacityOn(resourceID, day)
		load := idx.loadOn(resourceID, day)
		pct := utilizationPercent(load, capacity)
		series = append(series, UtilizationWindow{
			ResourceID:            resourceID,
			Date:                  day,
			Capacity:              capacity,
			AllocatedLoad:         load,
			UtilizationPercentage: pct,
			Status:                ClassifyUtilization(pct),
		})
	})
	return series
}

// averageUtilization 序列平均利用率
func averageUtilization(series []UtilizationWindow) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range series {
		sum += w.UtilizationPercentage
	}
	return sum / float64(len(series))
}

// availabilityScore 空闲程度 = max(0, (100 − 平均利用率) / 100)，1 表示完全空闲
func availabilityScore(series []UtilizationWindow) float64 {
	score := (100 - averageUtilization(series)) / 100
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
