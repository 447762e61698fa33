package engine

import (
	"fmt"
	"sort"
)

// ── 再平衡：利用率均衡 ──

const (
	rebalanceOverAbove   = 100.0
	rebalanceUnderBelow  = 70.0
	maxReductionFraction = 0.25 // 找不到接收人时，单条分配最多削减 25%
	fullUtilization      = 100.0
)

// SuggestionType 建议类型
type SuggestionType string

const (
	SuggestionTransfer      SuggestionType = "transfer"
	SuggestionReduction     SuggestionType = "reduction"
	SuggestionIncrease      SuggestionType = "increase"
	SuggestionNewAllocation SuggestionType = "new_allocation"
)

// UtilizationImpact 建议对某人跟踪利用率的影响
type UtilizationImpact struct {
	ResourceID string  `json:"resource_id"`
	Before     float64 `json:"before"`
	After      float64 `json:"after"`
}

// Suggestion 再平衡建议，仅为数据，从不自动执行
type Suggestion struct {
	Type              SuggestionType      `json:"type"`
	AllocationID      string              `json:"allocation_id"`
	ProjectID         string              `json:"project_id"`
	FromResourceID    string              `json:"from_resource_id,omitempty"`
	ToResourceID      string              `json:"to_resource_id,omitempty"`
	ResourceID        string              `json:"resource_id,omitempty"`
	UtilizationAmount float64             `json:"utilization_amount"`
	Period            *DateRange          `json:"period,omitempty"`
	Impact            []UtilizationImpact `json:"impact"`
	Reason            string              `json:"reason"`
}

// ResourceUtilization 人员在区间内的平均利用率
type ResourceUtilization struct {
	ResourceID   string  `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	Utilization  float64 `json:"utilization"`
}

// RebalancePlan 利用率均衡结果
type RebalancePlan struct {
	Range          DateRange             `json:"range"`
	OverAllocated  []ResourceUtilization `json:"over_allocated"`
	UnderAllocated []ResourceUtilization `json:"under_allocated"`
	Suggestions    []Suggestion          `json:"suggestions"`
	Message        string                `json:"message"`
	Failures       []ResourceFailure     `json:"failures,omitempty"`
	IsFallbackData bool                  `json:"is_fallback_data"`
}

// ledger 贪心过程中的容量工作副本：记录每人当前跟踪利用率，
// 同一轮中已分出去的余量不会被重复占用
type ledger struct {
	utilization map[string]float64
}

func newLedger(util []ResourceUtilization) *ledger {
	l := &ledger{utilization: make(map[string]float64, len(util))}
	for _, u := range util {
		l.utilization[u.ResourceID] = u.Utilization
	}
	return l
}

func (l *ledger) spare(id string) float64 {
	return fullUtilization - l.utilization[id]
}

// shift 调整某人利用率并返回影响
func (l *ledger) shift(id string, delta float64) UtilizationImpact {
	before := l.utilization[id]
	l.utilization[id] = before + delta
	return UtilizationImpact{ResourceID: id, Before: before, After: before + delta}
}

// averageUtilizations 区间平均利用率，顺序与输入一致
func averageUtilizations(idx *index, resources []*Resource, r DateRange) []ResourceUtilization {
	out := make([]ResourceUtilization, 0, len(resources))
	for _, res := range resources {
		out = append(out, ResourceUtilization{
			ResourceID:   res.ID,
			ResourceName: res.Name,
			Utilization:  averageUtilization(idx.dailySeries(res.ID, r)),
		})
	}
	return out
}

// Rebalance 利用率均衡：过载 (>100%) 人员的分配按利用率降序累计到覆盖超额，
// 优先转给余量足够的低利用率 (<70%) 人员，找不到时建议削减
func (e *Engine) Rebalance(snap *Snapshot, r DateRange) (*RebalancePlan, error) {
	r, err := NewDateRange(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	idx, err := newIndex(snap)
	if err != nil {
		return nil, err
	}
	resources, failures := idx.selectResources(nil)
	util := averageUtilizations(idx, resources, r)

	plan := balance(idx, util, r, newLedger(util))
	plan.Failures = failures
	plan.IsFallbackData = snap.IsFallbackData
	return plan, nil
}

func balance(idx *index, util []ResourceUtilization, r DateRange, l *ledger) *RebalancePlan {
	plan := &RebalancePlan{
		Range:          r,
		OverAllocated:  make([]ResourceUtilization, 0),
		UnderAllocated: make([]ResourceUtilization, 0),
		Suggestions:    make([]Suggestion, 0),
	}
	for _, u := range util {
		switch {
		case u.Utilization > rebalanceOverAbove:
			plan.OverAllocated = append(plan.OverAllocated, u)
		case u.Utilization < rebalanceUnderBelow:
			plan.UnderAllocated = append(plan.UnderAllocated, u)
		}
	}
	if len(plan.OverAllocated) == 0 {
		plan.Message = "没有过载人员，无需调整"
		return plan
	}
	if len(plan.UnderAllocated) == 0 {
		plan.Message = "没有低利用率人员可承接，无需调整"
		return plan
	}
	sort.SliceStable(plan.OverAllocated, func(i, j int) bool {
		return plan.OverAllocated[i].Utilization > plan.OverAllocated[j].Utilization
	})

	for _, over := range plan.OverAllocated {
		overage := over.Utilization - rebalanceOverAbove
		remaining := overage
		for _, a := range allocationsToRedistribute(idx.allocationsIn(over.ResourceID, r), overage) {
			if remaining <= 0 {
				break
			}
			if to, ok := pickReceiver(plan.UnderAllocated, l, a.Utilization); ok {
				plan.Suggestions = append(plan.Suggestions, Suggestion{
					Type:              SuggestionTransfer,
					AllocationID:      a.ID,
					ProjectID:         a.ProjectID,
					FromResourceID:    over.ResourceID,
					ToResourceID:      to,
					UtilizationAmount: a.Utilization,
					Impact: []UtilizationImpact{
						l.shift(over.ResourceID, -a.Utilization),
						l.shift(to, a.Utilization),
					},
					Reason: fmt.Sprintf("%s 超额 %.1f%%，将 %.0f%% 分配转给余量充足的 %s",
						over.ResourceName, overage, a.Utilization, to),
				})
				remaining -= a.Utilization
				continue
			}
			amount := min(a.Utilization*maxReductionFraction, remaining)
			if amount <= 0 {
				continue
			}
			plan.Suggestions = append(plan.Suggestions, Suggestion{
				Type:              SuggestionReduction,
				AllocationID:      a.ID,
				ProjectID:         a.ProjectID,
				ResourceID:        over.ResourceID,
				UtilizationAmount: amount,
				Impact:            []UtilizationImpact{l.shift(over.ResourceID, -amount)},
				Reason: fmt.Sprintf("无人有 %.0f%% 余量承接，建议将该分配削减 %.1f%%",
					a.Utilization, amount),
			})
			remaining -= amount
		}
	}
	plan.Message = fmt.Sprintf("共 %d 名过载人员，生成 %d 条建议", len(plan.OverAllocated), len(plan.Suggestions))
	return plan
}

// allocationsToRedistribute 按利用率降序累计，直到累计值 ≥ 超额
func allocationsToRedistribute(allocs []Allocation, overage float64) []Allocation {
	sorted := append([]Allocation(nil), allocs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Utilization > sorted[j].Utilization
	})
	var picked []Allocation
	cum := 0.0
	for _, a := range sorted {
		if cum >= overage {
			break
		}
		if a.Utilization <= 0 {
			continue
		}
		picked = append(picked, a)
		cum += a.Utilization
	}
	return picked
}

// pickReceiver 余量 ≥ amount 的人员中选余量最大者
func pickReceiver(under []ResourceUtilization, l *ledger, amount float64) (string, bool) {
	best, bestSpare := "", -1.0
	for _, u := range under {
		spare := l.spare(u.ResourceID)
		if spare >= amount && spare > bestSpare {
			best, bestSpare = u.ResourceID, spare
		}
	}
	return best, best != ""
}
