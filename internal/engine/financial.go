package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// ── 再平衡：财务目标 ──

// FinancialGoal 财务优化目标
type FinancialGoal string

const (
	GoalProfit      FinancialGoal = "profit"
	GoalRevenue     FinancialGoal = "revenue"
	GoalCost        FinancialGoal = "cost"
	GoalUtilization FinancialGoal = "utilization"
)

// ParseFinancialGoal 解析优化目标，空值默认为 profit
func ParseFinancialGoal(s string) (FinancialGoal, error) {
	switch g := FinancialGoal(s); g {
	case "":
		return GoalProfit, nil
	case GoalProfit, GoalRevenue, GoalCost, GoalUtilization:
		return g, nil
	default:
		return "", fmt.Errorf("%q: %w", s, pkgerrors.ErrInvalidGoal)
	}
}

const (
	highMarginPercent  = 20.0 // 高利润项目下限
	lowMarginPercent   = 10.0 // 低利润项目上限（不含），下限 0
	newAllocationCap   = 50.0 // 新建分配最多 50%
	costReductionStep  = 25.0 // 低利润项目上成本最高的分配削减 25 个百分点
	costReductionFloor = 25.0 // 削减后不低于 25%
)

var hundred = decimal.NewFromInt(100)

// proposedNamespace 新建分配的确定性 ID 命名空间
var proposedNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("resource-pulse/proposed-allocation"))

// FinancialTotals 收入 / 成本 / 利润
type FinancialTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// Sub 差值
func (t FinancialTotals) Sub(o FinancialTotals) FinancialTotals {
	return FinancialTotals{
		Revenue: t.Revenue.Sub(o.Revenue),
		Cost:    t.Cost.Sub(o.Cost),
		Profit:  t.Profit.Sub(o.Profit),
	}
}

// FinancialImpact 优化前后对比
type FinancialImpact struct {
	Before FinancialTotals `json:"before"`
	After  FinancialTotals `json:"after"`
	Delta  FinancialTotals `json:"delta"`
}

// FinancialPlan 财务目标优化结果
type FinancialPlan struct {
	Goal           FinancialGoal     `json:"goal"`
	Range          DateRange         `json:"range"`
	Suggestions    []Suggestion      `json:"suggestions"`
	Impact         FinancialImpact   `json:"impact"`
	Message        string            `json:"message"`
	Failures       []ResourceFailure `json:"failures,omitempty"`
	IsFallbackData bool              `json:"is_fallback_data"`
}

// workingSet 分配工作副本，建议在其上逐步推演；原始快照不变
type workingSet struct {
	allocs []Allocation
}

func (w *workingSet) find(resourceID, projectID string) *Allocation {
	for i := range w.allocs {
		if w.allocs[i].ResourceID == resourceID && w.allocs[i].ProjectID == projectID {
			return &w.allocs[i]
		}
	}
	return nil
}

func (w *workingSet) byID(id string) *Allocation {
	for i := range w.allocs {
		if w.allocs[i].ID == id {
			return &w.allocs[i]
		}
	}
	return nil
}

// apply 把建议推演到工作副本
func (w *workingSet) apply(s Suggestion) {
	switch s.Type {
	case SuggestionTransfer:
		if a := w.byID(s.AllocationID); a != nil {
			a.ResourceID = s.ToResourceID
		}
	case SuggestionReduction:
		if a := w.byID(s.AllocationID); a != nil {
			a.Utilization -= s.UtilizationAmount
		}
	case SuggestionIncrease:
		if a := w.byID(s.AllocationID); a != nil {
			a.Utilization += s.UtilizationAmount
		}
	case SuggestionNewAllocation:
		a := Allocation{
			ID:          s.AllocationID,
			ResourceID:  s.ResourceID,
			ProjectID:   s.ProjectID,
			Utilization: s.UtilizationAmount,
		}
		if s.Period != nil {
			a.StartDate, a.EndDate = s.Period.Start, s.Period.End
		}
		w.allocs = append(w.allocs, a)
	}
}

// totals 收入 = Σ 分配% × 计费费率 / 100，成本 = Σ 分配% × 成本费率 / 100
func totals(idx *index, allocs []Allocation) FinancialTotals {
	var t FinancialTotals
	for _, a := range allocs {
		r, ok := idx.resources[a.ResourceID]
		if !ok {
			continue
		}
		pct := decimal.NewFromFloat(a.Utilization)
		t.Revenue = t.Revenue.Add(pct.Mul(r.BillingRate).Div(hundred))
		t.Cost = t.Cost.Add(pct.Mul(r.CostRate).Div(hundred))
	}
	t.Profit = t.Revenue.Sub(t.Cost)
	return t
}

// OptimizeFinancials 按财务目标生成建议；utilization 目标复用利用率均衡
func (e *Engine) OptimizeFinancials(snap *Snapshot, r DateRange, goal FinancialGoal) (*FinancialPlan, error) {
	goal, err := ParseFinancialGoal(string(goal))
	if err != nil {
		return nil, err
	}
	r, err = NewDateRange(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	idx, err := newIndex(snap)
	if err != nil {
		return nil, err
	}
	resources, failures := idx.selectResources(nil)
	util := averageUtilizations(idx, resources, r)
	l := newLedger(util)

	var active []Allocation
	for _, res := range resources {
		active = append(active, idx.allocationsIn(res.ID, r)...)
	}
	ws := &workingSet{allocs: append([]Allocation(nil), active...)}

	plan := &FinancialPlan{
		Goal:           goal,
		Range:          r,
		Suggestions:    make([]Suggestion, 0),
		Failures:       failures,
		IsFallbackData: snap.IsFallbackData,
	}
	emit := func(s Suggestion) {
		ws.apply(s)
		plan.Suggestions = append(plan.Suggestions, s)
	}

	projects := activeProjects(idx, r)
	switch goal {
	case GoalProfit:
		ordered := sortResources(resources, func(a, b *Resource) bool {
			return a.RateMargin().GreaterThan(b.RateMargin())
		})
		highMargin := filterProjects(projects, func(p *Project) bool { return p.MarginPercent() >= highMarginPercent })
		sortProjects(highMargin, func(a, b *Project) bool { return a.MarginPercent() > b.MarginPercent() })
		fillSpareCapacity(ws, l, r, ordered, highMargin, func(res *Resource) bool {
			return res.RateMargin().IsPositive()
		}, emit)

		lowMargin := filterProjects(projects, func(p *Project) bool {
			m := p.MarginPercent()
			return m >= 0 && m < lowMarginPercent
		})
		sortProjects(lowMargin, func(a, b *Project) bool { return a.MarginPercent() > b.MarginPercent() })
		shrinkCostliest(idx, ws, l, lowMargin, emit)

	case GoalRevenue:
		ordered := sortResources(resources, func(a, b *Resource) bool {
			return a.BillingRate.GreaterThan(b.BillingRate)
		})
		byRevenue := filterProjects(projects, func(p *Project) bool { return p.Budget.IsPositive() })
		sortProjects(byRevenue, func(a, b *Project) bool { return a.Budget.GreaterThan(b.Budget) })
		fillSpareCapacity(ws, l, r, ordered, byRevenue, func(res *Resource) bool {
			return res.BillingRate.IsPositive()
		}, emit)

	case GoalCost:
		cheapest := sortResources(resources, func(a, b *Resource) bool {
			return a.CostRate.LessThan(b.CostRate)
		})
		shiftToCheaper(idx, ws, l, cheapest, emit)

	case GoalUtilization:
		bp := balance(idx, util, r, l)
		for _, s := range bp.Suggestions {
			emit(s)
		}
		plan.Message = bp.Message
	}

	before := totals(idx, active)
	after := totals(idx, ws.allocs)
	plan.Impact = FinancialImpact{Before: before, After: after, Delta: after.Sub(before)}
	if plan.Message == "" {
		if len(plan.Suggestions) == 0 {
			plan.Message = "当前分配已符合目标，无需调整"
		} else {
			plan.Message = fmt.Sprintf("按 %s 目标生成 %d 条建议，利润变化 %s",
				goal, len(plan.Suggestions), plan.Impact.Delta.Profit.StringFixed(2))
		}
	}
	return plan, nil
}

// activeProjects 进行中且与区间有交集的项目，保持快照顺序
func activeProjects(idx *index, r DateRange) []*Project {
	var out []*Project
	for i := range idx.snap.Projects {
		p := &idx.snap.Projects[i]
		if p.Status != ProjectStatusActive {
			continue
		}
		if period, ok := p.Period(); ok && !period.Overlaps(r) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func filterProjects(in []*Project, keep func(*Project) bool) []*Project {
	var out []*Project
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func sortProjects(ps []*Project, less func(a, b *Project) bool) {
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

func sortResources(in []*Resource, less func(a, b *Resource) bool) []*Resource {
	out := append([]*Resource(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// fillSpareCapacity 把未满 100% 人员的余量依次放到目标项目：
// 已有分配则补到 100%，否则新建分配（最多 50%）
func fillSpareCapacity(ws *workingSet, l *ledger, r DateRange, resources []*Resource, projects []*Project,
	eligible func(*Resource) bool, emit func(Suggestion)) {
	for _, res := range resources {
		if !eligible(res) {
			continue
		}
		for _, p := range projects {
			spare := l.spare(res.ID)
			if spare <= 0 {
				break
			}
			if existing := ws.find(res.ID, p.ID); existing != nil {
				inc := min(spare, fullUtilization-existing.Utilization)
				if inc <= 0 {
					continue
				}
				emit(Suggestion{
					Type:              SuggestionIncrease,
					AllocationID:      existing.ID,
					ProjectID:         p.ID,
					ResourceID:        res.ID,
					UtilizationAmount: inc,
					Impact:            []UtilizationImpact{l.shift(res.ID, inc)},
					Reason:            fmt.Sprintf("%s 有 %.1f%% 余量，提高在 %s 上的分配", res.Name, spare, p.Name),
				})
				continue
			}
			amount := min(spare, newAllocationCap)
			period := r
			if pp, ok := p.Period(); ok {
				period, _ = r.Intersect(pp)
			}
			emit(Suggestion{
				Type:              SuggestionNewAllocation,
				AllocationID:      uuid.NewSHA1(proposedNamespace, []byte(res.ID+"/"+p.ID)).String(),
				ProjectID:         p.ID,
				ResourceID:        res.ID,
				UtilizationAmount: amount,
				Period:            &period,
				Impact:            []UtilizationImpact{l.shift(res.ID, amount)},
				Reason:            fmt.Sprintf("%s 有 %.1f%% 余量，建议加入 %s", res.Name, spare, p.Name),
			})
		}
	}
}

// shrinkCostliest 每个低利润项目上成本最高的分配削减 25 个百分点，不低于 25%
func shrinkCostliest(idx *index, ws *workingSet, l *ledger, projects []*Project, emit func(Suggestion)) {
	for _, p := range projects {
		var (
			target   *Allocation
			highCost decimal.Decimal
		)
		for i := range ws.allocs {
			a := &ws.allocs[i]
			res, ok := idx.resources[a.ResourceID]
			if a.ProjectID != p.ID || !ok {
				continue
			}
			cost := decimal.NewFromFloat(a.Utilization).Mul(res.CostRate)
			if target == nil || cost.GreaterThan(highCost) {
				target, highCost = a, cost
			}
		}
		if target == nil || target.Utilization <= costReductionFloor {
			continue
		}
		newUtil := max(costReductionFloor, target.Utilization-costReductionStep)
		amount := target.Utilization - newUtil
		emit(Suggestion{
			Type:              SuggestionReduction,
			AllocationID:      target.ID,
			ProjectID:         p.ID,
			ResourceID:        target.ResourceID,
			UtilizationAmount: amount,
			Impact:            []UtilizationImpact{l.shift(target.ResourceID, -amount)},
			Reason: fmt.Sprintf("项目 %s 利润率 %.1f%% 偏低，削减成本最高的分配至 %.0f%%",
				p.Name, p.MarginPercent(), newUtil),
		})
	}
}

// shiftToCheaper 成本最高的分配优先转给成本更低且余量足够的人员
func shiftToCheaper(idx *index, ws *workingSet, l *ledger, cheapest []*Resource, emit func(Suggestion)) {
	type costed struct {
		id   string
		cost decimal.Decimal
	}
	order := make([]costed, 0, len(ws.allocs))
	for _, a := range ws.allocs {
		if res, ok := idx.resources[a.ResourceID]; ok && a.Utilization > 0 {
			order = append(order, costed{id: a.ID, cost: decimal.NewFromFloat(a.Utilization).Mul(res.CostRate)})
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].cost.GreaterThan(order[j].cost) })

	for _, c := range order {
		a := ws.byID(c.id)
		from := idx.resources[a.ResourceID]
		for _, to := range cheapest {
			if !to.CostRate.LessThan(from.CostRate) {
				break
			}
			if to.ID == from.ID || l.spare(to.ID) < a.Utilization {
				continue
			}
			amount := a.Utilization
			emit(Suggestion{
				Type:              SuggestionTransfer,
				AllocationID:      a.ID,
				ProjectID:         a.ProjectID,
				FromResourceID:    from.ID,
				ToResourceID:      to.ID,
				UtilizationAmount: amount,
				Impact: []UtilizationImpact{
					l.shift(from.ID, -amount),
					l.shift(to.ID, amount),
				},
				Reason: fmt.Sprintf("%s 成本费率低于 %s，且有余量承接 %.0f%%", to.Name, from.Name, amount),
			})
			break
		}
	}
}
