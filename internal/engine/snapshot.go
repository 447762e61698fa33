package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// ── 输入快照 ──
// 引擎只读取快照，不做任何 I/O；快照由服务层从持久化层一次性取出

// Project 状态
const (
	ProjectStatusActive    = "Active"
	ProjectStatusPlanning  = "Planning"
	ProjectStatusOnHold    = "On Hold"
	ProjectStatusCompleted = "Completed"
)

// Skill 技能
type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Resource 人员
type Resource struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Role        string          `json:"role,omitempty"`
	BillingRate decimal.Decimal `json:"billing_rate"` // 零值表示未配置
	CostRate    decimal.Decimal `json:"cost_rate"`
	Skills      []Skill         `json:"skills,omitempty"`
}

// RateMargin 单位小时毛利 = 计费费率 − 成本费率
func (r Resource) RateMargin() decimal.Decimal {
	return r.BillingRate.Sub(r.CostRate)
}

// Project 项目
type Project struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Client         string          `json:"client,omitempty"`
	Status         string          `json:"status"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	RequiredSkills []Skill         `json:"required_skills,omitempty"`
	Budget         decimal.Decimal `json:"budget"`
	ActualCost     decimal.Decimal `json:"actual_cost"`
}

// Period 项目起止区间；缺少日期时 ok=false
func (p Project) Period() (DateRange, bool) {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return DateRange{}, false
	}
	r := DateRange{Start: Day(p.StartDate), End: Day(p.EndDate)}
	if r.Validate() != nil {
		return DateRange{}, false
	}
	return r, true
}

// MarginPercent 项目利润率 (预算 − 实际成本) / 预算 × 100，无预算时为 0
func (p Project) MarginPercent() float64 {
	if !p.Budget.IsPositive() {
		return 0
	}
	m, _ := p.Budget.Sub(p.ActualCost).Div(p.Budget).Mul(decimal.NewFromInt(100)).Float64()
	return m
}

// Allocation 已确认的分配。同一人员多条分配可重叠，按天累加
type Allocation struct {
	ID          string    `json:"id"`
	ResourceID  string    `json:"resource_id"`
	ProjectID   string    `json:"project_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Utilization float64   `json:"utilization"` // 0–100+
	Note        string    `json:"note,omitempty"`
}

// Period 分配区间
func (a Allocation) Period() DateRange {
	return DateRange{Start: Day(a.StartDate), End: Day(a.EndDate)}
}

// CapacityEntry 容量日历条目；缺失月份默认 100% 容量、0% 休假
type CapacityEntry struct {
	ResourceID        string     `json:"resource_id"`
	Year              int        `json:"year"`
	Month             time.Month `json:"month"`
	AvailableCapacity float64    `json:"available_capacity"`
	PlannedTimeOff    float64    `json:"planned_time_off"`
}

// ResourceFailure 批量计算中单个人员的失败记录
type ResourceFailure struct {
	ResourceID string `json:"resource_id"`
	Reason     string `json:"reason"`
}

// Snapshot 一次请求的只读数据快照
type Snapshot struct {
	Resources   []Resource        `json:"resources"`
	Projects    []Project         `json:"projects"`
	Allocations []Allocation      `json:"allocations"`
	Capacity    []CapacityEntry   `json:"capacity"`
	AsOf        time.Time         `json:"as_of"`
	Failures    []ResourceFailure `json:"failures,omitempty"` // 加载阶段已失败的人员
	// IsFallbackData 为 true 表示快照来自样例数据，所有结果都必须带此标记
	IsFallbackData bool `json:"is_fallback_data"`
}

// ── 快照索引 ──

type capacityKey struct {
	resourceID string
	month      YearMonth
}

type dailyCapacity struct {
	available float64
	timeOff   float64
}

// index 快照的只读索引，构建后不再修改
type index struct {
	snap          *Snapshot
	resources     map[string]*Resource
	projects      map[string]*Project
	byResource    map[string][]Allocation
	byProject     map[string][]Allocation
	capacity      map[capacityKey]dailyCapacity
	resourceOrder []string
}

func newIndex(snap *Snapshot) (*index, error) {
	idx := &index{
		snap:       snap,
		resources:  make(map[string]*Resource, len(snap.Resources)),
		projects:   make(map[string]*Project, len(snap.Projects)),
		byResource: make(map[string][]Allocation),
		byProject:  make(map[string][]Allocation),
		capacity:   make(map[capacityKey]dailyCapacity, len(snap.Capacity)),
	}
	for i := range snap.Resources {
		r := &snap.Resources[i]
		if _, dup := idx.resources[r.ID]; !dup {
			idx.resourceOrder = append(idx.resourceOrder, r.ID)
		}
		idx.resources[r.ID] = r
	}
	for i := range snap.Projects {
		idx.projects[snap.Projects[i].ID] = &snap.Projects[i]
	}
	for _, a := range snap.Allocations {
		if a.Period().Validate() != nil {
			return nil, fmt.Errorf("分配 %s 结束日期早于开始日期: %w", a.ID, pkgerrors.ErrInvalidRange)
		}
		idx.byResource[a.ResourceID] = append(idx.byResource[a.ResourceID], a)
		idx.byProject[a.ProjectID] = append(idx.byProject[a.ProjectID], a)
	}
	for _, c := range snap.Capacity {
		if c.AvailableCapacity < 0 || c.PlannedTimeOff < 0 {
			return nil, fmt.Errorf("人员 %s %04d-%02d 容量为负: %w",
				c.ResourceID, c.Year, int(c.Month), pkgerrors.ErrInvalidRange)
		}
		key := capacityKey{resourceID: c.ResourceID, month: YearMonth{Year: c.Year, Month: c.Month}}
		idx.capacity[key] = dailyCapacity{available: c.AvailableCapacity, timeOff: c.PlannedTimeOff}
	}
	return idx, nil
}

func (idx *index) resource(id string) (*Resource, error) {
	r, ok := idx.resources[id]
	if !ok {
		return nil, fmt.Errorf("人员 %s: %w", id, pkgerrors.ErrNotFound)
	}
	return r, nil
}

// loadedResource 同 resource，但加载阶段失败的人员返回 ErrUpstreamUnavailable，
// 避免用缺失的分配数据评分
func (idx *index) loadedResource(id string) (*Resource, error) {
	r, err := idx.resource(id)
	if err != nil {
		return nil, err
	}
	for _, f := range idx.snap.Failures {
		if f.ResourceID == id {
			return nil, fmt.Errorf("人员 %s 数据加载失败 (%s): %w", id, f.Reason, pkgerrors.ErrUpstreamUnavailable)
		}
	}
	return r, nil
}

func (idx *index) project(id string) (*Project, error) {
	p, ok := idx.projects[id]
	if !ok {
		return nil, fmt.Errorf("项目 %s: %w", id, pkgerrors.ErrNotFound)
	}
	return p, nil
}

// capacityOn 某人某天的有效容量 = 可用容量 − 计划休假
func (idx *index) capacityOn(resourceID string, day time.Time) float64 {
	c, ok := idx.capacity[capacityKey{resourceID: resourceID, month: MonthKey(day)}]
	if !ok {
		return 100
	}
	return c.available - c.timeOff
}

// loadOn 某人某天所有覆盖该天的分配之和
func (idx *index) loadOn(resourceID string, day time.Time) float64 {
	var load float64
	for _, a := range idx.byResource[resourceID] {
		if a.Period().Contains(day) {
			load += a.Utilization
		}
	}
	return load
}

// allocationsIn 某人与区间有交集的分配，保持输入顺序
func (idx *index) allocationsIn(resourceID string, r DateRange) []Allocation {
	var out []Allocation
	for _, a := range idx.byResource[resourceID] {
		if a.Period().Overlaps(r) {
			out = append(out, a)
		}
	}
	return out
}

// selectResources 按请求的 ID 解析人员；未知 ID 记为失败而不中断。ids 为空表示全部
func (idx *index) selectResources(ids []string) ([]*Resource, []ResourceFailure) {
	failures := append([]ResourceFailure(nil), idx.snap.Failures...)
	failed := make(map[string]bool, len(failures))
	for _, f := range failures {
		failed[f.ResourceID] = true
	}
	if len(ids) == 0 {
		out := make([]*Resource, 0, len(idx.resourceOrder))
		for _, id := range idx.resourceOrder {
			if !failed[id] {
				out = append(out, idx.resources[id])
			}
		}
		return out, failures
	}
	seen := make(map[string]bool, len(ids))
	out := make([]*Resource, 0, len(ids))
	for _, id := range ids {
		if seen[id] || failed[id] {
			continue
		}
		seen[id] = true
		r, ok := idx.resources[id]
		if !ok {
			failures = append(failures, ResourceFailure{ResourceID: id, Reason: pkgerrors.ErrNotFound.Error()})
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].ResourceID < failures[j].ResourceID })
	return out, failures
}
