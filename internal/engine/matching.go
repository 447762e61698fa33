package engine

import (
	"fmt"
	"sort"

	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// ── 匹配排序 ──

// MatchWeights 各分项权重
type MatchWeights struct {
	Skills       float64 `json:"skills"`
	Availability float64 `json:"availability"`
	Experience   float64 `json:"experience"`
	TeamFit      float64 `json:"team_fit"`
}

var (
	// ProjectToResourcesWeights 项目 → 人员
	ProjectToResourcesWeights = MatchWeights{Skills: 0.4, Availability: 0.3, Experience: 0.2, TeamFit: 0.1}
	// ResourceToProjectsWeights 人员 → 项目：经验是项目特定历史，此方向不计
	ResourceToProjectsWeights = MatchWeights{Skills: 0.4, Availability: 0.3, TeamFit: 0.3}
	// PairWeights 单对评分
	PairWeights = ProjectToResourcesWeights
)

// MatchScore 人员与项目的匹配评分，各分项与总分均在 [0,1]
type MatchScore struct {
	ResourceID        string  `json:"resource_id"`
	ResourceName      string  `json:"resource_name,omitempty"`
	ProjectID         string  `json:"project_id"`
	ProjectName       string  `json:"project_name,omitempty"`
	Skills            float64 `json:"skills"`
	Availability      float64 `json:"availability"`
	Experience        float64 `json:"experience"`
	TeamCompatibility float64 `json:"team_compatibility"`
	Overall           float64 `json:"overall"`
}

func (m *MatchScore) combine(w MatchWeights) {
	m.Overall = clamp01(m.Skills*w.Skills +
		m.Availability*w.Availability +
		m.Experience*w.Experience +
		m.TeamCompatibility*w.TeamFit)
}

// MatchList 排序结果；Failures 为加载阶段失败、未参与排序的人员
type MatchList struct {
	Matches  []MatchScore      `json:"matches"`
	Failures []ResourceFailure `json:"failures,omitempty"`
}

// MatchQuery 排序查询参数
type MatchQuery struct {
	Limit    int     // ≤ 0 不截断
	MinScore float64 // 低于该总分的结果丢弃
	// Window 可用性评估区间；零值时使用项目起止日期
	Window DateRange
}

func (q MatchQuery) hasWindow() bool {
	return !q.Window.Start.IsZero() || !q.Window.End.IsZero()
}

// normalized 校验并规整查询窗口；未给窗口时原样返回
func (q MatchQuery) normalized() (MatchQuery, error) {
	if !q.hasWindow() {
		return q, nil
	}
	w, err := NewDateRange(q.Window.Start, q.Window.End)
	if err != nil {
		return MatchQuery{}, err
	}
	q.Window = w
	return q, nil
}

func (q MatchQuery) finish(scores []MatchScore) []MatchScore {
	filtered := scores[:0]
	for _, s := range scores {
		if s.Overall >= q.MinScore {
			filtered = append(filtered, s)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Overall > filtered[j].Overall
	})
	if q.Limit > 0 && len(filtered) > q.Limit {
		filtered = filtered[:q.Limit]
	}
	return filtered
}

// availabilityWindow 查询指定区间优先，否则用项目周期
func availabilityWindow(q MatchQuery, p *Project) (DateRange, error) {
	if q.hasWindow() {
		return NewDateRange(q.Window.Start, q.Window.End)
	}
	if r, ok := p.Period(); ok {
		return r, nil
	}
	return DateRange{}, fmt.Errorf("项目 %s 缺少有效起止日期: %w", p.ID, pkgerrors.ErrInvalidRange)
}

// MatchResourcesForProject 为项目推荐人员，按总分降序。
// 加载阶段失败的人员不参与排序，记入 Failures
func (e *Engine) MatchResourcesForProject(snap *Snapshot, projectID string, q MatchQuery) (*MatchList, error) {
	idx, err := newIndex(snap)
	if err != nil {
		return nil, err
	}
	project, err := idx.project(projectID)
	if err != nil {
		return nil, err
	}
	window, err := availabilityWindow(q, project)
	if err != nil {
		return nil, err
	}

	resources, failures := idx.selectResources(nil)
	scores := make([]MatchScore, 0, len(resources))
	for _, r := range resources {
		m := MatchScore{
			ResourceID:        r.ID,
			ResourceName:      r.Name,
			ProjectID:         project.ID,
			ProjectName:       project.Name,
			Skills:            SkillMatch(r.Skills, project.RequiredSkills),
			Availability:      availabilityScore(idx.dailySeries(r.ID, window)),
			Experience:        e.experienceScore(idx, r.ID, project),
			TeamCompatibility: clamp01(e.teamFit.TeamFit(snap, r.ID, project.ID)),
		}
		m.combine(ProjectToResourcesWeights)
		scores = append(scores, m)
	}
	return &MatchList{Matches: q.finish(scores), Failures: failures}, nil
}

// MatchProjectsForResource 为人员推荐项目，已完结项目不参与。
// 人员数据加载失败时返回 ErrUpstreamUnavailable
func (e *Engine) MatchProjectsForResource(snap *Snapshot, resourceID string, q MatchQuery) ([]MatchScore, error) {
	q, err := q.normalized()
	if err != nil {
		return nil, err
	}
	idx, err := newIndex(snap)
	if err != nil {
		return nil, err
	}
	r, err := idx.loadedResource(resourceID)
	if err != nil {
		return nil, err
	}
	return e.matchProjects(idx, r, q), nil
}

func (e *Engine) matchProjects(idx *index, r *Resource, q MatchQuery) []MatchScore {
	scores := make([]MatchScore, 0, len(idx.snap.Projects))
	for i := range idx.snap.Projects {
		p := &idx.snap.Projects[i]
		if p.Status == ProjectStatusCompleted {
			continue
		}
		// 窗口已在入口校验，这里只剩无日期的项目，无法评估可用性，跳过
		window, err := availabilityWindow(q, p)
		if err != nil {
			continue
		}
		m := MatchScore{
			ResourceID:        r.ID,
			ResourceName:      r.Name,
			ProjectID:         p.ID,
			ProjectName:       p.Name,
			Skills:            SkillMatch(r.Skills, p.RequiredSkills),
			Availability:      availabilityScore(idx.dailySeries(r.ID, window)),
			TeamCompatibility: clamp01(e.teamFit.TeamFit(idx.snap, r.ID, p.ID)),
		}
		m.combine(ResourceToProjectsWeights)
		scores = append(scores, m)
	}
	return q.finish(scores)
}

// ScorePair 单对评分，四个分项全部计算。window 为零值时按项目起止日期评估可用性
func (e *Engine) ScorePair(snap *Snapshot, resourceID, projectID string, window DateRange) (*MatchScore, error) {
	idx, err := newIndex(snap)
	if err != nil {
		return nil, err
	}
	r, err := idx.loadedResource(resourceID)
	if err != nil {
		return nil, err
	}
	p, err := idx.project(projectID)
	if err != nil {
		return nil, err
	}
	window, err = availabilityWindow(MatchQuery{Window: window}, p)
	if err != nil {
		return nil, err
	}
	m := &MatchScore{
		ResourceID:        r.ID,
		ResourceName:      r.Name,
		ProjectID:         p.ID,
		ProjectName:       p.Name,
		Skills:            SkillMatch(r.Skills, p.RequiredSkills),
		Availability:      availabilityScore(idx.dailySeries(r.ID, window)),
		Experience:        e.experienceScore(idx, r.ID, p),
		TeamCompatibility: clamp01(e.teamFit.TeamFit(snap, r.ID, p.ID)),
	}
	m.combine(PairWeights)
	return m, nil
}

// AvailabilityScore 人员在区间内的空闲评分 [0,1]
func (e *Engine) AvailabilityScore(snap *Snapshot, resourceID string, r DateRange) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	idx, err := newIndex(snap)
	if err != nil {
		return 0, err
	}
	if _, err := idx.loadedResource(resourceID); err != nil {
		return 0, err
	}
	return availabilityScore(idx.dailySeries(resourceID, r)), nil
}
