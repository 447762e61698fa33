package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/metrics"
	"github.com/freeup86/resource-pulse-sub001/internal/model"
	"github.com/freeup86/resource-pulse-sub001/internal/repository"
	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// SnapshotService 从持久化层一次性取出引擎所需数据
//
// 设计说明：
//   - 人员 / 项目加载失败视为上游不可用；开启降级时改用样例数据并打标记
//   - 单个人员的分配或容量加载失败只记入 Failures，其余人员照常计算
//   - 引擎只读快照，本服务从不写入
type SnapshotService interface {
	// Load resourceIDs 为空时加载全部人员
	Load(ctx context.Context, resourceIDs []string) (*engine.Snapshot, error)
}

type snapshotService struct {
	repo     *repository.Repository
	fallback bool
	logger   *zap.Logger
	now      func() time.Time
}

// NewSnapshotService 创建 SnapshotService 实例
func NewSnapshotService(repo *repository.Repository, fallbackEnabled bool, logger *zap.Logger) SnapshotService {
	return &snapshotService{repo: repo, fallback: fallbackEnabled, logger: logger, now: time.Now}
}

func (s *snapshotService) Load(ctx context.Context, resourceIDs []string) (*engine.Snapshot, error) {
	start := time.Now()
	defer func() { metrics.SnapshotLoadSeconds.Observe(time.Since(start).Seconds()) }()

	asOf := engine.Day(s.now())

	resources, err := s.loadResources(ctx, resourceIDs)
	if err != nil {
		return s.upstreamFailed(ctx, asOf, "加载人员失败", err)
	}
	projects, err := s.repo.Project.List(ctx)
	if err != nil {
		return s.upstreamFailed(ctx, asOf, "加载项目失败", err)
	}

	snap := &engine.Snapshot{
		Resources:   make([]engine.Resource, 0, len(resources)),
		Projects:    make([]engine.Project, 0, len(projects)),
		Allocations: make([]engine.Allocation, 0),
		Capacity:    make([]engine.CapacityEntry, 0),
		AsOf:        asOf,
	}
	for i := range projects {
		snap.Projects = append(snap.Projects, toEngineProject(&projects[i]))
	}
	for i := range resources {
		res := &resources[i]
		snap.Resources = append(snap.Resources, toEngineResource(res))

		allocs, err := s.repo.Allocation.ListByResource(ctx, res.ResourceID)
		if err != nil {
			s.resourceFailed(snap, res.ResourceID, "加载分配失败", err)
			continue
		}
		capacity, err := s.repo.Capacity.ListByResource(ctx, res.ResourceID)
		if err != nil {
			s.resourceFailed(snap, res.ResourceID, "加载容量日历失败", err)
			continue
		}
		for j := range allocs {
			snap.Allocations = append(snap.Allocations, toEngineAllocation(&allocs[j]))
		}
		for j := range capacity {
			snap.Capacity = append(snap.Capacity, toEngineCapacity(&capacity[j]))
		}
	}
	return snap, nil
}

func (s *snapshotService) loadResources(ctx context.Context, ids []string) ([]model.Resource, error) {
	if len(ids) == 0 {
		return s.repo.Resource.List(ctx)
	}
	return s.repo.Resource.ListByIDs(ctx, ids)
}

// upstreamFailed 请求已取消时直接返回；否则按配置降级或报上游不可用
func (s *snapshotService) upstreamFailed(ctx context.Context, asOf time.Time, msg string, err error) (*engine.Snapshot, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !s.fallback {
		s.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %v", msg, pkgerrors.ErrUpstreamUnavailable, err)
	}
	s.logger.Warn(msg+"，使用样例数据", zap.Error(err))
	metrics.FallbackSnapshotsTotal.Inc()
	return fallbackSnapshot(asOf), nil
}

func (s *snapshotService) resourceFailed(snap *engine.Snapshot, resourceID, msg string, err error) {
	s.logger.Warn(msg, zap.String("resource_id", resourceID), zap.Error(err))
	metrics.ResourceLoadFailuresTotal.Inc()
	snap.Failures = append(snap.Failures, engine.ResourceFailure{
		ResourceID: resourceID,
		Reason:     fmt.Sprintf("%s: %v", msg, err),
	})
}

// ── 持久化模型 → 引擎模型 ──

func toEngineSkills(skills []model.Skill) []engine.Skill {
	if len(skills) == 0 {
		return nil
	}
	out := make([]engine.Skill, 0, len(skills))
	for _, sk := range skills {
		out = append(out, engine.Skill{ID: sk.SkillID, Name: sk.Name, Category: sk.Category})
	}
	return out
}

func toEngineResource(r *model.Resource) engine.Resource {
	return engine.Resource{
		ID:          r.ResourceID,
		Name:        r.Name,
		Role:        r.Role,
		BillingRate: r.BillingRate.Decimal,
		CostRate:    r.CostRate.Decimal,
		Skills:      toEngineSkills(r.Skills),
	}
}

func toEngineProject(p *model.Project) engine.Project {
	out := engine.Project{
		ID:             p.ProjectID,
		Name:           p.Name,
		Description:    p.Description,
		Client:         p.Client,
		Status:         p.Status,
		RequiredSkills: toEngineSkills(p.RequiredSkills),
		Budget:         p.Budget.Decimal,
		ActualCost:     p.ActualCost.Decimal,
	}
	if p.StartDate != nil {
		out.StartDate = engine.Day(*p.StartDate)
	}
	if p.EndDate != nil {
		out.EndDate = engine.Day(*p.EndDate)
	}
	return out
}

func toEngineAllocation(a *model.Allocation) engine.Allocation {
	return engine.Allocation{
		ID:          a.AllocationID,
		ResourceID:  a.ResourceID,
		ProjectID:   a.ProjectID,
		StartDate:   engine.Day(a.StartDate),
		EndDate:     engine.Day(a.EndDate),
		Utilization: a.Utilization,
		Note:        a.Note,
	}
}

func toEngineCapacity(c *model.CapacityCalendar) engine.CapacityEntry {
	return engine.CapacityEntry{
		ResourceID:        c.ResourceID,
		Year:              c.Year,
		Month:             time.Month(c.Month),
		AvailableCapacity: c.AvailableCapacity,
		PlannedTimeOff:    c.PlannedTimeOff,
	}
}
