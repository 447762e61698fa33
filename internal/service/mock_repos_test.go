package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/model"
	"github.com/freeup86/resource-pulse-sub001/internal/repository"
	"github.com/freeup86/resource-pulse-sub001/pkg/redis"
)

var errStoreDown = errors.New("connection refused")

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	resources []model.Resource
	err       error
}

func (m *mockResourceRepo) GetByID(_ context.Context, id string) (*model.Resource, error) {
	for i := range m.resources {
		if m.resources[i].ResourceID == id {
			return &m.resources[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResourceRepo) List(_ context.Context) ([]model.Resource, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resources, nil
}

func (m *mockResourceRepo) ListByIDs(_ context.Context, ids []string) ([]model.Resource, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Resource
	for _, r := range m.resources {
		if want[r.ResourceID] {
			out = append(out, r)
		}
	}
	return out, nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects []model.Project
	err      error
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	for i := range m.projects {
		if m.projects[i].ProjectID == id {
			return &m.projects[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) List(_ context.Context) ([]model.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.projects, nil
}

// ── Mock AllocationRepository ──

type mockAllocationRepo struct {
	byResource map[string][]model.Allocation
	failFor    map[string]bool
}

func (m *mockAllocationRepo) ListByResource(_ context.Context, resourceID string) ([]model.Allocation, error) {
	if m.failFor[resourceID] {
		return nil, errStoreDown
	}
	return m.byResource[resourceID], nil
}

// ── Mock CapacityRepository ──

type mockCapacityRepo struct {
	entries map[string][]model.CapacityCalendar
}

func (m *mockCapacityRepo) ListByResource(_ context.Context, resourceID string) ([]model.CapacityCalendar, error) {
	return m.entries[resourceID], nil
}

func (m *mockCapacityRepo) Upsert(_ context.Context, entry *model.CapacityCalendar) error {
	m.entries[entry.ResourceID] = append(m.entries[entry.ResourceID], *entry)
	return nil
}

// ── 测试数据 ──
// alice 会 Go，1 月以 120% 投入 p1；bob 会 React，无分配

type mockStore struct {
	resources   *mockResourceRepo
	projects    *mockProjectRepo
	allocations *mockAllocationRepo
	capacity    *mockCapacityRepo
}

func newMockStore() *mockStore {
	goSkill := model.Skill{SkillID: "s-go", Name: "Go"}
	reactSkill := model.Skill{SkillID: "s-react", Name: "React"}
	start, end := day(2025, 1, 1), day(2025, 3, 31)

	return &mockStore{
		resources: &mockResourceRepo{resources: []model.Resource{
			{ResourceID: "alice", Name: "Alice", Role: "Engineer", BillingRate: money(150), CostRate: money(90), Skills: []model.Skill{goSkill}},
			{ResourceID: "bob", Name: "Bob", Role: "Engineer", Skills: []model.Skill{reactSkill}},
		}},
		projects: &mockProjectRepo{projects: []model.Project{
			{
				ProjectID: "p1", Name: "Payments", Status: engine.ProjectStatusActive,
				StartDate: &start, EndDate: &end,
				Budget: money(100000), ActualCost: money(50000),
				RequiredSkills: []model.Skill{goSkill},
			},
		}},
		allocations: &mockAllocationRepo{
			byResource: map[string][]model.Allocation{
				"alice": {{AllocationID: "a1", ResourceID: "alice", ProjectID: "p1",
					StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 31), Utilization: 120}},
			},
			failFor: map[string]bool{},
		},
		capacity: &mockCapacityRepo{entries: map[string][]model.CapacityCalendar{
			"bob": {{ResourceID: "bob", Year: 2025, Month: 2, AvailableCapacity: 80, PlannedTimeOff: 10}},
		}},
	}
}

func (s *mockStore) repository() *repository.Repository {
	return &repository.Repository{
		Resource:   s.resources,
		Project:    s.projects,
		Allocation: s.allocations,
		Capacity:   s.capacity,
	}
}

// ── Stub SnapshotService ──

type stubSnapshots struct {
	snap  *engine.Snapshot
	err   error
	calls int
}

func (s *stubSnapshots) Load(_ context.Context, _ []string) (*engine.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.snap
	return &cp, nil
}

// ── 内存缓存 ──

type memCache struct {
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) error {
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.sets++
	return nil
}

// ── Stub Annotator ──

type stubAnnotator struct {
	text   string
	err    error
	topics []string
}

func (a *stubAnnotator) Annotate(_ context.Context, topic string, _ any) (string, error) {
	a.topics = append(a.topics, topic)
	return a.text, a.err
}

func dtoPeriod(start, end string) dto.PeriodRequest {
	return dto.PeriodRequest{Start: start, End: end}
}
