package repository

import (
	"context"

	"github.com/freeup86/resource-pulse-sub001/internal/model"
)

// NewUnavailableRepository 启动时连不上数据库、但开启了样例数据降级时使用：
// 所有读取都返回 cause，由 Service 层切换到样例数据
func NewUnavailableRepository(cause error) *Repository {
	return &Repository{
		Resource:   unavailableResources{cause},
		Project:    unavailableProjects{cause},
		Allocation: unavailableAllocations{cause},
		Capacity:   unavailableCapacity{cause},
	}
}

type unavailableResources struct{ err error }

func (u unavailableResources) GetByID(context.Context, string) (*model.Resource, error) {
	return nil, u.err
}
func (u unavailableResources) List(context.Context) ([]model.Resource, error) { return nil, u.err }
func (u unavailableResources) ListByIDs(context.Context, []string) ([]model.Resource, error) {
	return nil, u.err
}

type unavailableProjects struct{ err error }

func (u unavailableProjects) GetByID(context.Context, string) (*model.Project, error) {
	return nil, u.err
}
func (u unavailableProjects) List(context.Context) ([]model.Project, error) { return nil, u.err }

type unavailableAllocations struct{ err error }

func (u unavailableAllocations) ListByResource(context.Context, string) ([]model.Allocation, error) {
	return nil, u.err
}

type unavailableCapacity struct{ err error }

func (u unavailableCapacity) ListByResource(context.Context, string) ([]model.CapacityCalendar, error) {
	return nil, u.err
}
func (u unavailableCapacity) Upsert(context.Context, *model.CapacityCalendar) error { return u.err }
