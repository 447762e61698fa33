package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/freeup86/resource-pulse-sub001/internal/model"
)

// AllocationRepository 分配数据访问接口（只读：引擎从不修改分配）
type AllocationRepository interface {
	ListByResource(ctx context.Context, resourceID string) ([]model.Allocation, error)
}

type allocationRepo struct {
	db *gorm.DB
}

// NewAllocationRepo 创建 AllocationRepository 实例
func NewAllocationRepo(db *gorm.DB) AllocationRepository {
	return &allocationRepo{db: db}
}

// ListByResource 某人的全部分配（含历史），经验评分依赖已结束的分配
func (r *allocationRepo) ListByResource(ctx context.Context, resourceID string) ([]model.Allocation, error) {
	var list []model.Allocation
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("start_date ASC, allocation_id ASC").
		Find(&list).Error
	return list, err
}
