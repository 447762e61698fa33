package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/freeup86/resource-pulse-sub001/internal/model"
)

// CapacityRepository 容量日历数据访问接口
type CapacityRepository interface {
	ListByResource(ctx context.Context, resourceID string) ([]model.CapacityCalendar, error)
	Upsert(ctx context.Context, entry *model.CapacityCalendar) error
}

type capacityRepo struct {
	db *gorm.DB
}

// NewCapacityRepo 创建 CapacityRepository 实例
func NewCapacityRepo(db *gorm.DB) CapacityRepository {
	return &capacityRepo{db: db}
}

func (r *capacityRepo) ListByResource(ctx context.Context, resourceID string) ([]model.CapacityCalendar, error) {
	var list []model.CapacityCalendar
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("year ASC, month ASC").
		Find(&list).Error
	return list, err
}

// Upsert 按 (resource_id, year, month) 覆盖写入
func (r *capacityRepo) Upsert(ctx context.Context, entry *model.CapacityCalendar) error {
	return r.db.WithContext(ctx).Save(entry).Error
}
