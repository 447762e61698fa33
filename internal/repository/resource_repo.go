package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/freeup86/resource-pulse-sub001/internal/model"
)

// ResourceRepository 人员数据访问接口
type ResourceRepository interface {
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	List(ctx context.Context) ([]model.Resource, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Resource, error)
}

type resourceRepo struct {
	db *gorm.DB
}

// NewResourceRepo 创建 ResourceRepository 实例
func NewResourceRepo(db *gorm.DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	var res model.Resource
	err := r.db.WithContext(ctx).
		Preload("Skills").
		Where("resource_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepo) List(ctx context.Context) ([]model.Resource, error) {
	var list []model.Resource
	err := r.db.WithContext(ctx).
		Preload("Skills").
		Order("name ASC, resource_id ASC").
		Find(&list).Error
	return list, err
}

func (r *resourceRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []model.Resource
	err := r.db.WithContext(ctx).
		Preload("Skills").
		Where("resource_id IN ?", ids).
		Order("name ASC, resource_id ASC").
		Find(&list).Error
	return list, err
}
