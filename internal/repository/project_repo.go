package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/freeup86/resource-pulse-sub001/internal/model"
)

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("RequiredSkills").
		Where("project_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List 含已完结项目：经验评分需要历史项目的名称与描述
func (r *projectRepo) List(ctx context.Context) ([]model.Project, error) {
	var list []model.Project
	err := r.db.WithContext(ctx).
		Preload("RequiredSkills").
		Order("start_date ASC NULLS LAST, project_id ASC").
		Find(&list).Error
	return list, err
}
