package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Resource   ResourceRepository
	Project    ProjectRepository
	Allocation AllocationRepository
	Capacity   CapacityRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Resource:   NewResourceRepo(db),
		Project:    NewProjectRepo(db),
		Allocation: NewAllocationRepo(db),
		Capacity:   NewCapacityRepo(db),
	}
}
