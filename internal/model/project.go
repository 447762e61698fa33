package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project 项目表 — 对应 projects
type Project struct {
	ProjectID   string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	Name        string              `gorm:"type:varchar(200);not null"                     json:"name"`
	Description string              `gorm:"type:text"                                      json:"description,omitempty"`
	Client      string              `gorm:"type:varchar(200)"                              json:"client,omitempty"`
	Status      string              `gorm:"type:varchar(20);not null;default:'Planning'"   json:"status"` // Active | Planning | On Hold | Completed
	StartDate   *time.Time          `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate     *time.Time          `gorm:"type:date"                                      json:"end_date,omitempty"`
	Budget      decimal.NullDecimal `gorm:"type:numeric(14,2)"                             json:"budget"`
	ActualCost  decimal.NullDecimal `gorm:"type:numeric(14,2)"                             json:"actual_cost"`
	SoftDeleteModel

	// 关联
	RequiredSkills []Skill `gorm:"many2many:project_skills;joinForeignKey:ProjectID;joinReferences:SkillID" json:"required_skills,omitempty"`
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }
