package model

import "github.com/shopspring/decimal"

// Resource 人员表 — 对应 resources
type Resource struct {
	ResourceID  string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resource_id"`
	Name        string              `gorm:"type:varchar(100);not null"                     json:"name"`
	Role        string              `gorm:"type:varchar(100)"                              json:"role,omitempty"`
	Email       string              `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	BillingRate decimal.NullDecimal `gorm:"type:numeric(10,2)"                             json:"billing_rate"` // 每小时
	CostRate    decimal.NullDecimal `gorm:"type:numeric(10,2)"                             json:"cost_rate"`
	SoftDeleteModel

	// 关联
	Skills []Skill `gorm:"many2many:resource_skills;joinForeignKey:ResourceID;joinReferences:SkillID" json:"skills,omitempty"`
}

// TableName 指定表名
func (Resource) TableName() string { return "resources" }
