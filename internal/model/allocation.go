package model

import "time"

// Allocation 分配表 — 对应 allocations
// 同一人员可有多条时间重叠的分配；end_date >= start_date 由数据库约束保证
type Allocation struct {
	AllocationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"allocation_id"`
	ResourceID   string    `gorm:"type:uuid;not null;index"                       json:"resource_id"`
	ProjectID    string    `gorm:"type:uuid;not null;index"                       json:"project_id"`
	StartDate    time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null"                             json:"end_date"`
	Utilization  float64   `gorm:"type:numeric(6,2);not null"                     json:"utilization"` // 百分比，可超过 100
	Note         string    `gorm:"type:text"                                      json:"note,omitempty"`
	SoftDeleteModel

	// 关联
	Resource *Resource `gorm:"foreignKey:ResourceID;references:ResourceID" json:"resource,omitempty"`
	Project  *Project  `gorm:"foreignKey:ProjectID;references:ProjectID"   json:"project,omitempty"`
}

// TableName 指定表名
func (Allocation) TableName() string { return "allocations" }

// CapacityCalendar 容量日历表 — 对应 capacity_calendar，(resource_id, year, month) 唯一
type CapacityCalendar struct {
	ResourceID        string  `gorm:"type:uuid;primaryKey"                     json:"resource_id"`
	Year              int     `gorm:"type:smallint;primaryKey"                 json:"year"`
	Month             int     `gorm:"type:smallint;primaryKey"                 json:"month"` // 1-12
	AvailableCapacity float64 `gorm:"type:numeric(5,2);not null;default:100"   json:"available_capacity"`
	PlannedTimeOff    float64 `gorm:"type:numeric(5,2);not null;default:0"     json:"planned_time_off"`
	BaseModel
}

// TableName 指定表名
func (CapacityCalendar) TableName() string { return "capacity_calendar" }
