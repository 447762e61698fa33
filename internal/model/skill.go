package model

// Skill 技能表 — 对应 skills
type Skill struct {
	SkillID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"skill_id"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex"          json:"name"`
	Category string `gorm:"type:varchar(50)"                               json:"category,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Skill) TableName() string { return "skills" }
