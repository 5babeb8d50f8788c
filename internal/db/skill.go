package db

import "gorm.io/gorm"

// SkillCategory 技能分组（前端、后端、工具等），拥有其下的 Skill
type SkillCategory struct {
	gorm.Model
	Name   string  `gorm:"size:100;not null"`
	Icon   string  `gorm:"size:50"`
	Order  int     `gorm:"column:sort_order;default:0"`
	Skills []Skill `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName 返回自定义表名
func (SkillCategory) TableName() string {
	return "skill_categories"
}

const (
	// DefaultSkillProficiency 新建技能时的默认熟练度
	DefaultSkillProficiency = 75
	// DefaultSkillColor 新建技能时的默认颜色
	DefaultSkillColor = "#6366f1"
)

// Skill 单个技能，Proficiency 取值 0-100
type Skill struct {
	gorm.Model
	Name        string        `gorm:"size:100;not null"`
	CategoryID  uint          `gorm:"not null;index"`
	Category    SkillCategory `gorm:"foreignKey:CategoryID"`
	Proficiency int           `gorm:"not null"`
	Icon        string        `gorm:"size:100"`
	Color       string        `gorm:"size:20"`
	Order       int           `gorm:"column:sort_order;default:0"`
	IsFeatured  bool          `gorm:"index"`
}

// TableName 返回自定义表名
func (Skill) TableName() string {
	return "skills"
}

// ClampProficiency 将熟练度限制在 [0,100]
func ClampProficiency(value int) int {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}
