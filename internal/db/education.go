package db

import (
	"time"

	"gorm.io/gorm"
)

// Education 教育经历；IsCurrent 为 true 时 EndDate 约定为空（不强制）
type Education struct {
	gorm.Model
	Institution  string     `gorm:"size:200;not null"`
	Degree       string     `gorm:"size:200;not null"`
	FieldOfStudy string     `gorm:"size:200"`
	StartDate    time.Time  `gorm:"type:date;not null"`
	EndDate      *time.Time `gorm:"type:date"`
	IsCurrent    bool
	Description  string `gorm:"type:text"`
	Logo         string `gorm:"size:255"`
	Order        int    `gorm:"column:sort_order;default:0"`
}

// TableName 返回自定义表名
func (Education) TableName() string {
	return "education"
}
