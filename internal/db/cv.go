package db

import (
	"time"

	"gorm.io/gorm"
)

// DefaultCVTitle 未填写标题时使用
const DefaultCVTitle = "Resume"

// CV 简历文件记录，同一时刻最多一份 IsActive=true
// File 为媒体库中的相对 key
type CV struct {
	gorm.Model
	Title      string    `gorm:"size:200;not null"`
	File       string    `gorm:"size:255;not null"`
	IsActive   bool      `gorm:"not null"`
	UploadedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName 自定义表名以保持命名一致。
func (CV) TableName() string {
	return "cvs"
}
