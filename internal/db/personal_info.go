package db

import "gorm.io/gorm"

// PersonalInfoSlot 是单例行固定占用的槽位值，唯一索引保证最多一行。
const PersonalInfoSlot = 1

// PersonalInfo 保存站点主人的个人信息，全表最多一行
// ProfilePhoto/Favicon 存储媒体库中的相对 key
type PersonalInfo struct {
	gorm.Model
	Slot           uint   `gorm:"uniqueIndex;not null;default:1"`
	Name           string `gorm:"size:100;not null"`
	Title          string `gorm:"size:200"`
	Email          string `gorm:"size:254"`
	Phone          string `gorm:"size:50"`
	Location       string `gorm:"size:100"`
	Bio            string `gorm:"type:text"`
	AboutText      string `gorm:"type:text"`
	ResumeHeadline string `gorm:"size:300"`
	ProfilePhoto   string `gorm:"size:255"`
	Favicon        string `gorm:"size:255"`
}

// TableName 返回自定义表名
func (PersonalInfo) TableName() string {
	return "personal_info"
}
