package db

import "gorm.io/gorm"

// SocialLink 用于保存前台展示的社交平台链接
// Order 值越小越靠前，IsActive=false 的条目不会出现在公开接口中
type SocialLink struct {
	gorm.Model
	Platform string `gorm:"size:50;not null;index"`
	URL      string `gorm:"size:255;not null"`
	Icon     string `gorm:"size:50"`
	Order    int    `gorm:"column:sort_order;default:0"`
	IsActive bool
}

// TableName 返回自定义表名，避免冲突
func (SocialLink) TableName() string {
	return "social_links"
}

// SocialPlatform pairs a platform key with its display name.
type SocialPlatform struct {
	Key     string
	Display string
}

// SocialPlatforms lists the accepted platform keys in display order.
var SocialPlatforms = []SocialPlatform{
	{Key: "github", Display: "GitHub"},
	{Key: "linkedin", Display: "LinkedIn"},
	{Key: "twitter", Display: "Twitter/X"},
	{Key: "instagram", Display: "Instagram"},
	{Key: "facebook", Display: "Facebook"},
	{Key: "youtube", Display: "YouTube"},
	{Key: "dribbble", Display: "Dribbble"},
	{Key: "behance", Display: "Behance"},
	{Key: "medium", Display: "Medium"},
	{Key: "dev", Display: "Dev.to"},
	{Key: "other", Display: "Other"},
}

// IsSocialPlatform reports whether key is a known platform.
func IsSocialPlatform(key string) bool {
	for _, p := range SocialPlatforms {
		if p.Key == key {
			return true
		}
	}
	return false
}

// PlatformDisplay returns the human readable platform name.
func (l SocialLink) PlatformDisplay() string {
	for _, p := range SocialPlatforms {
		if p.Key == l.Platform {
			return p.Display
		}
	}
	return l.Platform
}
