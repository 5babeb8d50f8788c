package db

import (
	"strings"

	"gorm.io/gorm"
)

// Project represents a portfolio project addressed publicly by its slug.
type Project struct {
	gorm.Model
	Title            string `gorm:"size:200;not null"`
	Slug             string `gorm:"size:200;uniqueIndex;not null"`
	ShortDescription string `gorm:"size:300"`
	Description      string `gorm:"type:text"`
	Image            string `gorm:"size:255"`
	Technologies     string `gorm:"size:500"`
	LiveURL          string `gorm:"size:255"`
	GithubURL        string `gorm:"size:255"`
	IsFeatured       bool   `gorm:"index"`
	IsActive         bool   `gorm:"index"`
	Order            int    `gorm:"column:sort_order;default:0"`
}

// TechList splits the comma separated technologies, dropping blanks.
func (p Project) TechList() []string {
	parts := strings.Split(p.Technologies, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
