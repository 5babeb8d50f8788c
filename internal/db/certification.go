package db

import (
	"time"

	"gorm.io/gorm"
)

// Certification is a professional certificate shown on the about page.
type Certification struct {
	gorm.Model
	Name          string     `gorm:"size:200;not null"`
	Issuer        string     `gorm:"size:200;not null"`
	IssueDate     time.Time  `gorm:"type:date;not null"`
	ExpiryDate    *time.Time `gorm:"type:date"`
	CredentialID  string     `gorm:"size:200"`
	CredentialURL string     `gorm:"size:255"`
	Image         string     `gorm:"size:255"`
	Order         int        `gorm:"column:sort_order;default:0"`
}
