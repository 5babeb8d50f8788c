package db

import "gorm.io/gorm"

// ContactMessage stores messages submitted via the public contact form.
// Only IsRead changes after creation.
type ContactMessage struct {
	gorm.Model
	Name    string `gorm:"size:100;not null"`
	Email   string `gorm:"size:254;not null"`
	Subject string `gorm:"size:200;not null"`
	Message string `gorm:"type:text;not null"`
	IsRead  bool   `gorm:"index"`
}
