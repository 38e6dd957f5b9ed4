package models

import (
	"time"

	"gorm.io/gorm"
)

// Media is a track that posts can be attached to. Read-only to this service.
type Media struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;index" json:"name"`
	Artist    string         `json:"artist"`
	URL       string         `json:"url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName keeps the plural form stable regardless of the inflection rules.
func (Media) TableName() string {
	return "media"
}
