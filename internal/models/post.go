package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a user's text post, optionally attached to a Media track.
// User and Media are references resolved on read, never stored snapshots.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text;not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	MediaID *uint  `gorm:"index" json:"media_id,omitempty"`
	Media   *Media `gorm:"foreignKey:MediaID" json:"media,omitempty"`
	// LikesCount is the size of the liked-by set; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked indicates whether the requesting user is in the liked-by set (computed)
	Liked     bool           `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
