package model

import "time"

// Document holds the extracted plain text of one uploaded file. Content may
// be empty when extraction produced nothing; the record still exists so the
// upload remains visible.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
