package model

import "time"

// Session scopes one conversation. PublicID is the client-facing identifier
// carried on the websocket; the row ID stays internal.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PublicID  string    `gorm:"size:36;not null;uniqueIndex" json:"public_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
