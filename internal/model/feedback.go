package model

import "time"

const (
	RatingGood = "good"
	RatingBad  = "bad"
)

// Feedback is a user's rating of a delivered assistant message. It is stored
// for later analysis only and plays no part in answer generation.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index:idx_feedback_session_rating" json:"session_id"`
	MessageID uint      `gorm:"not null;index" json:"message_id"`
	Rating    string    `gorm:"size:8;not null;index:idx_feedback_session_rating" json:"rating"`
	Comments  string    `gorm:"type:text" json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}
