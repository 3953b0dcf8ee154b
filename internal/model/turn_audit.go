package model

import "time"

// TurnAudit records one resolved chat turn for offline analysis: the
// question, the delivered answer and how many draft attempts it took.
// Approved is false when the turn ended in the fallback answer.
type TurnAudit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Attempts  int       `gorm:"not null" json:"attempts"`
	Approved  bool      `gorm:"not null" json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}
