package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(feedback *model.Feedback) error {
	if err := r.db.Create(feedback).Error; err != nil {
		return fmt.Errorf("create feedback failed: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) ListBySessionID(sessionID uint) ([]model.Feedback, error) {
	var list []model.Feedback
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list feedback failed: %w", err)
	}
	return list, nil
}
