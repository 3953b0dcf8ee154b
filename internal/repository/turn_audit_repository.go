package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type TurnAuditRepository struct {
	db *gorm.DB
}

func NewTurnAuditRepository(db *gorm.DB) *TurnAuditRepository {
	return &TurnAuditRepository{db: db}
}

func (r *TurnAuditRepository) Create(audit *model.TurnAudit) error {
	if err := r.db.Create(audit).Error; err != nil {
		return fmt.Errorf("create turn audit failed: %w", err)
	}
	return nil
}

func (r *TurnAuditRepository) ListBySessionID(sessionID uint) ([]model.TurnAudit, error) {
	var list []model.TurnAudit
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list turn audits failed: %w", err)
	}
	return list, nil
}
