package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

// RecurrenceRuleRepository handles CRUD for recurrence rules.
type RecurrenceRuleRepository struct {
	db *gorm.DB
}

func NewRecurrenceRuleRepository(db *gorm.DB) *RecurrenceRuleRepository {
	return &RecurrenceRuleRepository{db: db}
}

func (r *RecurrenceRuleRepository) Create(ctx context.Context, rule *model.RecurrenceRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("create recurrence rule: %w", err)
	}
	return nil
}

func (r *RecurrenceRuleRepository) FindByID(ctx context.Context, userID, ruleID uuid.UUID) (*model.RecurrenceRule, error) {
	var rule model.RecurrenceRule
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, ruleID).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RecurrenceRuleRepository) Delete(ctx context.Context, userID, ruleID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, ruleID).Delete(&model.RecurrenceRule{})
	if res.Error != nil {
		return false, fmt.Errorf("delete recurrence rule: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
