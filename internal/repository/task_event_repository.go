package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

// TaskEventRepository stores outbound lifecycle events for replay.
type TaskEventRepository struct {
	db *gorm.DB
}

func NewTaskEventRepository(db *gorm.DB) *TaskEventRepository {
	return &TaskEventRepository{db: db}
}

func (r *TaskEventRepository) Create(ctx context.Context, event *model.TaskEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create task event: %w", err)
	}
	return nil
}

func (r *TaskEventRepository) MarkPublished(ctx context.Context, eventID uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&model.TaskEvent{}).
		Where("id = ?", eventID).
		Update("published", true).Error
	if err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}

// ListUnpublished returns events whose broker publish failed, oldest first.
func (r *TaskEventRepository) ListUnpublished(ctx context.Context, limit int) ([]model.TaskEvent, error) {
	var events []model.TaskEvent
	err := r.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
