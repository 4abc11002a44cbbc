package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

// ReminderRepository handles CRUD and due-queries for reminders. A reminder
// has no owner column of its own; ownership checks join through tasks.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// ListByOwner returns reminders belonging to the user's tasks, optionally
// filtered to one task, ordered by remind_at ascending.
func (r *ReminderRepository) ListByOwner(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID) ([]model.Reminder, error) {
	q := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Joins("JOIN tasks ON tasks.id = reminders.task_id").
		Where("tasks.user_id = ?", userID)
	if taskID != nil {
		q = q.Where("reminders.task_id = ?", *taskID)
	}
	var reminders []model.Reminder
	if err := q.Order("reminders.remind_at ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) FindByOwner(ctx context.Context, userID, reminderID uuid.UUID) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Joins("JOIN tasks ON tasks.id = reminders.task_id").
		Where("reminders.id = ? AND tasks.user_id = ?", reminderID, userID).
		First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *ReminderRepository) Delete(ctx context.Context, reminderID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", reminderID).Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) CountForTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Reminder{}).Where("task_id = ?", taskID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return count, nil
}

// DeleteUnsentForTask removes every unsent reminder for the task. Sent
// reminders stay as history.
func (r *ReminderRepository) DeleteUnsentForTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("task_id = ? AND sent = ?", taskID, false).Delete(&model.Reminder{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete unsent reminders: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListDue returns every reminder across all users with remind_at <= now and
// sent = false, ordered by remind_at ascending. Called by the dispatch loop.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Where("remind_at <= ? AND sent = ?", now, false).
		Order("remind_at ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkSent sets sent and sent_at. A second call is a no-op, as is a call for
// a reminder that no longer exists.
func (r *ReminderRepository) MarkSent(ctx context.Context, reminderID uuid.UUID, sentAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ? AND sent = ?", reminderID, false).
		Updates(map[string]interface{}{"sent": true, "sent_at": sentAt}).Error
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}
