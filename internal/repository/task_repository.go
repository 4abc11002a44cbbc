package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

// TaskRepository handles CRUD for tasks, always scoped by owner.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDUnscoped looks up a task by id alone. Used by the dispatch loop,
// which runs without a user context.
func (r *TaskRepository) FindByIDUnscoped(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns the user's tasks. completed filters by completion status when
// non-nil. Results are ordered by creation time, newest first.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, completed *bool) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if completed != nil {
		q = q.Where("is_completed = ?", *completed)
	}
	var tasks []model.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) MarkCompleted(ctx context.Context, task *model.Task, completedAt time.Time) error {
	task.IsCompleted = true
	task.UpdatedAt = completedAt
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountCompletedInSeries counts completed instances across the whole series
// identified by ruleID.
func (r *TaskRepository) CountCompletedInSeries(ctx context.Context, userID, ruleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND recurrence_rule_id = ? AND is_completed = ?", userID, ruleID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count completed in series: %w", err)
	}
	return count, nil
}

// CountInSeries counts every instance, completed or not, sharing ruleID.
func (r *TaskRepository) CountInSeries(ctx context.Context, ruleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("recurrence_rule_id = ?", ruleID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count in series: %w", err)
	}
	return count, nil
}

// DeletePendingInSeries removes every not-yet-completed instance of the
// series. Completed history is never touched.
func (r *TaskRepository) DeletePendingInSeries(ctx context.Context, userID, ruleID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recurrence_rule_id = ? AND is_completed = ?", userID, ruleID, false).
		Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete pending in series: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpdatePendingInSeries applies the given column updates to every
// not-yet-completed instance of the series.
func (r *TaskRepository) UpdatePendingInSeries(ctx context.Context, userID, ruleID uuid.UUID, updates map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND recurrence_rule_id = ? AND is_completed = ?", userID, ruleID, false).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update pending in series: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ReplaceTags overwrites the task's tag associations.
func (r *TaskRepository) ReplaceTags(ctx context.Context, task *model.Task, tags []model.Tag) error {
	if err := r.db.WithContext(ctx).Model(task).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("replace task tags: %w", err)
	}
	return nil
}

// ListTags loads the tags associated with a task.
func (r *TaskRepository) ListTags(ctx context.Context, task *model.Task) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Model(task).Association("Tags").Find(&tags); err != nil {
		return nil, fmt.Errorf("list task tags: %w", err)
	}
	return tags, nil
}
