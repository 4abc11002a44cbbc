package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// RuleInput carries the fields needed to create a recurrence rule.
type RuleInput struct {
	Frequency string
	Interval  int
	EndType   string
	EndCount  *int
	EndDate   *time.Time
}

// RecurrenceService manages recurrence rules and series lifecycle: advancing
// a series on completion and bulk operations over pending instances. Every
// operation is scoped to the owning user.
type RecurrenceService struct {
	ruleRepo *repository.RecurrenceRuleRepository
	taskRepo *repository.TaskRepository
}

func NewRecurrenceService(ruleRepo *repository.RecurrenceRuleRepository, taskRepo *repository.TaskRepository) *RecurrenceService {
	return &RecurrenceService{ruleRepo: ruleRepo, taskRepo: taskRepo}
}

func (s *RecurrenceService) CreateRule(ctx context.Context, userID uuid.UUID, input RuleInput) (*model.RecurrenceRule, error) {
	if input.Interval < 1 {
		return nil, ErrInvalidInterval
	}

	rule := model.RecurrenceRule{
		UserID:    userID,
		Frequency: input.Frequency,
		Interval:  input.Interval,
		EndType:   input.EndType,
		EndCount:  input.EndCount,
		EndDate:   input.EndDate,
	}
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	if err := s.ruleRepo.Create(ctx, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *RecurrenceService) GetRule(ctx context.Context, userID, ruleID uuid.UUID) (*model.RecurrenceRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, userID, ruleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
}

// DeleteRule removes a rule if owned by the user. The caller is responsible
// for making sure no task still references it; a task created concurrently
// with the deletion can keep a dangling reference.
func (s *RecurrenceService) DeleteRule(ctx context.Context, userID, ruleID uuid.UUID) (bool, error) {
	return s.ruleRepo.Delete(ctx, userID, ruleID)
}

// GetCompletedCount counts completed instances across the whole series the
// task belongs to. Zero for non-recurring tasks.
func (s *RecurrenceService) GetCompletedCount(ctx context.Context, userID uuid.UUID, task *model.Task) (int, error) {
	if task.RecurrenceRuleID == nil {
		return 0, nil
	}
	count, err := s.taskRepo.CountCompletedInSeries(ctx, userID, *task.RecurrenceRuleID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// CreateNextInstance synthesizes the next task in the series after the given
// task was completed, using the completed task's due date as the anchor.
// Returns nil when the series has ended. Tag associations are not copied
// here; that is the caller's responsibility.
func (s *RecurrenceService) CreateNextInstance(ctx context.Context, userID uuid.UUID, task *model.Task, rule *model.RecurrenceRule) (*model.Task, error) {
	completedCount, err := s.GetCompletedCount(ctx, userID, task)
	if err != nil {
		return nil, err
	}
	// The just-completed instance counts toward the total.
	completedCount++

	nextDue := CalculateNextOccurrence(rule, task.Due, completedCount)
	if nextDue == nil {
		return nil, nil
	}

	next := model.Task{
		UserID:           userID,
		Title:            task.Title,
		Description:      task.Description,
		Priority:         task.Priority,
		IsCompleted:      false,
		Due:              nextDue,
		RecurrenceRuleID: task.RecurrenceRuleID,
		ParentTaskID:     &task.ID,
	}
	if err := s.taskRepo.Create(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// DeleteFutureInstances removes every pending instance of the series. Future
// means not completed, regardless of due date; completed history stays.
func (s *RecurrenceService) DeleteFutureInstances(ctx context.Context, userID uuid.UUID, task *model.Task) (int, error) {
	if task.RecurrenceRuleID == nil {
		return 0, nil
	}
	count, err := s.taskRepo.DeletePendingInSeries(ctx, userID, *task.RecurrenceRuleID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// SeriesUpdate carries the optional fields applied by UpdateFutureInstances.
type SeriesUpdate struct {
	Title       *string
	Description *string
	Priority    *int
}

// UpdateFutureInstances applies the provided fields to every pending
// instance of the series and reports how many rows changed.
func (s *RecurrenceService) UpdateFutureInstances(ctx context.Context, userID uuid.UUID, task *model.Task, update SeriesUpdate) (int, error) {
	if task.RecurrenceRuleID == nil {
		return 0, nil
	}

	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Priority != nil {
		updates["priority"] = *update.Priority
	}
	if len(updates) == 0 {
		return 0, nil
	}

	count, err := s.taskRepo.UpdatePendingInSeries(ctx, userID, *task.RecurrenceRuleID, updates)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
