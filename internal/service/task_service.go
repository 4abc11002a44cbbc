package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/event"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Priority    int
	Due         *time.Time
	TagIDs      []uuid.UUID
	Recurrence  *RuleInput
}

// TaskPatch carries optional fields for partial updates. UpdateSeries fans
// the title/description/priority changes out to every pending instance of
// the task's series.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *int
	Due          *time.Time
	UpdateSeries bool
}

// TaskService is the task CRUD surface. On completion it orchestrates the
// series advance: cancel unsent reminders, create the next instance, copy
// tags forward, publish the lifecycle event.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	tags       *TagService
	reminders  *ReminderService
	recurrence *RecurrenceService
	events     *event.Service
}

func NewTaskService(taskRepo *repository.TaskRepository, tags *TagService, reminders *ReminderService, recurrence *RecurrenceService, events *event.Service) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		tags:       tags,
		reminders:  reminders,
		recurrence: recurrence,
		events:     events,
	}
}

// Create persists a task, optionally creating an inline recurrence rule and
// attaching tags.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Priority == 0 {
		input.Priority = model.PriorityMedium
	}

	var ruleID *uuid.UUID
	if input.Recurrence != nil {
		rule, err := s.recurrence.CreateRule(ctx, userID, *input.Recurrence)
		if err != nil {
			return nil, err
		}
		ruleID = &rule.ID
	}

	task := model.Task{
		UserID:           userID,
		Title:            input.Title,
		Description:      input.Description,
		Priority:         input.Priority,
		Due:              input.Due,
		RecurrenceRuleID: ruleID,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	if len(input.TagIDs) > 0 {
		tags, err := s.tags.tagRepo.FindByIDs(ctx, userID, input.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := s.taskRepo.ReplaceTags(ctx, &task, tags); err != nil {
			return nil, err
		}
	}

	names, _ := s.tags.ListForTask(ctx, &task)
	s.events.TaskCreated(ctx, &task, names)

	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// List returns the user's tasks, optionally filtered by completion status.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID, completed *bool) ([]model.Task, error) {
	return s.taskRepo.List(ctx, userID, completed)
}

// Update applies a partial update. With UpdateSeries set, the changed
// title/description/priority also propagate to every pending instance of
// the series; completed history is untouched.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, patch TaskPatch) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Due != nil {
		task.Due = patch.Due
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	if patch.UpdateSeries && task.RecurrenceRuleID != nil {
		_, err := s.recurrence.UpdateFutureInstances(ctx, userID, task, SeriesUpdate{
			Title:       patch.Title,
			Description: patch.Description,
			Priority:    patch.Priority,
		})
		if err != nil {
			return nil, err
		}
	}

	names, _ := s.tags.ListForTask(ctx, task)
	s.events.TaskUpdated(ctx, task, names)

	return task, nil
}

// Delete removes a task. With deleteSeries set it removes every pending
// instance of the task's series first, then drops the rule once nothing
// references it anymore.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID, deleteSeries bool) error {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if deleteSeries && task.RecurrenceRuleID != nil {
		if _, err := s.recurrence.DeleteFutureInstances(ctx, userID, task); err != nil {
			return err
		}
	}

	// The task itself may already be gone if it was pending and part of the
	// series sweep above.
	if _, err := s.taskRepo.Delete(ctx, userID, taskID); err != nil {
		return err
	}

	if deleteSeries && task.RecurrenceRuleID != nil {
		remaining, err := s.taskRepo.CountInSeries(ctx, *task.RecurrenceRuleID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if _, err := s.recurrence.DeleteRule(ctx, userID, *task.RecurrenceRuleID); err != nil {
				return err
			}
		}
	}

	s.events.TaskDeleted(ctx, task)
	return nil
}

// CompleteResult reports a completion and, for recurring tasks whose series
// continues, the freshly created next instance.
type CompleteResult struct {
	Task         *model.Task
	NextInstance *model.Task
}

// Complete marks the task completed, cancels its unsent reminders, and for a
// recurring task asks the series lifecycle for the next instance, copying
// tag associations forward onto it.
func (s *TaskService) Complete(ctx context.Context, userID, taskID uuid.UUID) (*CompleteResult, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.MarkCompleted(ctx, task, time.Now().UTC()); err != nil {
		return nil, err
	}

	if _, err := s.reminders.CancelAllForTask(ctx, userID, taskID); err != nil {
		log.Printf("task: cancel reminders for %s: %v", taskID, err)
	}

	result := &CompleteResult{Task: task}

	if task.RecurrenceRuleID != nil {
		rule, err := s.recurrence.GetRule(ctx, userID, *task.RecurrenceRuleID)
		switch {
		case errors.Is(err, ErrNotFound):
			// Rule was deleted out from under the series; the chain simply
			// stops here.
		case err != nil:
			return nil, err
		default:
			next, err := s.recurrence.CreateNextInstance(ctx, userID, task, rule)
			if err != nil {
				return nil, err
			}
			if next != nil {
				if err := s.tags.CopyTags(ctx, task, next); err != nil {
					log.Printf("task: copy tags to %s: %v", next.ID, err)
				}
				result.NextInstance = next
			}
		}
	}

	names, _ := s.tags.ListForTask(ctx, task)
	var nextID *uuid.UUID
	if result.NextInstance != nil {
		nextID = &result.NextInstance.ID
	}
	s.events.TaskCompleted(ctx, task, names, nextID)

	return result, nil
}
