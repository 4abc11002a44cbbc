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

// MaxRemindersPerTask bounds how many reminders a task may carry at once.
// Enforced at creation time, not by a database constraint.
const MaxRemindersPerTask = 3

// ReminderService manages reminder CRUD and the queries used by the dispatch
// loop. A reminder's effective owner is its task's owner, so ownership checks
// join through tasks.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	taskRepo     *repository.TaskRepository
}

func NewReminderService(reminderRepo *repository.ReminderRepository, taskRepo *repository.TaskRepository) *ReminderService {
	return &ReminderService{reminderRepo: reminderRepo, taskRepo: taskRepo}
}

func (s *ReminderService) ownedTask(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

// Create validates and persists a reminder: the task must be owned by the
// user, remindAt must be strictly in the future, and the task must currently
// carry fewer than MaxRemindersPerTask reminders.
func (s *ReminderService) Create(ctx context.Context, userID, taskID uuid.UUID, remindAt time.Time, message string) (*model.Reminder, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	if !remindAt.After(time.Now().UTC()) {
		return nil, ErrReminderInPast
	}

	count, err := s.reminderRepo.CountForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if count >= MaxRemindersPerTask {
		return nil, ErrReminderLimit
	}

	reminder := model.Reminder{
		TaskID:   taskID,
		RemindAt: remindAt,
		Message:  message,
	}
	if err := s.reminderRepo.Create(ctx, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// List returns the user's reminders ordered by remind_at, optionally limited
// to one task.
func (s *ReminderService) List(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID) ([]model.Reminder, error) {
	return s.reminderRepo.ListByOwner(ctx, userID, taskID)
}

func (s *ReminderService) Get(ctx context.Context, userID, reminderID uuid.UUID) (*model.Reminder, error) {
	reminder, err := s.reminderRepo.FindByOwner(ctx, userID, reminderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return reminder, nil
}

func (s *ReminderService) Delete(ctx context.Context, userID, reminderID uuid.UUID) (bool, error) {
	_, err := s.Get(ctx, userID, reminderID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.reminderRepo.Delete(ctx, reminderID); err != nil {
		return false, err
	}
	return true, nil
}

// CancelAllForTask deletes every unsent reminder for the task, called when
// the task is completed. Sent reminders are kept as history.
func (s *ReminderService) CancelAllForTask(ctx context.Context, userID, taskID uuid.UUID) (int, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return 0, err
	}
	count, err := s.reminderRepo.DeleteUnsentForTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// DueReminders returns due, unsent reminders across all users, ordered by
// remind_at. Intentionally unscoped; used only by the dispatch loop.
func (s *ReminderService) DueReminders(ctx context.Context) ([]model.Reminder, error) {
	return s.reminderRepo.ListDue(ctx, time.Now().UTC())
}

// MarkSent flags a reminder as sent. Idempotent, and silently ignores
// reminders that no longer exist.
func (s *ReminderService) MarkSent(ctx context.Context, reminderID uuid.UUID) error {
	return s.reminderRepo.MarkSent(ctx, reminderID, time.Now().UTC())
}
