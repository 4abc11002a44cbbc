package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskhub/internal/event"
	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
	"taskhub/internal/service"
)

// env bundles a fresh in-memory database with the full service stack.
type env struct {
	db         *gorm.DB
	taskRepo   *repository.TaskRepository
	tags       *service.TagService
	recurrence *service.RecurrenceService
	reminders  *service.ReminderService
	tasks      *service.TaskService
	registry   *notify.Registry
	dispatcher *service.Dispatcher
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A fresh pooled connection would see an empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ruleRepo := repository.NewRecurrenceRuleRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	eventRepo := repository.NewTaskEventRepository(db)

	eventSvc := event.NewService(eventRepo, event.NewPublisher("", "task-events"), "/taskhub/test")
	tags := service.NewTagService(tagRepo, taskRepo)
	recurrence := service.NewRecurrenceService(ruleRepo, taskRepo)
	reminders := service.NewReminderService(reminderRepo, taskRepo)
	tasks := service.NewTaskService(taskRepo, tags, reminders, recurrence, eventSvc)

	registry := notify.NewRegistry()
	dispatcher := service.NewDispatcher(reminders, taskRepo, registry)

	return &env{
		db:         db,
		taskRepo:   taskRepo,
		tags:       tags,
		recurrence: recurrence,
		reminders:  reminders,
		tasks:      tasks,
		registry:   registry,
		dispatcher: dispatcher,
	}
}

func (e *env) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test User"}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *env) createTask(t *testing.T, userID uuid.UUID, title string) *model.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), userID, service.TaskInput{Title: title})
	require.NoError(t, err)
	return task
}

// insertReminder bypasses creation-time validation so tests can plant
// already-due reminders.
func (e *env) insertReminder(t *testing.T, taskID uuid.UUID, remindAt time.Time, message string) *model.Reminder {
	t.Helper()
	reminder := &model.Reminder{TaskID: taskID, RemindAt: remindAt, Message: message}
	require.NoError(t, e.db.Create(reminder).Error)
	return reminder
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }
