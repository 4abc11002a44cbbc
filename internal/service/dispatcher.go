package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
)

// Dispatcher delivers due reminders to live connections. One cycle queries
// due, unsent reminders in remind_at order, pushes each through the registry
// to the owning task's user, and marks it sent whether or not the user was
// online. Delivery is at-most-once by design: an offline user misses the
// notification, nothing is retried.
type Dispatcher struct {
	reminders *ReminderService
	taskRepo  *repository.TaskRepository
	registry  *notify.Registry
}

func NewDispatcher(reminders *ReminderService, taskRepo *repository.TaskRepository, registry *notify.Registry) *Dispatcher {
	return &Dispatcher{reminders: reminders, taskRepo: taskRepo, registry: registry}
}

// RunCycle executes one dispatch pass. Errors on individual reminders are
// logged and contained; an error return means the due query itself failed
// and the cycle did nothing.
func (d *Dispatcher) RunCycle(ctx context.Context) error {
	due, err := d.reminders.DueReminders(ctx)
	if err != nil {
		return fmt.Errorf("query due reminders: %w", err)
	}

	for _, reminder := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.process(ctx, reminder); err != nil {
			log.Printf("dispatch: reminder %s: %v", reminder.ID, err)
		}
	}
	return nil
}

func (d *Dispatcher) process(ctx context.Context, reminder model.Reminder) error {
	task, err := d.taskRepo.FindByIDUnscoped(ctx, reminder.TaskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Orphaned reminder, its task is gone. Retiring it is all we can do.
		log.Printf("dispatch: task %s not found for reminder %s", reminder.TaskID, reminder.ID)
		return d.reminders.MarkSent(ctx, reminder.ID)
	}
	if err != nil {
		return fmt.Errorf("lookup task: %w", err)
	}

	message := reminder.Message
	if message == "" {
		message = "Reminder: " + task.Title
	}

	delivered := d.registry.Send(task.UserID, notify.Notification{
		Type:       "reminder",
		ReminderID: reminder.ID,
		TaskID:     task.ID,
		TaskTitle:  task.Title,
		Message:    message,
		RemindAt:   reminder.RemindAt,
		Timestamp:  time.Now().UTC(),
	})

	// Sent is recorded regardless of delivery so the reminder never fires
	// twice; an offline user simply misses it.
	if err := d.reminders.MarkSent(ctx, reminder.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}

	if !delivered {
		log.Printf("dispatch: user %s offline, reminder %s retired undelivered", task.UserID, reminder.ID)
	}
	return nil
}
