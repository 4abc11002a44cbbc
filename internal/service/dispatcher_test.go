package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
)

func TestDispatchCycleOfflineUser(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "offline@example.com")
	task := e.createTask(t, user.ID, "Unwatched task")
	ctx := context.Background()

	reminder := e.insertReminder(t, task.ID, time.Now().UTC().Add(-time.Minute), "")

	require.NoError(t, e.dispatcher.RunCycle(ctx))

	got, err := e.reminders.Get(ctx, user.ID, reminder.ID)
	require.NoError(t, err)
	assert.True(t, got.Sent, "offline delivery still retires the reminder")
	assert.NotNil(t, got.SentAt)
	assert.False(t, e.registry.IsConnected(user.ID))
}

func TestDispatchCycleDeliversToConnectedUser(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "online@example.com")
	task := e.createTask(t, user.ID, "Watched task")
	ctx := context.Background()

	remindAt := time.Now().UTC().Add(-time.Minute)
	reminder := e.insertReminder(t, task.ID, remindAt, "")

	ch := e.registry.Connect(user.ID)
	require.NoError(t, e.dispatcher.RunCycle(ctx))

	select {
	case n := <-ch:
		assert.Equal(t, "reminder", n.Type)
		assert.Equal(t, reminder.ID, n.ReminderID)
		assert.Equal(t, task.ID, n.TaskID)
		assert.Equal(t, task.Title, n.TaskTitle)
		assert.Equal(t, "Reminder: Watched task", n.Message, "empty message falls back to the task title")
		assert.True(t, n.RemindAt.Equal(remindAt))
		assert.False(t, n.Timestamp.IsZero())
	default:
		t.Fatal("expected a notification on the user's channel")
	}

	got, err := e.reminders.Get(ctx, user.ID, reminder.ID)
	require.NoError(t, err)
	assert.True(t, got.Sent)
}

func TestDispatchCycleCustomMessage(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "custom-msg@example.com")
	task := e.createTask(t, user.ID, "With message")
	ctx := context.Background()

	e.insertReminder(t, task.ID, time.Now().UTC().Add(-time.Minute), "take your medicine")

	ch := e.registry.Connect(user.ID)
	require.NoError(t, e.dispatcher.RunCycle(ctx))

	n := <-ch
	assert.Equal(t, "take your medicine", n.Message)
}

func TestDispatchCycleOrphanedReminder(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "orphan@example.com")
	task := e.createTask(t, user.ID, "Doomed task")
	ctx := context.Background()

	reminder := e.insertReminder(t, task.ID, time.Now().UTC().Add(-time.Minute), "")

	// Delete the task out from under the reminder.
	deleted, err := e.taskRepo.Delete(ctx, user.ID, task.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	require.NoError(t, e.dispatcher.RunCycle(ctx))

	// The orphan is retired rather than retried forever.
	var got model.Reminder
	require.NoError(t, e.db.First(&got, "id = ?", reminder.ID).Error)
	assert.True(t, got.Sent)
}

func TestDispatchCycleSecondRunFindsNothing(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "once@example.com")
	task := e.createTask(t, user.ID, "One shot")
	ctx := context.Background()

	e.insertReminder(t, task.ID, time.Now().UTC().Add(-time.Minute), "")

	require.NoError(t, e.dispatcher.RunCycle(ctx))

	// The reminder was marked sent; a second cycle must not deliver again.
	ch := e.registry.Connect(user.ID)
	require.NoError(t, e.dispatcher.RunCycle(ctx))
	select {
	case n := <-ch:
		t.Fatalf("unexpected redelivery of reminder %s", n.ReminderID)
	default:
	}
}

func TestDispatchCycleProcessesMultipleUsers(t *testing.T) {
	e := newEnv(t)
	alice := e.createUser(t, "alice@example.com")
	bob := e.createUser(t, "bob@example.com")
	aliceTask := e.createTask(t, alice.ID, "Alice's task")
	bobTask := e.createTask(t, bob.ID, "Bob's task")
	ctx := context.Background()

	e.insertReminder(t, aliceTask.ID, time.Now().UTC().Add(-2*time.Minute), "")
	e.insertReminder(t, bobTask.ID, time.Now().UTC().Add(-time.Minute), "")

	aliceCh := e.registry.Connect(alice.ID)
	// Bob stays offline.

	require.NoError(t, e.dispatcher.RunCycle(ctx))

	select {
	case n := <-aliceCh:
		assert.Equal(t, aliceTask.ID, n.TaskID)
	default:
		t.Fatal("alice should have received her notification")
	}

	due, err := e.reminders.DueReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, due, "both reminders retired regardless of connectivity")
}
