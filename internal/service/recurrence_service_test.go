package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
	"taskhub/internal/service"
)

func seedSeries(t *testing.T, e *env, userID uuid.UUID, ruleID uuid.UUID, completed ...bool) []*model.Task {
	t.Helper()
	tasks := make([]*model.Task, 0, len(completed))
	for i, done := range completed {
		due := time.Date(2026, 1, 1+i, 10, 0, 0, 0, time.UTC)
		task := &model.Task{
			UserID:           userID,
			Title:            "Water the plants",
			Priority:         model.PriorityMedium,
			IsCompleted:      done,
			Due:              &due,
			RecurrenceRuleID: &ruleID,
		}
		require.NoError(t, e.taskRepo.Create(context.Background(), task))
		tasks = append(tasks, task)
	}
	return tasks
}

func TestCreateRuleValidation(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "rules@example.com")
	ctx := context.Background()

	_, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: model.FrequencyDaily, Interval: 0, EndType: model.EndNever})
	assert.ErrorIs(t, err, service.ErrInvalidInterval)

	_, err = e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: "hourly", Interval: 1, EndType: model.EndNever})
	assert.Error(t, err)

	rule, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: model.FrequencyWeekly, Interval: 2, EndType: model.EndNever})
	require.NoError(t, err)
	assert.Equal(t, user.ID, rule.UserID)
	assert.Equal(t, 2, rule.Interval)
}

func TestGetRuleOwnership(t *testing.T) {
	e := newEnv(t)
	owner := e.createUser(t, "owner@example.com")
	other := e.createUser(t, "other@example.com")
	ctx := context.Background()

	rule, err := e.recurrence.CreateRule(ctx, owner.ID, service.RuleInput{Frequency: model.FrequencyDaily, Interval: 1, EndType: model.EndNever})
	require.NoError(t, err)

	got, err := e.recurrence.GetRule(ctx, owner.ID, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, got.ID)

	_, err = e.recurrence.GetRule(ctx, other.ID, rule.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.recurrence.GetRule(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteRule(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "delete-rule@example.com")
	ctx := context.Background()

	rule, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: model.FrequencyDaily, Interval: 1, EndType: model.EndNever})
	require.NoError(t, err)

	deleted, err := e.recurrence.DeleteRule(ctx, user.ID, rule.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = e.recurrence.DeleteRule(ctx, user.ID, rule.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete reports the rule as gone")
}

func TestGetCompletedCount(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "count@example.com")
	ctx := context.Background()

	rule, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: model.FrequencyDaily, Interval: 1, EndType: model.EndNever})
	require.NoError(t, err)
	tasks := seedSeries(t, e, user.ID, rule.ID, true, true, false)

	count, err := e.recurrence.GetCompletedCount(ctx, user.ID, tasks[2])
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	plain := e.createTask(t, user.ID, "not recurring")
	count, err = e.recurrence.GetCompletedCount(ctx, user.ID, plain)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreateNextInstance(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "advance@example.com")
	ctx := context.Background()

	rule, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: model.FrequencyDaily, Interval: 1, EndType: model.EndNever})
	require.NoError(t, err)

	due := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	task := &model.Task{
		UserID:           user.ID,
		Title:            "Standup notes",
		Description:      "post them in the channel",
		Priority:         model.PriorityHigh,
		IsCompleted:      true,
		Due:              &due,
		RecurrenceRuleID: &rule.ID,
	}
	require.NoError(t, e.taskRepo.Create(ctx, task))

	next, err := e.recurrence.CreateNextInstance(ctx, user.ID, task, rule)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.Equal(t, task.Title, next.Title)
	assert.Equal(t, task.Description, next.Description)
	assert.Equal(t, task.Priority, next.Priority)
	assert.False(t, next.IsCompleted)
	require.NotNil(t, next.Due)
	assert.True(t, next.Due.Equal(due.AddDate(0, 0, 1)))
	require.NotNil(t, next.ParentTaskID)
	assert.Equal(t, task.ID, *next.ParentTaskID)
	assert.Equal(t, rule.ID, *next.RecurrenceRuleID)
}

func TestCreateNextInstanceSeriesEnds(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "series-end@example.com")
	ctx := context.Background()

	rule, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{
		Frequency: model.FrequencyDaily,
		Interval:  1,
		EndType:   model.EndCount,
		EndCount:  intPtr(2),
	})
	require.NoError(t, err)

	// One completed instance already exists; completing this one makes two,
	// which exhausts the count.
	tasks := seedSeries(t, e, user.ID, rule.ID, true, true)

	next, err := e.recurrence.CreateNextInstance(ctx, user.ID, tasks[1], rule)
	require.NoError(t, err)
	assert.Nil(t, next, "series ended, no next instance")
}

func TestDeleteFutureInstances(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "del-future@example.com")
	ctx := context.Background()

	rule, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: model.FrequencyDaily, Interval: 1, EndType: model.EndNever})
	require.NoError(t, err)
	tasks := seedSeries(t, e, user.ID, rule.ID, true, false, false)

	count, err := e.recurrence.DeleteFutureInstances(ctx, user.ID, tasks[0])
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Completed history survives.
	kept, err := e.taskRepo.FindByID(ctx, user.ID, tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, kept.IsCompleted)

	// A second sweep finds nothing to delete.
	count, err = e.recurrence.DeleteFutureInstances(ctx, user.ID, tasks[0])
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpdateFutureInstances(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "upd-future@example.com")
	ctx := context.Background()

	rule, err := e.recurrence.CreateRule(ctx, user.ID, service.RuleInput{Frequency: model.FrequencyDaily, Interval: 1, EndType: model.EndNever})
	require.NoError(t, err)
	tasks := seedSeries(t, e, user.ID, rule.ID, true, false, false)

	count, err := e.recurrence.UpdateFutureInstances(ctx, user.ID, tasks[1], service.SeriesUpdate{
		Title:    strPtr("Water the garden"),
		Priority: intPtr(model.PriorityCritical),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	updated, err := e.taskRepo.FindByID(ctx, user.ID, tasks[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "Water the garden", updated.Title)
	assert.Equal(t, model.PriorityCritical, updated.Priority)

	// Completed instances keep their original fields.
	completed, err := e.taskRepo.FindByID(ctx, user.ID, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Water the plants", completed.Title)

	// No fields provided means no rows touched.
	count, err = e.recurrence.UpdateFutureInstances(ctx, user.ID, tasks[1], service.SeriesUpdate{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
