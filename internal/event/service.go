package event

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// Service records every lifecycle event in the task_events table and then
// publishes it to the broker. The triggering task operation succeeds even if
// publishing fails; the persisted row stays unpublished for later replay.
type Service struct {
	repo      *repository.TaskEventRepository
	publisher *Publisher
	source    string
}

func NewService(repo *repository.TaskEventRepository, publisher *Publisher, source string) *Service {
	return &Service{repo: repo, publisher: publisher, source: source}
}

func (s *Service) TaskCreated(ctx context.Context, task *model.Task, tags []string) {
	s.emit(ctx, TypeTaskCreated, task, tags, nil)
}

func (s *Service) TaskUpdated(ctx context.Context, task *model.Task, tags []string) {
	s.emit(ctx, TypeTaskUpdated, task, tags, nil)
}

func (s *Service) TaskCompleted(ctx context.Context, task *model.Task, tags []string, nextTaskID *uuid.UUID) {
	s.emit(ctx, TypeTaskCompleted, task, tags, nextTaskID)
}

func (s *Service) TaskDeleted(ctx context.Context, task *model.Task) {
	s.emit(ctx, TypeTaskDeleted, task, nil, nil)
}

// ReplayUnpublished retries the broker publish for recorded events whose
// earlier publish failed, oldest first. A no-op without a configured broker.
func (s *Service) ReplayUnpublished(ctx context.Context, limit int) error {
	if !s.publisher.Enabled() {
		return nil
	}
	rows, err := s.repo.ListUnpublished(ctx, limit)
	if err != nil {
		return err
	}
	for _, row := range rows {
		var env Envelope
		if err := json.Unmarshal([]byte(row.Payload), &env); err != nil {
			log.Printf("event: replay %s: bad payload: %v", row.ID, err)
			continue
		}
		if err := s.publisher.Publish(ctx, env); err != nil {
			log.Printf("event: replay %s: %v", row.ID, err)
			continue
		}
		if err := s.repo.MarkPublished(ctx, row.ID); err != nil {
			log.Printf("event: replay %s: mark published: %v", row.ID, err)
		}
	}
	return nil
}

func (s *Service) emit(ctx context.Context, eventType string, task *model.Task, tags []string, nextTaskID *uuid.UUID) {
	data := TaskData{
		TaskID:      task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
		Priority:    task.Priority,
		Due:         task.Due,
		Tags:        tags,
		NextTaskID:  nextTaskID,
		Timestamp:   time.Now().UTC(),
	}
	env := NewEnvelope(eventType, s.source, data)

	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("event: marshal %s: %v", eventType, err)
		return
	}

	row := model.TaskEvent{
		UserID:    task.UserID,
		TaskID:    task.ID,
		EventType: eventType,
		Payload:   string(payload),
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		log.Printf("event: record %s: %v", eventType, err)
		return
	}

	if !s.publisher.Enabled() {
		return
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		log.Printf("event: %v", err)
		return
	}
	if err := s.repo.MarkPublished(ctx, row.ID); err != nil {
		log.Printf("event: mark published: %v", err)
	}
}
