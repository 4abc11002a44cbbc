// Package event publishes task lifecycle events to an external broker
// endpoint, best-effort, and records them locally for replay.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Task lifecycle event types.
const (
	TypeTaskCreated   = "todo.task.created"
	TypeTaskUpdated   = "todo.task.updated"
	TypeTaskCompleted = "todo.task.completed"
	TypeTaskDeleted   = "todo.task.deleted"
)

// Envelope is a CloudEvents v1.0 style wrapper around a task event payload.
type Envelope struct {
	SpecVersion     string    `json:"specversion"`
	Type            string    `json:"type"`
	Source          string    `json:"source"`
	ID              string    `json:"id"`
	Time            time.Time `json:"time"`
	DataContentType string    `json:"datacontenttype"`
	Subject         string    `json:"subject,omitempty"`
	Data            TaskData  `json:"data"`
}

// TaskData is the payload carried by every task lifecycle event: the task's
// state at the time of the event.
type TaskData struct {
	TaskID      uuid.UUID  `json:"task_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	Priority    int        `json:"priority"`
	Due         *time.Time `json:"due,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	NextTaskID  *uuid.UUID `json:"next_task_id,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// NewEnvelope wraps a payload in a CloudEvents envelope with a fresh id.
func NewEnvelope(eventType, source string, data TaskData) Envelope {
	return Envelope{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          source,
		ID:              uuid.NewString(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Subject:         data.TaskID.String(),
		Data:            data,
	}
}
