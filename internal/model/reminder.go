package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder is a scheduled one-shot notification for a task. Sent and SentAt
// are set together and never unset; unsent reminders are removed when the
// task completes, sent ones are kept as history.
type Reminder struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;index"`
	RemindAt  time.Time `gorm:"index"`
	Message   string
	Sent      bool `gorm:"default:false"`
	SentAt    *time.Time
	CreatedAt time.Time
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
