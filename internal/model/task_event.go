package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskEvent is a persisted copy of an outbound lifecycle event. Publishing
// to the broker is best-effort; this row allows replay after an outage.
type TaskEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	TaskID    uuid.UUID `gorm:"type:uuid;index"`
	EventType string
	Payload   string `gorm:"type:text"`
	Published bool   `gorm:"default:false"`
	CreatedAt time.Time
}

func (e *TaskEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
