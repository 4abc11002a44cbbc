package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Priority levels, 1 is most urgent.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
	PriorityNone     = 5
)

// Task is a single todo item. A recurring series is a chain of Task rows
// sharing one RecurrenceRuleID; ParentTaskID records the immediate
// predecessor in the chain and is never used for series queries.
type Task struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;index"`
	Title            string
	Description      string
	IsCompleted      bool `gorm:"default:false"`
	Priority         int  `gorm:"default:3"`
	Due              *time.Time
	RecurrenceRuleID *uuid.UUID `gorm:"type:uuid;index"`
	ParentTaskID     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Tags             []Tag `gorm:"many2many:task_tags"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
