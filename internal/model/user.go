package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns tasks, tags and recurrence rules. Authentication lives outside
// this service; a row here only anchors ownership foreign keys.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
