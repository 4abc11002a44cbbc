package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels tasks by area (work, health, study, etc.). Names are unique
// per user.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_user_tag_name,unique"`
	Name      string    `gorm:"index:idx_user_tag_name,unique"`
	CreatedAt time.Time
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
