package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Frequency of a recurring series.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
	FrequencyCustom  = "custom"
)

// End condition of a recurring series.
const (
	EndNever = "never"
	EndCount = "count"
	EndDate  = "date"
)

// RecurrenceRule describes a repeating pattern. Multiple task instances in
// one series share a single rule row.
type RecurrenceRule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	Frequency string
	Interval  int `gorm:"default:1"`
	EndType   string
	EndCount  *int
	EndDate   *time.Time
	CreatedAt time.Time
}

func (r *RecurrenceRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks the enumerated fields and the interval bound.
func (r *RecurrenceRule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	switch r.EndType {
	case EndNever, EndCount, EndDate:
	default:
		return fmt.Errorf("unknown end type %q", r.EndType)
	}
	if r.Interval < 1 || r.Interval > 365 {
		return fmt.Errorf("interval must be between 1 and 365, got %d", r.Interval)
	}
	if r.EndCount != nil && (*r.EndCount < 1 || *r.EndCount > 999) {
		return fmt.Errorf("end count must be between 1 and 999, got %d", *r.EndCount)
	}
	return nil
}
