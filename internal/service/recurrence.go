package service

import (
	"time"

	"taskhub/internal/model"
)

// CalculateNextOccurrence computes the next due timestamp for a recurring
// series, or nil when the series has ended. Pure function, no I/O.
//
// The end condition is evaluated against the current anchor before any date
// arithmetic: a count-bounded rule ends once completedCount reaches EndCount,
// a date-bounded rule ends once the anchor's calendar date passes EndDate.
// A missing EndCount or EndDate is treated as unbounded. After advancing,
// a date-bounded rule is checked again so the returned occurrence itself
// never lands past EndDate. The time of day of the anchor is preserved
// across all frequencies.
func CalculateNextOccurrence(rule *model.RecurrenceRule, currentDue *time.Time, completedCount int) *time.Time {
	anchor := time.Now().UTC()
	if currentDue != nil {
		anchor = *currentDue
	}

	if !shouldContinue(rule, anchor, completedCount) {
		return nil
	}

	next := addInterval(anchor, rule.Frequency, rule.Interval)

	if rule.EndType == model.EndDate && rule.EndDate != nil {
		if civilDate(next).After(civilDate(*rule.EndDate)) {
			return nil
		}
	}

	return &next
}

func shouldContinue(rule *model.RecurrenceRule, anchor time.Time, completedCount int) bool {
	switch rule.EndType {
	case model.EndCount:
		if rule.EndCount == nil {
			return true
		}
		return completedCount < *rule.EndCount
	case model.EndDate:
		if rule.EndDate == nil {
			return true
		}
		return !civilDate(anchor).After(civilDate(*rule.EndDate))
	default:
		return true
	}
}

func addInterval(base time.Time, frequency string, interval int) time.Time {
	switch frequency {
	case model.FrequencyWeekly:
		return base.AddDate(0, 0, 7*interval)
	case model.FrequencyMonthly:
		return addMonthsClamped(base, interval)
	case model.FrequencyYearly:
		return addYearsClamped(base, interval)
	default:
		// daily, custom, and anything unrecognized advance by days.
		return base.AddDate(0, 0, interval)
	}
}

// addMonthsClamped advances by calendar months, clamping the day-of-month to
// the last valid day of the target month (Jan 31 + 1 month = Feb 28/29)
// instead of letting it roll over into the following month.
func addMonthsClamped(base time.Time, months int) time.Time {
	year, month, day := base.Date()
	hour, min, sec := base.Clock()

	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, base.Location())
	if last := daysInMonth(target.Month(), target.Year()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, hour, min, sec, base.Nanosecond(), base.Location())
}

// addYearsClamped advances by calendar years with the same clamp rule, so
// Feb 29 in a leap year lands on Feb 28 in a non-leap target year.
func addYearsClamped(base time.Time, years int) time.Time {
	year, month, day := base.Date()
	hour, min, sec := base.Clock()

	if last := daysInMonth(month, year+years); day > last {
		day = last
	}
	return time.Date(year+years, month, day, hour, min, sec, base.Nanosecond(), base.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return lastOfMonth.Day()
}

// civilDate strips the time of day for calendar-date comparisons.
func civilDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
