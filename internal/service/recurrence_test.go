package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
	"taskhub/internal/service"
)

func rule(frequency string, interval int, endType string) *model.RecurrenceRule {
	return &model.RecurrenceRule{Frequency: frequency, Interval: interval, EndType: endType}
}

func TestCalculateNextOccurrence(t *testing.T) {
	tests := []struct {
		name           string
		rule           *model.RecurrenceRule
		currentDue     time.Time
		completedCount int
		want           *time.Time
	}{
		{
			name:       "daily advances one day",
			rule:       rule(model.FrequencyDaily, 1, model.EndNever),
			currentDue: time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC),
			want:       timePtr(time.Date(2026, 1, 29, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:       "daily with interval",
			rule:       rule(model.FrequencyDaily, 3, model.EndNever),
			currentDue: time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC),
			want:       timePtr(time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:       "weekly advances seven days per interval",
			rule:       rule(model.FrequencyWeekly, 2, model.EndNever),
			currentDue: time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC),
			want:       timePtr(time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:       "monthly clamps Jan 31 to Feb 28 in a non-leap year",
			rule:       rule(model.FrequencyMonthly, 1, model.EndNever),
			currentDue: time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC),
			want:       timePtr(time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:       "monthly clamps Jan 31 to Feb 29 in a leap year",
			rule:       rule(model.FrequencyMonthly, 1, model.EndNever),
			currentDue: time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC),
			want:       timePtr(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:       "monthly across year boundary",
			rule:       rule(model.FrequencyMonthly, 2, model.EndNever),
			currentDue: time.Date(2026, 12, 15, 9, 30, 0, 0, time.UTC),
			want:       timePtr(time.Date(2027, 2, 15, 9, 30, 0, 0, time.UTC)),
		},
		{
			name:       "yearly clamps Feb 29 to Feb 28 in a non-leap year",
			rule:       rule(model.FrequencyYearly, 1, model.EndNever),
			currentDue: time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC),
			want:       timePtr(time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:       "custom behaves as daily",
			rule:       rule(model.FrequencyCustom, 5, model.EndNever),
			currentDue: time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC),
			want:       timePtr(time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.CalculateNextOccurrence(tt.rule, &tt.currentDue, tt.completedCount)
			require.NotNil(t, got)
			assert.True(t, got.Equal(*tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestCalculateNextOccurrenceCountEnd(t *testing.T) {
	r := rule(model.FrequencyDaily, 1, model.EndCount)
	r.EndCount = intPtr(3)
	due := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

	assert.NotNil(t, service.CalculateNextOccurrence(r, &due, 2), "below the limit the series continues")
	assert.Nil(t, service.CalculateNextOccurrence(r, &due, 3), "reaching the limit ends the series")
	assert.Nil(t, service.CalculateNextOccurrence(r, &due, 4))
}

func TestCalculateNextOccurrenceCountEndWithoutCount(t *testing.T) {
	// A count-bounded rule missing its count is treated as unbounded.
	r := rule(model.FrequencyDaily, 1, model.EndCount)
	due := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	assert.NotNil(t, service.CalculateNextOccurrence(r, &due, 1000))
}

func TestCalculateNextOccurrenceDateEnd(t *testing.T) {
	r := rule(model.FrequencyDaily, 1, model.EndDate)
	r.EndDate = timePtr(time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC))

	// An occurrence landing exactly on the end date is still produced.
	due := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	got := service.CalculateNextOccurrence(r, &due, 0)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2026, 1, 29, 10, 0, 0, 0, time.UTC)))

	// One step later the successor would pass the end date; the series ends.
	due = time.Date(2026, 1, 29, 10, 0, 0, 0, time.UTC)
	assert.Nil(t, service.CalculateNextOccurrence(r, &due, 1))
}

func TestCalculateNextOccurrenceDateEndWithoutDate(t *testing.T) {
	r := rule(model.FrequencyDaily, 1, model.EndDate)
	due := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	assert.NotNil(t, service.CalculateNextOccurrence(r, &due, 0))
}

func TestCalculateNextOccurrenceNilAnchorUsesNow(t *testing.T) {
	r := rule(model.FrequencyDaily, 1, model.EndNever)
	before := time.Now().UTC()
	got := service.CalculateNextOccurrence(r, nil, 0)
	require.NotNil(t, got)
	assert.True(t, got.After(before), "next occurrence must land after the wall clock")
}

func TestCalculateNextOccurrenceNeverEndingAlwaysAdvances(t *testing.T) {
	frequencies := []string{
		model.FrequencyDaily,
		model.FrequencyWeekly,
		model.FrequencyMonthly,
		model.FrequencyYearly,
		model.FrequencyCustom,
	}
	anchor := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	for _, freq := range frequencies {
		got := service.CalculateNextOccurrence(rule(freq, 1, model.EndNever), &anchor, 9999)
		require.NotNil(t, got, "frequency %s", freq)
		assert.True(t, got.After(anchor), "frequency %s must advance past the anchor", freq)
	}
}

func TestCalculateNextOccurrencePreservesTimeOfDay(t *testing.T) {
	anchor := time.Date(2026, 1, 31, 23, 45, 12, 0, time.UTC)
	for _, freq := range []string{model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyYearly} {
		got := service.CalculateNextOccurrence(rule(freq, 1, model.EndNever), &anchor, 0)
		require.NotNil(t, got)
		hour, min, sec := got.Clock()
		assert.Equal(t, 23, hour, "frequency %s", freq)
		assert.Equal(t, 45, min, "frequency %s", freq)
		assert.Equal(t, 12, sec, "frequency %s", freq)
	}
}

func TestMonthlyClampNeverRollsOver(t *testing.T) {
	// Walking a day-31 anchor through each month must always land in the
	// immediately following month, clamped to its last day when shorter.
	r := rule(model.FrequencyMonthly, 1, model.EndNever)
	anchor := time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)

	expected := []struct {
		month time.Month
		day   int
	}{
		{time.February, 28},
		{time.March, 28}, // clamped anchors stay on their clamped day
	}

	next := service.CalculateNextOccurrence(r, &anchor, 0)
	require.NotNil(t, next)
	assert.Equal(t, expected[0].month, next.Month())
	assert.Equal(t, expected[0].day, next.Day())
	assert.Equal(t, 2026, next.Year())

	second := service.CalculateNextOccurrence(r, next, 1)
	require.NotNil(t, second)
	assert.Equal(t, expected[1].month, second.Month())
	assert.Equal(t, expected[1].day, second.Day())
}
