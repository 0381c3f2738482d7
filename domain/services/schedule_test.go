package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"drawbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// 2024-03-04 is a Monday
func monday(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func TestComputeNextOccurrence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		day    time.Weekday
		hour   int
		minute int
		now    time.Time
		want   time.Time
	}{
		{"later today", time.Monday, 19, 0, monday(10, 0), monday(19, 0)},
		{"elapsed today rolls a week", time.Monday, 19, 0, monday(20, 0), monday(19, 0).AddDate(0, 0, 7)},
		{"exactly now rolls a week", time.Monday, 19, 0, monday(19, 0), monday(19, 0).AddDate(0, 0, 7)},
		{"one second before", time.Monday, 19, 0, monday(18, 59).Add(59 * time.Second), monday(19, 0)},
		{"later this week", time.Friday, 14, 30, monday(10, 0), time.Date(2024, 3, 8, 14, 30, 0, 0, time.UTC)},
		{"earlier weekday wraps", time.Sunday, 0, 0, monday(10, 0), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeNextOccurrence(tt.day, tt.hour, tt.minute, tt.now, time.UTC)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestComputeNextOccurrence_UsesLocationWallClock(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2024-03-31 is the spring-forward Sunday in Berlin; the following Monday 19:00 is CEST
	now := time.Date(2024, 3, 30, 12, 0, 0, 0, loc)
	got := ComputeNextOccurrence(time.Monday, 19, 0, now, loc)

	local := got.In(loc)
	assert.Equal(t, time.Monday, local.Weekday())
	assert.Equal(t, 19, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.Equal(t, time.Date(2024, 4, 1, 17, 0, 0, 0, time.UTC), got.UTC())
}

func TestComputeNextOccurrence_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		day := time.Weekday(rapid.IntRange(0, 6).Draw(t, "day"))
		hour := rapid.IntRange(0, 23).Draw(t, "hour")
		minute := rapid.IntRange(0, 59).Draw(t, "minute")
		offset := rapid.Int64Range(0, 4*365*24*3600).Draw(t, "offset")
		now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)

		next := ComputeNextOccurrence(day, hour, minute, now, time.UTC)

		assert.True(t, next.After(now), "next %v must be after now %v", next, now)
		assert.LessOrEqual(t, next.Sub(now), 7*24*time.Hour)
		assert.Equal(t, day, next.Weekday())
		assert.Equal(t, hour, next.Hour())
		assert.Equal(t, minute, next.Minute())

		if now.Weekday() == day {
			slotToday := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
			if !slotToday.After(now) {
				assert.True(t, slotToday.AddDate(0, 0, 7).Equal(next))
			} else {
				assert.True(t, slotToday.Equal(next))
			}
		}
	})
}

func TestShiftBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		day                  time.Weekday
		hour, minute, offset int
		wantDay              time.Weekday
		wantHour, wantMinute int
	}{
		{"same hour", time.Monday, 19, 45, 30, time.Monday, 19, 15},
		{"borrows hour", time.Monday, 19, 0, 30, time.Monday, 18, 30},
		{"borrows ninety", time.Monday, 19, 0, 90, time.Monday, 17, 30},
		{"borrows day", time.Tuesday, 0, 30, 90, time.Monday, 23, 0},
		{"sunday wraps to saturday", time.Sunday, 1, 0, 90, time.Saturday, 23, 30},
		{"midnight sunday", time.Sunday, 0, 0, 30, time.Saturday, 23, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			day, hour, minute := ShiftBack(tt.day, tt.hour, tt.minute, tt.offset)
			assert.Equal(t, tt.wantDay, day)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func TestTimerSlots(t *testing.T) {
	t.Parallel()

	slots := TimerSlots(time.Monday, 1, 0)
	require.Len(t, slots, 3)

	assert.Equal(t, TimerSlot{Kind: entities.TimerFinalWarning, Day: time.Sunday, Hour: 23, Minute: 30}, slots[0])
	assert.Equal(t, TimerSlot{Kind: entities.TimerClosingWarning, Day: time.Monday, Hour: 0, Minute: 30}, slots[1])
	assert.Equal(t, TimerSlot{Kind: entities.TimerDraw, Day: time.Monday, Hour: 1, Minute: 0}, slots[2])
}

func TestNextRecurringDrawAt(t *testing.T) {
	t.Parallel()

	lottery := &entities.Lottery{DayOfWeek: entities.Weekday(time.Monday), Hour: 19, Minute: 0}

	tests := []struct {
		name      string
		frequency int
		want      time.Time
	}{
		{"weekly", 7, monday(19, 0).AddDate(0, 0, 7)},
		{"daily still weekly slot", 1, monday(19, 0).AddDate(0, 0, 7)},
		{"fortnightly", 14, monday(19, 0).AddDate(0, 0, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := *lottery
			l.FrequencyDays = tt.frequency
			got := NextRecurringDrawAt(&l, monday(19, 0).Add(time.Second), time.UTC)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestNextRecurringDrawAt_EarlyDrawKeepsUpcomingSlot(t *testing.T) {
	t.Parallel()

	upcoming := monday(19, 0).AddDate(0, 0, 7)
	lottery := &entities.Lottery{
		FrequencyDays: 7,
		DayOfWeek:     entities.Weekday(time.Monday),
		Hour:          19,
		Minute:        0,
		NextDrawAt:    upcoming,
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"wednesday manual draw", monday(10, 0).AddDate(0, 0, 2), upcoming},
		{"seconds before the slot", upcoming.Add(-30 * time.Second), upcoming.AddDate(0, 0, 7)},
		{"timer at the slot", upcoming, upcoming.AddDate(0, 0, 7)},
		{"late timer", upcoming.Add(2 * time.Minute), upcoming.AddDate(0, 0, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NextRecurringDrawAt(lottery, tt.now, time.UTC)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
