package services

import (
	"time"

	"drawbot/domain/entities"
)

const (
	// FinalWarningOffset is how long before the draw the final warning is sent
	FinalWarningOffset = 90 * time.Minute
	// ClosingWarningOffset is how long before the draw the closing warning is sent
	ClosingWarningOffset = 30 * time.Minute
	// ScheduledDrawTolerance is how far ahead of NextDrawAt a draw still counts as the
	// scheduled one
	ScheduledDrawTolerance = time.Minute

	minutesPerWeek = 7 * 24 * 60
)

// TimerSlot is a weekly wall-clock position at which a timer fires
type TimerSlot struct {
	Kind   entities.TimerKind
	Day    time.Weekday
	Hour   int
	Minute int
}

// ComputeNextOccurrence returns the first instant strictly after now that falls on the given
// weekday, hour and minute in loc. If that slot is today but already reached, the same slot
// next week is returned.
func ComputeNextOccurrence(day time.Weekday, hour, minute int, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	daysAhead := (int(day) - int(local.Weekday()) + 7) % 7

	next := time.Date(local.Year(), local.Month(), local.Day()+daysAhead, hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+daysAhead+7, hour, minute, 0, 0, loc)
	}
	return next
}

// ShiftBack moves a weekly slot earlier by offsetMinutes, borrowing across hour and day
// boundaries. Sunday wraps to Saturday.
func ShiftBack(day time.Weekday, hour, minute, offsetMinutes int) (time.Weekday, int, int) {
	total := int(day)*24*60 + hour*60 + minute - offsetMinutes
	total = ((total % minutesPerWeek) + minutesPerWeek) % minutesPerWeek
	return time.Weekday(total / (24 * 60)), (total / 60) % 24, total % 60
}

// TimerSlots returns the final warning, closing warning and draw slots for a draw time
func TimerSlots(day time.Weekday, hour, minute int) []TimerSlot {
	finalDay, finalHour, finalMinute := ShiftBack(day, hour, minute, int(FinalWarningOffset/time.Minute))
	closingDay, closingHour, closingMinute := ShiftBack(day, hour, minute, int(ClosingWarningOffset/time.Minute))

	return []TimerSlot{
		{Kind: entities.TimerFinalWarning, Day: finalDay, Hour: finalHour, Minute: finalMinute},
		{Kind: entities.TimerClosingWarning, Day: closingDay, Hour: closingHour, Minute: closingMinute},
		{Kind: entities.TimerDraw, Day: day, Hour: hour, Minute: minute},
	}
}

// FirstDrawAt computes the initial NextDrawAt of a new lottery
func FirstDrawAt(lottery *entities.Lottery, now time.Time, loc *time.Location) time.Time {
	return ComputeNextOccurrence(lottery.DayOfWeek.Std(), lottery.Hour, lottery.Minute, now, loc)
}

// NextRecurringDrawAt computes NextDrawAt after a draw ran at now. The search starts
// frequencyDays-1 days ahead so that a 7 day frequency lands on next week's slot and
// longer frequencies skip the intermediate weeks.
//
// A draw that runs ahead of the stored NextDrawAt (a manual draw) leaves that occurrence
// in place.
func NextRecurringDrawAt(lottery *entities.Lottery, now time.Time, loc *time.Location) time.Time {
	if !lottery.NextDrawAt.IsZero() && now.Before(lottery.NextDrawAt.Add(-ScheduledDrawTolerance)) {
		return lottery.NextDrawAt
	}

	from := now
	if lottery.FrequencyDays > 1 {
		from = now.AddDate(0, 0, lottery.FrequencyDays-1)
	}
	return ComputeNextOccurrence(lottery.DayOfWeek.Std(), lottery.Hour, lottery.Minute, from, loc)
}
