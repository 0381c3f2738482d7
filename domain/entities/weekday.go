package entities

import (
	"strconv"
	"strings"
	"time"

	"drawbot/domain"
)

// Weekday is a time.Weekday that persists as its English name
type Weekday time.Weekday

var weekdayTokens = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// ParseWeekday parses a day-of-week token. Full English names, common abbreviations and
// the digits 0-6 (Sunday=0) are accepted, case-insensitively.
func ParseWeekday(token string) (Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if day, ok := weekdayTokens[normalized]; ok {
		return Weekday(day), nil
	}
	if n, err := strconv.Atoi(normalized); err == nil && n >= 0 && n <= 6 {
		return Weekday(n), nil
	}
	return 0, domain.NewConfigurationError("dayOfWeek", token, "expected a weekday name such as Monday")
}

// Std returns the standard library weekday
func (w Weekday) Std() time.Weekday {
	return time.Weekday(w)
}

func (w Weekday) String() string {
	return time.Weekday(w).String()
}

// Valid reports whether the weekday is within Sunday..Saturday
func (w Weekday) Valid() bool {
	return w >= 0 && w <= 6
}

func (w Weekday) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, domain.NewConfigurationError("dayOfWeek", int(w), "out of range")
	}
	return []byte(w.String()), nil
}

func (w *Weekday) UnmarshalText(text []byte) error {
	day, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*w = day
	return nil
}
