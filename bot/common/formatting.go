package common

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"drawbot/domain/entities"
)

// FormatDiscordTimestamp formats a time as a Discord timestamp tag
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatMention returns the mention markup for a user id
func FormatMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// FormatRoleMention returns the mention markup for a role id
func FormatRoleMention(roleID string) string {
	return fmt.Sprintf("<@&%s>", roleID)
}

// FormatWinners joins winner mentions, or reports that nobody won
func FormatWinners(winners []entities.Participant) string {
	if len(winners) == 0 {
		return "No winners"
	}
	mentions := make([]string, 0, len(winners))
	for _, w := range winners {
		mentions = append(mentions, FormatMention(w.ID))
	}
	return Truncate(strings.Join(mentions, ", "), MaxFieldValueRunes)
}

// FormatSchedule describes when a lottery draws
func FormatSchedule(l *entities.Lottery) string {
	at := fmt.Sprintf("%s %02d:%02d", l.DayOfWeek, l.Hour, l.Minute)
	switch {
	case !l.IsRecurring():
		return fmt.Sprintf("Once, %s", at)
	case l.FrequencyDays == 7:
		return fmt.Sprintf("Weekly, %s", at)
	default:
		return fmt.Sprintf("Every %d days, %s", l.FrequencyDays, at)
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
