package entities

import (
	"fmt"
	"strings"
	"time"

	"drawbot/domain"

	"github.com/google/uuid"
)

// ServerScopeKey is the clan key segment used in ids of server-wide lotteries
const ServerScopeKey = "server"

// Lottery is a persisted recurring (or one-shot) draw definition
type Lottery struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TargetRoleID  string     `json:"targetRoleId"`
	ClanKey       *string    `json:"clanKey"`
	ClanRoleID    *string    `json:"clanRoleId"` // nil means server-wide
	FrequencyDays int        `json:"frequencyDays"`
	DayOfWeek     Weekday    `json:"dayOfWeek"`
	Hour          int        `json:"hour"`
	Minute        int        `json:"minute"`
	WinnersCount  int        `json:"winnersCount"`
	ChannelID     string     `json:"destinationChannelId"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastDrawAt    *time.Time `json:"lastDrawAt"`
	NextDrawAt    time.Time  `json:"nextDrawAt"`
}

// IsRecurring returns true if the lottery reschedules itself after a draw
func (l *Lottery) IsRecurring() bool {
	return l.FrequencyDays > 0
}

// IsClanScoped returns true if candidates must also hold the clan role
func (l *Lottery) IsClanScoped() bool {
	return l.ClanRoleID != nil
}

// ScopeKey returns the clan key, or ServerScopeKey for server-wide lotteries
func (l *Lottery) ScopeKey() string {
	if l.ClanKey != nil && *l.ClanKey != "" {
		return *l.ClanKey
	}
	return ServerScopeKey
}

// Clone returns a deep copy so callers can mutate without touching stored state
func (l *Lottery) Clone() *Lottery {
	c := *l
	if l.ClanKey != nil {
		key := *l.ClanKey
		c.ClanKey = &key
	}
	if l.ClanRoleID != nil {
		role := *l.ClanRoleID
		c.ClanRoleID = &role
	}
	if l.LastDrawAt != nil {
		last := *l.LastDrawAt
		c.LastDrawAt = &last
	}
	return &c
}

// ValidateSchedule checks the fields that drive timers
func ValidateSchedule(day Weekday, hour, minute int) error {
	if !day.Valid() {
		return domain.NewConfigurationError("dayOfWeek", int(day), "out of range")
	}
	if hour < 0 || hour > 23 {
		return domain.NewConfigurationError("hour", hour, "must be between 0 and 23")
	}
	if minute < 0 || minute > 59 {
		return domain.NewConfigurationError("minute", minute, "must be between 0 and 59")
	}
	return nil
}

// Validate checks every user-supplied field of the definition
func (l *Lottery) Validate() error {
	if err := ValidateSchedule(l.DayOfWeek, l.Hour, l.Minute); err != nil {
		return err
	}
	if strings.TrimSpace(l.TargetRoleID) == "" {
		return domain.NewConfigurationError("targetRoleId", l.TargetRoleID, "is required")
	}
	if strings.TrimSpace(l.ChannelID) == "" {
		return domain.NewConfigurationError("destinationChannelId", l.ChannelID, "is required")
	}
	if l.WinnersCount < 1 {
		return domain.NewConfigurationError("winnersCount", l.WinnersCount, "must be at least 1")
	}
	if l.FrequencyDays < 0 {
		return domain.NewConfigurationError("frequencyDays", l.FrequencyDays, "must not be negative")
	}
	return nil
}

// NewLotteryID builds a legible id from the first draw date, target role and clan key,
// with a random suffix to keep ids unique.
func NewLotteryID(firstDraw time.Time, targetRoleID, scopeKey string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("lottery_%s_%s_%s_%s", firstDraw.Format("20060102"), targetRoleID, scopeKey, suffix)
}

// DefaultLotteryName returns the label used when the creator gave none
func DefaultLotteryName(scopeKey string) string {
	if scopeKey == ServerScopeKey {
		return "Server lottery"
	}
	return fmt.Sprintf("%s lottery", scopeKey)
}
