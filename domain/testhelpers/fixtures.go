package testhelpers

import (
	"fmt"
	"time"

	"drawbot/domain/entities"
)

// Candidates builds n members holding the given roles, with IDs user1..userN
func Candidates(n int, roles ...string) []entities.Candidate {
	out := make([]entities.Candidate, n)
	for i := range out {
		out[i] = entities.Candidate{
			ID:          fmt.Sprintf("user%d", i+1),
			DisplayName: fmt.Sprintf("User %d", i+1),
			RoleIDs:     append([]string(nil), roles...),
		}
	}
	return out
}

// WeeklyLottery returns a server-wide lottery drawing every Monday at 19:00
func WeeklyLottery(id string, nextDrawAt time.Time) *entities.Lottery {
	return &entities.Lottery{
		ID:            id,
		Name:          "Server lottery",
		TargetRoleID:  "role-target",
		FrequencyDays: 7,
		DayOfWeek:     entities.Weekday(time.Monday),
		Hour:          19,
		Minute:        0,
		WinnersCount:  2,
		ChannelID:     "channel-1",
		CreatedBy:     "admin",
		CreatedAt:     nextDrawAt.Add(-24 * time.Hour),
		NextDrawAt:    nextDrawAt,
	}
}
