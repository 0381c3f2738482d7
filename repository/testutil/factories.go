package testutil

import (
	"time"

	"drawbot/domain/entities"
)

// FixedTime is the reference instant used by store fixtures (a Monday)
var FixedTime = time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC)

// CreateTestLottery creates a clan-scoped weekly lottery with a completed first draw
func CreateTestLottery() *entities.Lottery {
	clanKey, clanRole := "red", "222"
	last := FixedTime
	return &entities.Lottery{
		ID:            "lottery_20240304_111_red_a1b2c3",
		Name:          "Red weekly",
		TargetRoleID:  "111",
		ClanKey:       &clanKey,
		ClanRoleID:    &clanRole,
		FrequencyDays: 7,
		DayOfWeek:     entities.Weekday(time.Monday),
		Hour:          19,
		Minute:        0,
		WinnersCount:  2,
		ChannelID:     "333",
		CreatedBy:     "444",
		CreatedAt:     FixedTime.Add(-48 * time.Hour),
		LastDrawAt:    &last,
		NextDrawAt:    FixedTime.AddDate(0, 0, 7),
	}
}

// CreateTestState creates a document with one active lottery, one result and one reroll
func CreateTestState() *entities.State {
	lottery := CreateTestLottery()
	pool := []entities.Candidate{
		{ID: "501", DisplayName: "alice"},
		{ID: "502", DisplayName: "bob"},
		{ID: "503", DisplayName: "carol"},
	}
	result := entities.NewDrawResult(lottery, pool, pool[:2], FixedTime)

	state := entities.NewState()
	state.ActiveLotteries[lottery.ID] = lottery
	state.AppendResult(result)
	state.AppendReroll(&entities.RerollRecord{
		ID:              entities.NextLineageID(result.ID, nil),
		BaseID:          result.ID,
		LotteryID:       lottery.ID,
		LotteryName:     lottery.Name,
		Timestamp:       FixedTime.Add(time.Hour),
		PreviousWinners: result.Winners,
		NewWinners:      []entities.Participant{{ID: "503", DisplayName: "carol"}},
		RequestedBy:     "444",
	})
	return state
}
