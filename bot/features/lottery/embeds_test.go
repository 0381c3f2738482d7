package lottery

import (
	"testing"
	"time"

	"drawbot/bot/common"
	"drawbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drawTime = time.Date(2024, time.March, 4, 19, 0, 0, 0, time.UTC)

func sampleLottery() *entities.Lottery {
	return &entities.Lottery{
		ID:            "lottery_20240304_role-1_server_abc123",
		Name:          "Server lottery",
		TargetRoleID:  "role-1",
		FrequencyDays: 7,
		DayOfWeek:     entities.Weekday(time.Monday),
		Hour:          19,
		WinnersCount:  2,
		ChannelID:     "chan-1",
		NextDrawAt:    drawTime,
	}
}

func TestNotificationEmbed(t *testing.T) {
	t.Parallel()

	result := &entities.DrawResult{
		ID:               "lottery_1_1709578800",
		LotteryName:      "Server lottery",
		Timestamp:        drawTime,
		ParticipantCount: 5,
		Winners:          []entities.Participant{{ID: "u1"}, {ID: "u2"}},
	}
	reroll := &entities.RerollRecord{
		ID:              "lottery_1_1709578800_reroll",
		LotteryName:     "Server lottery",
		PreviousWinners: []entities.Participant{{ID: "u1"}, {ID: "u2"}},
		NewWinners:      []entities.Participant{{ID: "u4"}},
		RequestedBy:     "mod-1",
	}

	tests := []struct {
		name      string
		n         entities.Notification
		wantTitle string
		wantColor int
	}{
		{
			name:      "final warning",
			n:         entities.Notification{Kind: entities.NotificationFinalWarning, Lottery: sampleLottery(), DrawAt: drawTime},
			wantTitle: "⏰ Server lottery draws soon",
			wantColor: common.ColorInfo,
		},
		{
			name:      "closing warning",
			n:         entities.Notification{Kind: entities.NotificationClosingWarning, Lottery: sampleLottery(), DrawAt: drawTime},
			wantTitle: "🔒 Server lottery closes soon",
			wantColor: common.ColorWarning,
		},
		{
			name:      "result",
			n:         entities.Notification{Kind: entities.NotificationResult, Result: result},
			wantTitle: "🎉 Server lottery results",
			wantColor: common.ColorSuccess,
		},
		{
			name:      "reroll",
			n:         entities.Notification{Kind: entities.NotificationReroll, Reroll: reroll},
			wantTitle: "🔁 Server lottery reroll",
			wantColor: common.ColorPrimary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			embed, err := NotificationEmbed(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, embed.Title)
			assert.Equal(t, tt.wantColor, embed.Color)
		})
	}
}

func TestNotificationEmbed_MissingPayload(t *testing.T) {
	t.Parallel()

	for _, kind := range []entities.NotificationKind{
		entities.NotificationFinalWarning,
		entities.NotificationResult,
		entities.NotificationReroll,
		"unknown",
	} {
		_, err := NotificationEmbed(entities.Notification{Kind: kind})
		assert.Error(t, err, kind)
	}
}

func TestCreateResultEmbed_NoWinners(t *testing.T) {
	t.Parallel()

	embed := CreateResultEmbed(&entities.DrawResult{LotteryName: "Empty", Timestamp: drawTime})
	assert.Equal(t, common.ColorWarning, embed.Color)
	assert.Equal(t, "No winners", embed.Fields[0].Value)
}

func TestCreateListEmbed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No lotteries scheduled", CreateListEmbed(nil).Description)

	lotteries := make([]*entities.Lottery, common.MaxListedEntries+2)
	for i := range lotteries {
		lotteries[i] = sampleLottery()
	}
	embed := CreateListEmbed(lotteries)
	assert.Contains(t, embed.Description, "...and 2 more")
	assert.Contains(t, embed.Description, "Weekly, Monday 19:00")
}

func TestCreateHistoryEmbed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No draws yet", CreateHistoryEmbed(nil).Description)

	embed := CreateHistoryEmbed([]*entities.DrawResult{
		{LotteryName: "A", Timestamp: drawTime, ParticipantCount: 5, Winners: []entities.Participant{{ID: "u1"}}},
		{LotteryName: "B", Timestamp: drawTime, ParticipantCount: 0},
	})
	assert.Contains(t, embed.Description, "`0` **A**")
	assert.Contains(t, embed.Description, "1/5 won")
	assert.Contains(t, embed.Description, "`1` **B**")
}

func TestCreateScheduledEmbed_ClanScope(t *testing.T) {
	t.Parallel()

	l := sampleLottery()
	key, role := "red", "role-red"
	l.ClanKey, l.ClanRoleID = &key, &role

	embed := CreateScheduledEmbed(l)
	assert.Equal(t, l.ID, embed.Footer.Text)
	assert.Equal(t, "red (<@&role-red>)", embed.Fields[1].Value)
}
