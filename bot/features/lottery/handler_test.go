package lottery

import (
	"testing"

	"drawbot/application"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func option(name string, typ discordgo.ApplicationCommandOptionType, value interface{}) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: typ, Value: value}
}

func TestCreateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options []*discordgo.ApplicationCommandInteractionDataOption
		want    application.CreateLotteryRequest
	}{
		{
			name: "server-wide weekly",
			options: []*discordgo.ApplicationCommandInteractionDataOption{
				option("role", discordgo.ApplicationCommandOptionRole, "role-1"),
				option("frequency", discordgo.ApplicationCommandOptionInteger, float64(7)),
				option("day", discordgo.ApplicationCommandOptionString, "monday"),
				option("hour", discordgo.ApplicationCommandOptionInteger, float64(19)),
				option("minute", discordgo.ApplicationCommandOptionInteger, float64(0)),
				option("winners", discordgo.ApplicationCommandOptionInteger, float64(2)),
				option("channel", discordgo.ApplicationCommandOptionChannel, "chan-1"),
			},
			want: application.CreateLotteryRequest{
				TargetRoleID:  "role-1",
				FrequencyDays: 7,
				DayOfWeek:     "monday",
				Hour:          19,
				Minute:        0,
				WinnersCount:  2,
				ChannelID:     "chan-1",
				CreatedBy:     "user-9",
			},
		},
		{
			name: "clan one-shot with name",
			options: []*discordgo.ApplicationCommandInteractionDataOption{
				option("role", discordgo.ApplicationCommandOptionRole, "role-1"),
				option("frequency", discordgo.ApplicationCommandOptionInteger, float64(0)),
				option("day", discordgo.ApplicationCommandOptionString, "friday"),
				option("hour", discordgo.ApplicationCommandOptionInteger, float64(20)),
				option("minute", discordgo.ApplicationCommandOptionInteger, float64(30)),
				option("winners", discordgo.ApplicationCommandOptionInteger, float64(1)),
				option("channel", discordgo.ApplicationCommandOptionChannel, "chan-2"),
				option("clan", discordgo.ApplicationCommandOptionString, "red"),
				option("name", discordgo.ApplicationCommandOptionString, "Red raffle"),
			},
			want: application.CreateLotteryRequest{
				Name:          "Red raffle",
				TargetRoleID:  "role-1",
				ClanKey:       "red",
				FrequencyDays: 0,
				DayOfWeek:     "friday",
				Hour:          20,
				Minute:        30,
				WinnersCount:  1,
				ChannelID:     "chan-2",
				CreatedBy:     "user-9",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sub := &discordgo.ApplicationCommandInteractionDataOption{
				Name:    "create",
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Options: tt.options,
			}
			assert.Equal(t, tt.want, createRequest(sub, "user-9"))
		})
	}
}

func TestRerollRequest(t *testing.T) {
	t.Parallel()

	sub := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "reroll",
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			option("index", discordgo.ApplicationCommandOptionInteger, float64(0)),
			option("winners", discordgo.ApplicationCommandOptionInteger, float64(3)),
		},
	}

	assert.Equal(t, application.RerollRequest{Index: 0, AdditionalWinners: 3, RequestedBy: "mod-1"}, rerollRequest(sub, "mod-1"))
}

func TestCommand_SubcommandNames(t *testing.T) {
	t.Parallel()

	cmd := Command()
	assert.Equal(t, CommandName, cmd.Name)

	names := make([]string, 0, len(cmd.Options))
	for _, opt := range cmd.Options {
		assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, opt.Type)
		names = append(names, opt.Name)
	}
	assert.ElementsMatch(t, []string{"create", "reroll", "list", "history", "remove"}, names)
}
