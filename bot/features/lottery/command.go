package lottery

import (
	"github.com/bwmarrin/discordgo"
)

// CommandName is the slash command handled by this feature
const CommandName = "lottery"

var weekdayChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Monday", Value: "monday"},
	{Name: "Tuesday", Value: "tuesday"},
	{Name: "Wednesday", Value: "wednesday"},
	{Name: "Thursday", Value: "thursday"},
	{Name: "Friday", Value: "friday"},
	{Name: "Saturday", Value: "saturday"},
	{Name: "Sunday", Value: "sunday"},
}

// Command returns the /lottery application command definition
func Command() *discordgo.ApplicationCommand {
	minZero := float64(0)
	minOne := float64(1)

	return &discordgo.ApplicationCommand{
		Name:        CommandName,
		Description: "Schedule and manage role lotteries",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Schedule a recurring or one-shot lottery",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Members with this role can win",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "frequency",
						Description: "Days between draws, 0 for a single draw",
						Required:    true,
						MinValue:    &minZero,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "day",
						Description: "Day of the week to draw on",
						Required:    true,
						Choices:     weekdayChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "hour",
						Description: "Hour of the draw (0-23)",
						Required:    true,
						MinValue:    &minZero,
						MaxValue:    23,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "minute",
						Description: "Minute of the draw (0-59)",
						Required:    true,
						MinValue:    &minZero,
						MaxValue:    59,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "winners",
						Description: "Number of winners per draw",
						Required:    true,
						MinValue:    &minOne,
					},
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Channel results are announced in",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "clan",
						Description: "Restrict candidates to a configured clan",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Label shown in announcements",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reroll",
				Description: "Draw additional winners for a past result",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "index",
						Description: "History index, 0 is the most recent draw",
						Required:    true,
						MinValue:    &minZero,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "winners",
						Description: "Number of additional winners",
						Required:    true,
						MinValue:    &minOne,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List active lotteries",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "history",
				Description: "Show recent draw results",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Remove an active lottery",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id",
						Description: "Lottery id from /lottery list",
						Required:    true,
					},
				},
			},
		},
	}
}
