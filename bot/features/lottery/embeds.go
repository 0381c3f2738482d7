package lottery

import (
	"fmt"
	"strings"

	"drawbot/bot/common"
	"drawbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

func scopeLabel(l *entities.Lottery) string {
	if l.IsClanScoped() {
		return fmt.Sprintf("%s (%s)", l.ScopeKey(), common.FormatRoleMention(*l.ClanRoleID))
	}
	return "Server"
}

// CreateScheduledEmbed confirms a newly scheduled lottery
func CreateScheduledEmbed(l *entities.Lottery) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎟️ %s scheduled", l.Name),
		Color:       common.ColorSuccess,
		Description: fmt.Sprintf("First draw %s", common.FormatDiscordTimestamp(l.NextDrawAt, "F")),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Role", Value: common.FormatRoleMention(l.TargetRoleID), Inline: true},
			{Name: "Scope", Value: scopeLabel(l), Inline: true},
			{Name: "Winners", Value: fmt.Sprintf("%d", l.WinnersCount), Inline: true},
			{Name: "Schedule", Value: common.FormatSchedule(l), Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", l.ChannelID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: l.ID},
	}
}

// NotificationEmbed renders a lottery announcement
func NotificationEmbed(n entities.Notification) (*discordgo.MessageEmbed, error) {
	switch n.Kind {
	case entities.NotificationFinalWarning, entities.NotificationClosingWarning:
		if n.Lottery == nil {
			return nil, fmt.Errorf("%s notification without lottery", n.Kind)
		}
		return createWarningEmbed(n), nil
	case entities.NotificationResult:
		if n.Result == nil {
			return nil, fmt.Errorf("result notification without result")
		}
		return CreateResultEmbed(n.Result), nil
	case entities.NotificationReroll:
		if n.Reroll == nil {
			return nil, fmt.Errorf("reroll notification without reroll record")
		}
		return CreateRerollEmbed(n.Reroll), nil
	default:
		return nil, fmt.Errorf("unknown notification kind: %s", n.Kind)
	}
}

func createWarningEmbed(n entities.Notification) *discordgo.MessageEmbed {
	l := n.Lottery
	color := common.ColorInfo
	title := fmt.Sprintf("⏰ %s draws soon", l.Name)
	if n.Kind == entities.NotificationClosingWarning {
		color = common.ColorWarning
		title = fmt.Sprintf("🔒 %s closes soon", l.Name)
	}

	return &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Description: fmt.Sprintf("The draw happens %s. Hold %s to take part.",
			common.FormatDiscordTimestamp(n.DrawAt, "R"), common.FormatRoleMention(l.TargetRoleID)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Winners", Value: fmt.Sprintf("%d", l.WinnersCount), Inline: true},
			{Name: "Scope", Value: scopeLabel(l), Inline: true},
		},
	}
}

// CreateResultEmbed announces the outcome of a draw
func CreateResultEmbed(r *entities.DrawResult) *discordgo.MessageEmbed {
	color := common.ColorSuccess
	if !r.HasWinners() {
		color = common.ColorWarning
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎉 %s results", r.LotteryName),
		Color:       color,
		Description: fmt.Sprintf("Drawn %s", common.FormatDiscordTimestamp(r.Timestamp, "F")),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Winners", Value: common.FormatWinners(r.Winners), Inline: false},
			{Name: "Participants", Value: fmt.Sprintf("%d", r.ParticipantCount), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: r.ID},
	}
}

// CreateRerollEmbed announces supplementary winners
func CreateRerollEmbed(r *entities.RerollRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔁 %s reroll", r.LotteryName),
		Color:       common.ColorPrimary,
		Description: fmt.Sprintf("Requested by %s", common.FormatMention(r.RequestedBy)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "New winners", Value: common.FormatWinners(r.NewWinners), Inline: false},
			{Name: "Already won", Value: fmt.Sprintf("%d", len(r.PreviousWinners)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: r.ID},
	}
}

// CreateListEmbed lists active lotteries by next draw
func CreateListEmbed(lotteries []*entities.Lottery) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Active lotteries",
		Color: common.ColorInfo,
	}
	if len(lotteries) == 0 {
		embed.Description = "No lotteries scheduled"
		return embed
	}

	lines := make([]string, 0, len(lotteries))
	for idx, l := range lotteries {
		if idx == common.MaxListedEntries {
			lines = append(lines, fmt.Sprintf("...and %d more", len(lotteries)-idx))
			break
		}
		lines = append(lines, fmt.Sprintf("**%s** · %s · next %s\n`%s`",
			l.Name, common.FormatSchedule(l), common.FormatDiscordTimestamp(l.NextDrawAt, "R"), l.ID))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

// CreateHistoryEmbed lists recent results with the index rerolls refer to
func CreateHistoryEmbed(results []*entities.DrawResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Draw history",
		Color: common.ColorInfo,
	}
	if len(results) == 0 {
		embed.Description = "No draws yet"
		return embed
	}

	lines := make([]string, 0, len(results))
	for idx, r := range results {
		if idx == common.MaxListedEntries {
			lines = append(lines, fmt.Sprintf("...and %d more", len(results)-idx))
			break
		}
		lines = append(lines, fmt.Sprintf("`%d` **%s** %s · %d/%d won",
			idx, r.LotteryName, common.FormatDiscordTimestamp(r.Timestamp, "d"), len(r.Winners), r.ParticipantCount))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
