package bot

import (
	"context"
	"fmt"
	"strings"

	"drawbot/bot/common"
	"drawbot/bot/features/lottery"
	"drawbot/domain/entities"
	"drawbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var _ interfaces.Notifier = (*ChannelNotifier)(nil)

// messageSender is the REST surface used to post announcements
type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelNotifier posts lottery announcements as channel embeds
type ChannelNotifier struct {
	sender messageSender
}

// NewChannelNotifier creates a notifier backed by a discordgo session
func NewChannelNotifier(session *discordgo.Session) *ChannelNotifier {
	return &ChannelNotifier{sender: session}
}

// SendNotification renders and posts a notification to channelID
func (n *ChannelNotifier) SendNotification(ctx context.Context, channelID string, notification entities.Notification) error {
	embed, err := lottery.NotificationEmbed(notification)
	if err != nil {
		return fmt.Errorf("failed to render %s notification: %w", notification.Kind, err)
	}

	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: mentionedWinners(notification),
		},
	}
	if len(msg.AllowedMentions.Users) > 0 {
		msg.Content = fmt.Sprintf("Congratulations %s!", joinMentions(msg.AllowedMentions.Users))
	}

	if _, err := n.sender.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send %s notification to channel %s: %w", notification.Kind, channelID, err)
	}

	log.WithFields(log.Fields{
		"channel_id": channelID,
		"kind":       notification.Kind,
	}).Info("Posted lottery notification")
	return nil
}

func mentionedWinners(n entities.Notification) []string {
	var winners []entities.Participant
	switch n.Kind {
	case entities.NotificationResult:
		if n.Result != nil {
			winners = n.Result.Winners
		}
	case entities.NotificationReroll:
		if n.Reroll != nil {
			winners = n.Reroll.NewWinners
		}
	}

	ids := make([]string, 0, len(winners))
	for _, w := range winners {
		ids = append(ids, w.ID)
	}
	return ids
}

func joinMentions(ids []string) string {
	mentions := make([]string, len(ids))
	for idx, id := range ids {
		mentions[idx] = common.FormatMention(id)
	}
	return strings.Join(mentions, " ")
}
