package lottery

import (
	"context"

	"drawbot/application"
	"drawbot/bot/common"
	"drawbot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Controller is the part of the lifecycle controller the command surface drives
type Controller interface {
	Create(ctx context.Context, req application.CreateLotteryRequest) (*entities.Lottery, error)
	Reroll(ctx context.Context, req application.RerollRequest) (*entities.RerollRecord, error)
	Remove(ctx context.Context, lotteryID string) error
	ListActive(ctx context.Context) ([]*entities.Lottery, error)
	GetHistory(ctx context.Context) ([]*entities.DrawResult, error)
}

// Feature represents the lottery command feature
type Feature struct {
	controller Controller
}

// NewFeature creates a new lottery feature instance
func NewFeature(controller Controller) *Feature {
	return &Feature{
		controller: controller,
	}
}

// HandleCommand routes /lottery subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		common.RespondWithError(s, i, "Missing subcommand")
		return
	}

	sub := data.Options[0]
	switch sub.Name {
	case "create":
		f.handleCreate(s, i, sub)
	case "reroll":
		f.handleReroll(s, i, sub)
	case "list":
		f.handleList(s, i)
	case "history":
		f.handleHistory(s, i)
	case "remove":
		f.handleRemove(s, i, sub)
	default:
		log.Warnf("Unknown lottery subcommand: %s", sub.Name)
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}
