package lottery

import (
	"context"
	"fmt"

	"drawbot/application"
	"drawbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsByName(sub *discordgo.ApplicationCommandInteractionDataOption) optionMap {
	opts := make(optionMap, len(sub.Options))
	for _, opt := range sub.Options {
		opts[opt.Name] = opt
	}
	return opts
}

func (o optionMap) intOpt(name string) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func (o optionMap) stringOpt(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o optionMap) roleOpt(name string) string {
	if opt, ok := o[name]; ok {
		return opt.RoleValue(nil, "").ID
	}
	return ""
}

func (o optionMap) channelOpt(name string) string {
	if opt, ok := o[name]; ok {
		return opt.ChannelValue(nil).ID
	}
	return ""
}

// createRequest converts /lottery create options into a controller request
func createRequest(sub *discordgo.ApplicationCommandInteractionDataOption, userID string) application.CreateLotteryRequest {
	opts := optionsByName(sub)
	return application.CreateLotteryRequest{
		Name:          opts.stringOpt("name"),
		TargetRoleID:  opts.roleOpt("role"),
		ClanKey:       opts.stringOpt("clan"),
		FrequencyDays: opts.intOpt("frequency"),
		DayOfWeek:     opts.stringOpt("day"),
		Hour:          opts.intOpt("hour"),
		Minute:        opts.intOpt("minute"),
		WinnersCount:  opts.intOpt("winners"),
		ChannelID:     opts.channelOpt("channel"),
		CreatedBy:     userID,
	}
}

// rerollRequest converts /lottery reroll options into a controller request
func rerollRequest(sub *discordgo.ApplicationCommandInteractionDataOption, userID string) application.RerollRequest {
	opts := optionsByName(sub)
	return application.RerollRequest{
		Index:             opts.intOpt("index"),
		AdditionalWinners: opts.intOpt("winners"),
		RequestedBy:       userID,
	}
}

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	req := createRequest(sub, common.InteractionUserID(i))
	lottery, err := f.controller.Create(context.Background(), req)
	if err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "Failed to create lottery"), true)
		return
	}

	common.FollowUpWithEmbed(s, i, CreateScheduledEmbed(lottery), true)
}

func (f *Feature) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	req := rerollRequest(sub, common.InteractionUserID(i))
	record, err := f.controller.Reroll(context.Background(), req)
	if err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "Failed to reroll"), true)
		return
	}

	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Reroll %s drew %d new winner(s)", record.ID, len(record.NewWinners)), true)
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	lotteries, err := f.controller.ListActive(context.Background())
	if err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "Failed to list lotteries"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateListEmbed(lotteries), true); err != nil {
		log.Errorf("Failed to send lottery list: %v", err)
	}
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	results, err := f.controller.GetHistory(context.Background())
	if err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "Failed to load history"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateHistoryEmbed(results), true); err != nil {
		log.Errorf("Failed to send lottery history: %v", err)
	}
}

func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	id := optionsByName(sub).stringOpt("id")
	if err := f.controller.Remove(context.Background(), id); err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "Failed to remove lottery"), true)
		return
	}

	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Lottery %s removed", id), true)
}
