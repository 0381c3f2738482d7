package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"drawbot/bot/features/lottery"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token        string
	GuildID      string
	DebugAPIPort int // 0 disables the debug API
}

// Controller is everything the bot drives on the lifecycle controller
type Controller interface {
	lottery.Controller
	DebugController
}

// Bot manages the Discord session and the lottery command surface
type Bot struct {
	config  Config
	session *discordgo.Session
	lottery *lottery.Feature

	debugServer *http.Server
}

// NewSession creates a Discord session with the intents needed to see guild members.
// The session is opened by New so that collaborators can be built against it first.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.State.TrackMembers = true
	dg.State.TrackRoles = true
	return dg, nil
}

// New registers handlers, opens the session and registers slash commands
func New(config Config, session *discordgo.Session, controller Controller) (*Bot, error) {
	bot := &Bot{
		config:  config,
		session: session,
		lottery: lottery.NewFeature(controller),
	}

	session.AddHandler(bot.handleCommands)
	session.AddHandler(bot.handleReady)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	if config.DebugAPIPort > 0 {
		if err := bot.StartDebugAPI(config.DebugAPIPort, controller); err != nil {
			log.Warnf("Failed to start debug API on port %d: %v", config.DebugAPIPort, err)
		}
	}

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	if b.debugServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.debugServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Failed to shut down debug API")
		}
	}

	return b.session.Close()
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case lottery.CommandName:
		b.lottery.HandleCommand(s, i)
	}
}

// handleReady requests the full member list so role lookups work from the gateway cache
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithField("user", r.User.Username).Info("Discord session ready")

	if b.config.GuildID == "" {
		return
	}
	if err := s.RequestGuildMembers(b.config.GuildID, "", 0, "", false); err != nil {
		log.WithError(err).Warn("Failed to request guild member chunks")
	}
}
