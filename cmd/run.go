package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"drawbot/application"
	"drawbot/bot"
	"drawbot/config"
	"drawbot/domain/interfaces"
	"drawbot/domain/services"
	"drawbot/infrastructure"
	"drawbot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	natsConnectTimeout = 10 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// RunOptions holds flags for the run command
type RunOptions struct {
	*RootOptions
	SkipRecover bool
}

// NewRunCommand creates the run command
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and run scheduled lotteries",
		Long: `Connect to Discord, restore every persisted lottery and serve the
/lottery command until interrupted.

Example:
  drawbot run
  drawbot run --config /etc/drawbot --log-level debug`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Run(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipRecover, "skip-recover", false, "do not reschedule persisted lotteries on startup")

	return cmd
}

// Run initializes and starts the application, blocking until ctx is cancelled
func Run(ctx context.Context, opts *RunOptions) error {
	cfg := config.Get()
	setupLogging(cfg, opts.LogLevel)
	log.Info("Starting drawbot...")

	// Metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Store
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	// Event publishing
	publisher, natsClient, err := newEventPublisher(ctx, cfg)
	if err != nil {
		store.Close()
		return err
	}

	// Readiness
	health := infrastructure.NewHealthServer(cfg.HealthAddr)
	stopHealth, err := health.Start(ctx)
	if err != nil {
		log.WithError(err).Warn("Health server disabled")
		stopHealth = func() {}
	}

	// Discord session and the collaborators built on it
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		stopHealth()
		store.Close()
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	membership := bot.NewGuildMembershipSource(session, cfg.GuildID)
	notifier := bot.NewChannelNotifier(session)

	resolver := services.NewEligibilityResolver(membership, cfg.BlockedRoleID, services.ResolverOptions{
		FetchTimeout: cfg.MemberFetchTimeout,
	}).WithMetrics(metrics)

	clock := application.SystemClock{}
	scheduler := application.NewScheduler(clock, cfg.Location())
	controller := application.NewLifecycleController(
		store,
		scheduler,
		resolver,
		notifier,
		publisher,
		metrics,
		clock,
		application.LifecycleConfig{ClanRoles: cfg.ClanRoles},
	)
	stopController := controller.Start(ctx)

	log.Info("Connecting to Discord...")
	discordBot, err := bot.New(bot.Config{
		Token:        cfg.DiscordToken,
		GuildID:      cfg.GuildID,
		DebugAPIPort: cfg.DebugAPIPort,
	}, session, controller)
	if err != nil {
		stopController()
		stopHealth()
		store.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	if opts.SkipRecover {
		log.Warn("Skipping recovery of persisted lotteries")
	} else {
		restored, err := controller.Recover(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to recover persisted lotteries")
		} else {
			log.WithField("lotteries", restored).Info("Persisted lotteries rescheduled")
		}
	}
	health.MarkServing()

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	health.MarkNotServing()
	stopController()

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	stopHealth()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	if err := store.Close(); err != nil {
		log.WithError(err).Error("Error closing lottery store")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}

// newEventPublisher connects to NATS when servers are configured and falls back to a
// no-op publisher otherwise. The returned client is nil in the no-op case.
func newEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, *infrastructure.NATSClient, error) {
	if cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, lottery events will not be published")
		return infrastructure.NewNoopEventPublisher(), nil, nil
	}

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	connectCtx, cancel := context.WithTimeout(ctx, natsConnectTimeout)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, nil, err
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.LotteryEventStream, mapper.GetAllSubjects()); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	log.WithField("servers", cfg.NATSServers).Info("Publishing lottery events to NATS")
	return infrastructure.NewNATSEventPublisher(client, mapper), client, nil
}
