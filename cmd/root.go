package cmd

import (
	"os"
	"strings"

	"drawbot/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigDir string
	LogLevel  string // overrides LOG_LEVEL when set
}

// NewRootCommand creates the root command of the drawbot binary
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "drawbot",
		Short: "Recurring role-gated lotteries for a Discord guild",
		Long: `drawbot runs recurring lotteries for a Discord guild.

Members holding a lottery's role are entered automatically. Winners are drawn
on a weekly or multi-day schedule, announced in a channel, and can be rerolled.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigDir != "" {
				config.SetConfigPath(opts.ConfigDir)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "", "directory containing config.yaml")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewLotteriesCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging configures logrus from the loaded config and the --log-level flag
func setupLogging(cfg *config.Config, override string) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	levelName := cfg.LogLevel
	if override != "" {
		levelName = override
	}
	level, err := log.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		log.Warnf("Unknown log level %q, using info", levelName)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
