package cmd

import (
	"fmt"
	"strconv"

	"drawbot/config"
	"drawbot/database"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command and its up, down and status subcommands
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema of the lottery store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "up",
		Short:        "Apply all pending migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := migrationURL(rootOpts)
			if err != nil {
				return err
			}
			return database.MigrateUp(url)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "down [steps]",
		Short:        "Roll back migrations (default 1)",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			url, err := migrationURL(rootOpts)
			if err != nil {
				return err
			}
			return database.MigrateDown(url, steps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "status",
		Short:        "Show the current schema version",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := migrationURL(rootOpts)
			if err != nil {
				return err
			}
			status, err := database.MigrateStatus(url)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !status.Applied {
				fmt.Fprintln(out, "No migrations applied")
				return nil
			}
			fmt.Fprintf(out, "Version: %d\n", status.Version)
			fmt.Fprintf(out, "Dirty: %t\n", status.Dirty)
			return nil
		},
	})

	return cmd
}

func migrationURL(rootOpts *RootOptions) (string, error) {
	cfg := config.Get()
	setupLogging(cfg, rootOpts.LogLevel)
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is required for migrations")
	}
	return cfg.GetDatabaseURL(), nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("invalid steps %q: must be a positive integer", args[0])
	}
	return steps, nil
}
