package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"drawbot/bot/common"
	"drawbot/config"
	"drawbot/domain/entities"

	"github.com/spf13/cobra"
)

// LotteriesOptions holds flags for the lotteries command
type LotteriesOptions struct {
	*RootOptions
	JSON  bool
	Limit int
}

// NewLotteriesCommand creates the lotteries command, which reads the store without
// connecting to Discord
func NewLotteriesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LotteriesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lotteries",
		Short: "Inspect persisted lotteries and draw history",
	}
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print JSON instead of a table")

	list := &cobra.Command{
		Use:          "list",
		Short:        "List active lotteries ordered by next draw",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, loc, err := loadState(cmd, opts)
			if err != nil {
				return err
			}
			lotteries := sortedLotteries(state)
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), lotteries)
			}
			return writeLotteries(cmd.OutOrStdout(), lotteries, loc)
		},
	}

	history := &cobra.Command{
		Use:          "history",
		Short:        "Show recent draw results, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, loc, err := loadState(cmd, opts)
			if err != nil {
				return err
			}
			results := state.Results
			if opts.Limit > 0 && len(results) > opts.Limit {
				results = results[:opts.Limit]
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeHistory(cmd.OutOrStdout(), results, loc)
		},
	}
	history.Flags().IntVar(&opts.Limit, "limit", common.MaxListedEntries, "maximum results to show (0 for all)")

	cmd.AddCommand(list, history)
	return cmd
}

func loadState(cmd *cobra.Command, opts *LotteriesOptions) (*entities.State, *time.Location, error) {
	cfg := config.Get()
	setupLogging(cfg, opts.LogLevel)

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	state, err := store.Load(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	return state, cfg.Location(), nil
}

func sortedLotteries(state *entities.State) []*entities.Lottery {
	lotteries := make([]*entities.Lottery, 0, len(state.ActiveLotteries))
	for _, l := range state.ActiveLotteries {
		lotteries = append(lotteries, l)
	}
	sort.Slice(lotteries, func(i, j int) bool {
		if lotteries[i].NextDrawAt.Equal(lotteries[j].NextDrawAt) {
			return lotteries[i].ID < lotteries[j].ID
		}
		return lotteries[i].NextDrawAt.Before(lotteries[j].NextDrawAt)
	})
	return lotteries
}

func writeLotteries(w io.Writer, lotteries []*entities.Lottery, loc *time.Location) error {
	if len(lotteries) == 0 {
		_, err := fmt.Fprintln(w, "No active lotteries")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tCLAN\tSCHEDULE\tWINNERS\tNEXT DRAW")
	for _, l := range lotteries {
		clan := "-"
		if l.ClanKey != nil {
			clan = *l.ClanKey
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			l.ID, l.Name, l.TargetRoleID, clan, common.FormatSchedule(l), l.WinnersCount,
			l.NextDrawAt.In(loc).Format(time.RFC3339))
	}
	return tw.Flush()
}

func writeHistory(w io.Writer, results []*entities.DrawResult, loc *time.Location) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No draws yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tID\tLOTTERY\tDRAWN AT\tPARTICIPANTS\tWINNERS")
	for i, r := range results {
		winners := make([]string, 0, len(r.Winners))
		for _, p := range r.Winners {
			winners = append(winners, p.DisplayName)
		}
		names := "-"
		if len(winners) > 0 {
			names = strings.Join(winners, ", ")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i, r.ID, r.LotteryName, r.Timestamp.In(loc).Format(time.RFC3339), r.ParticipantCount, names)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
