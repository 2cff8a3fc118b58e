package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fgeck/pgops/internal/models"
	"github.com/fgeck/pgops/internal/services/postgres"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [activity|connections|size]",
	Short: "Show database statistics",
	Long: `Show database statistics gathered through psql:
  activity     commit/rollback and row counters from pg_stat_database
  connections  connections of the configured user by state
  size         total table and index size
Without an argument all three are shown.`,
	ValidArgs: []string{"activity", "connections", "size"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	which := ""
	if len(args) == 1 {
		which = args[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	svc := postgres.New(log.Logger)
	out := cmd.OutOrStdout()

	if which == "" || which == "activity" {
		counters, err := svc.ActivityCounters(ctx, *cfg)
		if err != nil {
			log.Error().Err(err).Msg("failed to read activity counters")
			return err
		}
		renderActivity(out, counters)
	}

	if which == "" || which == "connections" {
		states, err := svc.ConnectionStates(ctx, *cfg)
		if err != nil {
			log.Error().Err(err).Msg("failed to read connection states")
			return err
		}
		renderConnections(out, states)
	}

	if which == "" || which == "size" {
		size, err := svc.StorageSize(ctx, *cfg)
		if err != nil {
			log.Error().Err(err).Msg("failed to read storage size")
			return err
		}
		renderStorage(out, size)
	}

	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func renderActivity(w io.Writer, c *models.ActivityCounters) {
	table := newTable(w, []string{"Commits", "Rollbacks", "Inserted", "Updated", "Deleted"})
	row := make([]string, 0, 5)
	for _, v := range c.Values() {
		row = append(row, strconv.FormatInt(v, 10))
	}
	table.Append(row)
	table.Render()
}

func renderConnections(w io.Writer, states models.ConnectionStates) {
	if len(states) == 0 {
		fmt.Fprintln(w, "No connections.")
		return
	}

	names := make([]string, 0, len(states))
	for state := range states {
		names = append(names, state)
	}
	sort.Strings(names)

	table := newTable(w, []string{"State", "Connections"})
	for _, state := range names {
		label := state
		if label == "" {
			label = "(none)"
		}
		table.Append([]string{label, strconv.Itoa(states[state])})
	}
	table.Render()
}

func renderStorage(w io.Writer, s *models.StorageSize) {
	table := newTable(w, []string{"Kind", "Bytes", "Size"})
	table.Append([]string{"tables", strconv.FormatInt(s.TableBytes, 10), humanize.Bytes(uint64(s.TableBytes))}) //nolint:gosec // sizes are never negative
	table.Append([]string{"indexes", strconv.FormatInt(s.IndexBytes, 10), humanize.Bytes(uint64(s.IndexBytes))}) //nolint:gosec // sizes are never negative
	table.Render()
}
