package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fgeck/pgops/internal/models"
	"github.com/lib/pq"
)

const storageSizeQuery = `SELECT ` +
	`COALESCE(sum(pg_table_size(format('%I.%I', table_schema, table_name)::regclass)), 0), ` +
	`COALESCE(sum(pg_indexes_size(format('%I.%I', table_schema, table_name)::regclass)), 0) ` +
	`FROM information_schema.tables`

func activityCountersQuery(database string) string {
	return "SELECT xact_commit, xact_rollback, tup_inserted, tup_updated, tup_deleted " +
		"FROM pg_stat_database WHERE datname = " + pq.QuoteLiteral(database)
}

func connectionStatesQuery(database, user string) string {
	return "SELECT count(*), state FROM pg_stat_activity " +
		"WHERE datname = " + pq.QuoteLiteral(database) +
		" AND usename = " + pq.QuoteLiteral(user) +
		" GROUP BY 2"
}

// query runs sql through psql in unaligned, tuples-only mode and returns its stdout.
func (s *Impl) query(ctx context.Context, cfg models.Config, op, sql string) (string, error) {
	result, err := s.runTool(ctx, cfg, op, ErrStatsQuery, Command{
		Name: binary(cfg.Binaries.Psql, DefaultPsql),
		Args: []string{"-At", "-c", sql},
	})
	if err != nil {
		return "", err
	}
	return string(result.Stdout), nil
}

// ActivityCounters returns the pg_stat_database counters of the configured database.
func (s *Impl) ActivityCounters(ctx context.Context, cfg models.Config) (*models.ActivityCounters, error) {
	out, err := s.query(ctx, cfg, "pg_stat_database", activityCountersQuery(cfg.Postgres.Database))
	if err != nil {
		return nil, err
	}

	counters, err := parseActivityCounters(out)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("commits", counters.Commits).
		Int64("rollbacks", counters.Rollbacks).
		Msg("activity counters retrieved")

	return counters, nil
}

// ConnectionStates counts the connections of the configured user to the configured database by state.
func (s *Impl) ConnectionStates(ctx context.Context, cfg models.Config) (models.ConnectionStates, error) {
	out, err := s.query(ctx, cfg, "pg_stat_activity", connectionStatesQuery(cfg.Postgres.Database, cfg.Postgres.Username))
	if err != nil {
		return nil, err
	}

	states, err := parseConnectionStates(out)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("states", len(states)).Msg("connection states retrieved")
	return states, nil
}

// StorageSize sums table and index sizes over all tables in the catalog.
func (s *Impl) StorageSize(ctx context.Context, cfg models.Config) (*models.StorageSize, error) {
	out, err := s.query(ctx, cfg, "table_index_size", storageSizeQuery)
	if err != nil {
		return nil, err
	}

	size, err := parseStorageSize(out)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("table_bytes", size.TableBytes).
		Int64("index_bytes", size.IndexBytes).
		Msg("storage size retrieved")

	return size, nil
}

func parseActivityCounters(out string) (*models.ActivityCounters, error) {
	line := strings.TrimSpace(out)
	if line == "" {
		return nil, fmt.Errorf("%w: no pg_stat_database row returned", ErrStatsQuery)
	}

	fields := strings.Split(line, "|")
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: expected 5 fields, got %d in %q", ErrStatsQuery, len(fields), line)
	}

	var values [5]int64
	for i, field := range fields {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid counter %q: %w", ErrStatsQuery, field, err)
		}
		values[i] = v
	}

	return &models.ActivityCounters{
		Commits:      values[0],
		Rollbacks:    values[1],
		RowsInserted: values[2],
		RowsUpdated:  values[3],
		RowsDeleted:  values[4],
	}, nil
}

func parseConnectionStates(out string) (models.ConnectionStates, error) {
	states := models.ConnectionStates{}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		count, state, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("%w: malformed pg_stat_activity line %q", ErrStatsQuery, line)
		}

		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid connection count %q: %w", ErrStatsQuery, count, err)
		}
		states[state] = n
	}

	return states, nil
}

func parseStorageSize(out string) (*models.StorageSize, error) {
	line := strings.TrimSpace(out)

	fields := strings.Split(line, "|")
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: expected 2 fields, got %d in %q", ErrStatsQuery, len(fields), line)
	}

	var sizes [2]int64
	for i, field := range fields {
		// sum() over no rows is NULL, which psql prints as an empty field.
		if field == "" {
			continue
		}
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid size %q: %w", ErrStatsQuery, field, err)
		}
		sizes[i] = v
	}

	return &models.StorageSize{TableBytes: sizes[0], IndexBytes: sizes[1]}, nil
}
