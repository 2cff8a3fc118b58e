package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fgeck/pgops/internal/models"
	"github.com/lib/pq"
)

const listTablesQuery = `SELECT n.nspname, c.relname
FROM pg_catalog.pg_class AS c
LEFT JOIN pg_catalog.pg_namespace AS n ON n.oid = c.relnamespace
WHERE c.relkind IN ('r', 'p')
	AND n.nspname NOT IN ('pg_catalog', 'pg_toast')
	AND pg_catalog.pg_table_is_visible(c.oid)`

const listSequencesQuery = `SELECT n.nspname, c.relname
FROM pg_catalog.pg_class AS c
LEFT JOIN pg_catalog.pg_namespace AS n ON n.oid = c.relnamespace
WHERE c.relkind = 'S'
	AND n.nspname NOT IN ('pg_catalog', 'pg_toast')
	AND pg_catalog.pg_table_is_visible(c.oid)`

// openDB is the default DBOpener using the lib/pq driver.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenConnection opens a connection to the configured database.
// The caller must close it.
func (s *Impl) OpenConnection(ctx context.Context, cfg models.PostgresConfig) (*sql.DB, error) {
	db, err := s.opener(ctx, dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return db, nil
}

// Wipe drops every visible table and then every remaining visible sequence in one transaction.
func (s *Impl) Wipe(ctx context.Context, cfg models.Config) (*models.WipeResult, error) {
	start := time.Now()

	db, err := s.OpenConnection(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWipe, err)
	}

	result := &models.WipeResult{}

	s.logger.Info().Str("database", cfg.Postgres.Database).Msg("removing all tables")
	result.TablesDropped, err = s.dropRelations(ctx, tx, listTablesQuery, "TABLE")
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%w: %w", ErrWipe, err)
	}

	s.logger.Info().Str("database", cfg.Postgres.Database).Msg("removing all sequences")
	result.SequencesDropped, err = s.dropRelations(ctx, tx, listSequencesQuery, "SEQUENCE")
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%w: %w", ErrWipe, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWipe, err)
	}

	result.Duration = time.Since(start)

	s.logger.Info().
		Int("tables", result.TablesDropped).
		Int("sequences", result.SequencesDropped).
		Dur("duration", result.Duration).
		Msg("database emptied")

	return result, nil
}

// dropRelations drops every relation returned by listQuery and returns how many were dropped.
func (s *Impl) dropRelations(ctx context.Context, tx *sql.Tx, listQuery, objectType string) (int, error) {
	names, err := listRelations(ctx, tx, listQuery)
	if err != nil {
		return 0, err
	}

	s.logger.Debug().Int("count", len(names)).Str("type", objectType).Msg("dropping relations")

	for _, name := range names {
		// IF EXISTS: dropping a parent with CASCADE already removed its children.
		stmt := fmt.Sprintf("DROP %s IF EXISTS %s CASCADE", objectType, name)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("dropping %s %s: %w", objectType, name, err)
		}
	}

	return len(names), nil
}

// listRelations returns the quoted, schema-qualified names selected by query.
func listRelations(ctx context.Context, tx *sql.Tx, query string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing relations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var schema, relation string
		if err := rows.Scan(&schema, &relation); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		names = append(names, pq.QuoteIdentifier(schema)+"."+pq.QuoteIdentifier(relation))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relations: %w", err)
	}

	return names, nil
}
