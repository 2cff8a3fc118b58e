// Package postgres provides PostgreSQL maintenance operations built on the
// psql, pg_dump and pg_restore client tools.
package postgres

import (
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fgeck/pgops/internal/models"
	"github.com/rs/zerolog"
)

// Default client tool names, resolved through PATH.
const (
	DefaultPsql      = "psql"
	DefaultPgDump    = "pg_dump"
	DefaultPgRestore = "pg_restore"
)

// Service defines the interface for PostgreSQL operations.
type Service interface {
	Dump(ctx context.Context, cfg models.Config, name string) (*models.DumpResult, error)
	Restore(ctx context.Context, cfg models.Config, dumpName string) (*models.RestoreResult, error)
	Wipe(ctx context.Context, cfg models.Config) (*models.WipeResult, error)
	Shell(ctx context.Context, cfg models.Config) error
	ActivityCounters(ctx context.Context, cfg models.Config) (*models.ActivityCounters, error)
	ConnectionStates(ctx context.Context, cfg models.Config) (models.ConnectionStates, error)
	StorageSize(ctx context.Context, cfg models.Config) (*models.StorageSize, error)
}

// DBOpener opens a database handle for a lib/pq connection string.
type DBOpener func(ctx context.Context, dsn string) (*sql.DB, error)

// Impl implements the PostgreSQL Service interface.
type Impl struct {
	executor CommandExecutor
	opener   DBOpener
	logger   zerolog.Logger

	environ func() []string
	now     func() time.Time
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new PostgreSQL service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor: &DefaultExecutor{},
		opener:   openDB,
		logger:   logger,
		environ:  os.Environ,
		now:      time.Now,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// NewWithExecutor creates a new PostgreSQL service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor) *Impl {
	s := New(logger)
	s.executor = executor
	return s
}

// NewWithOpener creates a new PostgreSQL service with a custom database opener (for testing).
func NewWithOpener(logger zerolog.Logger, opener DBOpener) *Impl {
	s := New(logger)
	s.opener = opener
	return s
}

// runTool runs a client tool with the connection environment for cfg and
// applies the configured stderr policy to the result.
func (s *Impl) runTool(ctx context.Context, cfg models.Config, op string, kind error, cmd Command) (*CommandResult, error) {
	cmd.Env = mergeEnv(s.environ(), buildEnv(cfg.Postgres))
	argv := cmd.Argv()

	s.logger.Debug().Strs("cmd", argv).Str("op", op).Msg("executing command")

	result, err := s.executor.Run(ctx, cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &CommandError{Kind: kind, Op: op, Command: argv, Err: ctxErr}
		}
		return nil, &CommandError{Kind: ErrProcessLaunch, Op: op, Command: argv, Err: err}
	}

	stderr := strings.TrimSpace(string(result.Stderr))
	if cfg.StrictStderr() {
		if stderr != "" || result.ExitCode != 0 {
			return nil, &CommandError{Kind: kind, Op: op, Command: argv, ExitCode: result.ExitCode, Stderr: stderr}
		}
		return result, nil
	}

	if result.ExitCode != 0 {
		return nil, &CommandError{Kind: kind, Op: op, Command: argv, ExitCode: result.ExitCode, Stderr: stderr}
	}
	if stderr != "" {
		s.logger.Warn().Str("op", op).Str("stderr", stderr).Msg("command wrote to stderr")
	}

	return result, nil
}

func binary(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
