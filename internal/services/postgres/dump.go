package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fgeck/pgops/internal/models"
)

const dumpTimestampLayout = "20060102_150405"

// DefaultDumpName returns the dump file name used when none is given.
func DefaultDumpName(database string, t time.Time) string {
	return fmt.Sprintf("%s_%s.backup", database, t.Format(dumpTimestampLayout))
}

// dumpPath resolves name inside dir. Names must not contain directories.
func dumpPath(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid dump name %q", name)
	}
	return filepath.Join(dir, name), nil
}

// Dump writes a custom-format dump of the configured database into the dump directory.
// An empty name selects DefaultDumpName.
func (s *Impl) Dump(ctx context.Context, cfg models.Config, name string) (*models.DumpResult, error) {
	if name == "" {
		name = DefaultDumpName(cfg.Postgres.Database, s.now())
	}

	path, err := dumpPath(cfg.DumpDir, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDump, err)
	}

	s.logger.Info().
		Str("database", cfg.Postgres.Database).
		Str("output", path).
		Msg("writing database dump")

	start := time.Now()

	if err := os.MkdirAll(cfg.DumpDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: failed to create dump directory: %w", ErrDump, err)
	}

	output, err := os.Create(path) //nolint:gosec // path is confined to the dump directory
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create output file: %w", ErrDump, err)
	}

	_, runErr := s.runTool(ctx, cfg, "dump", ErrDump, Command{
		Name:   binary(cfg.Binaries.PgDump, DefaultPgDump),
		Args:   []string{"-O", "-x", "-F", "c"},
		Stdout: output,
	})
	if closeErr := output.Close(); runErr == nil && closeErr != nil {
		runErr = fmt.Errorf("%w: failed to close output file: %w", ErrDump, closeErr)
	}
	if runErr != nil {
		// Partial output is never a usable dump.
		_ = os.Remove(path)
		return nil, runErr
	}

	result := &models.DumpResult{
		Path:     path,
		Duration: time.Since(start),
	}
	if info, err := os.Stat(path); err == nil {
		result.SizeBytes = info.Size()
	}

	s.logger.Info().
		Str("output", path).
		Int64("size_bytes", result.SizeBytes).
		Dur("duration", result.Duration).
		Msg("database dump completed")

	return result, nil
}

// Restore loads a dump from the dump directory into the public schema of the configured database.
func (s *Impl) Restore(ctx context.Context, cfg models.Config, dumpName string) (*models.RestoreResult, error) {
	path, err := dumpPath(cfg.DumpDir, dumpName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRestore, err)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: dump file %s does not exist", ErrRestore, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrRestore, err)
	}

	s.logger.Info().
		Str("database", cfg.Postgres.Database).
		Str("input", path).
		Msg("restoring database dump")

	start := time.Now()

	_, err = s.runTool(ctx, cfg, "restore", ErrRestore, Command{
		Name: binary(cfg.Binaries.PgRestore, DefaultPgRestore),
		Args: []string{"-d", cfg.Postgres.Database, "-O", "-n", "public", "-x", path},
	})
	if err != nil {
		return nil, err
	}

	result := &models.RestoreResult{
		Path:     path,
		Duration: time.Since(start),
	}

	s.logger.Info().
		Str("input", path).
		Dur("duration", result.Duration).
		Msg("database restore completed")

	return result, nil
}
