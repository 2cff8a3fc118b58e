package postgres

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/fgeck/pgops/internal/models"
	"github.com/rs/zerolog"
)

// mockExecutor is a mock implementation of CommandExecutor for testing.
type mockExecutor struct {
	runFunc func(ctx context.Context, cmd Command) (*CommandResult, error)
	calls   []Command
}

func (m *mockExecutor) Run(ctx context.Context, cmd Command) (*CommandResult, error) {
	m.calls = append(m.calls, cmd)
	if m.runFunc != nil {
		return m.runFunc(ctx, cmd)
	}
	return &CommandResult{}, nil
}

var fixedNow = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.Local)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testConfig(t *testing.T) models.Config {
	t.Helper()

	return models.Config{
		Postgres: models.PostgresConfig{
			Database: "testdb",
			Username: "tester",
			Password: "secret",
		},
		Binaries: models.BinaryConfig{
			Psql:      "/usr/bin/psql",
			PgDump:    "/usr/bin/pg_dump",
			PgRestore: "/usr/bin/pg_restore",
		},
		DumpDir:      t.TempDir(),
		StderrPolicy: models.StderrPolicyStrict,
	}
}

func newTestService(executor CommandExecutor) *Impl {
	svc := NewWithExecutor(testLogger(), executor)
	svc.environ = func() []string {
		return []string{"HOME=/home/tester", "PGUSER=ambient"}
	}
	svc.now = func() time.Time { return fixedNow }
	return svc
}
