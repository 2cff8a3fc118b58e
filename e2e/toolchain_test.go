//go:build e2e

package e2e

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fgeck/pgops/internal/models"
	"github.com/fgeck/pgops/internal/services/postgres"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakePgDump = `#!/bin/sh
if [ -n "$FAKE_PG_DUMP_STDERR" ]; then
  echo "$FAKE_PG_DUMP_STDERR" >&2
fi
echo "PGDMP $PGDATABASE $PGUSER $*"
`

const fakePgRestore = `#!/bin/sh
echo "$*" > "$FAKE_RESTORE_LOG"
`

const fakePsql = `#!/bin/sh
case "$3" in
  *pg_stat_database*) echo "42|1|10|5|2" ;;
  *pg_stat_activity*) printf '1|idle\n3|active\n' ;;
  *information_schema*) echo "|" ;;
  *) echo "unexpected query" >&2; exit 1 ;;
esac
`

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755)) //nolint:gosec // test scripts must be executable
	return path
}

func fakeToolchain(t *testing.T) models.Config {
	t.Helper()

	bin := t.TempDir()
	return models.Config{
		Postgres: models.PostgresConfig{Database: "e2edb", Username: "e2euser", Password: "pw"},
		Binaries: models.BinaryConfig{
			Psql:      writeScript(t, bin, "psql", fakePsql),
			PgDump:    writeScript(t, bin, "pg_dump", fakePgDump),
			PgRestore: writeScript(t, bin, "pg_restore", fakePgRestore),
		},
		DumpDir:      filepath.Join(t.TempDir(), "dumps"),
		StderrPolicy: models.StderrPolicyStrict,
	}
}

func TestDumpRestore_FakeToolchain_E2E(t *testing.T) {
	cfg := fakeToolchain(t)
	restoreLog := filepath.Join(t.TempDir(), "restore.log")
	t.Setenv("FAKE_RESTORE_LOG", restoreLog)
	t.Setenv("PGUSER", "should-be-overridden")

	svc := postgres.New(testLogger())

	dump, err := svc.Dump(context.Background(), cfg, "e2e.backup")
	require.NoError(t, err)

	content, err := os.ReadFile(dump.Path)
	require.NoError(t, err)
	assert.Equal(t, "PGDMP e2edb e2euser -O -x -F c\n", string(content))

	_, err = svc.Restore(context.Background(), cfg, "e2e.backup")
	require.NoError(t, err)

	args, err := os.ReadFile(restoreLog)
	require.NoError(t, err)
	assert.Equal(t, "-d e2edb -O -n public -x "+dump.Path+"\n", string(args))
}

func TestDump_StderrIsFailure_E2E(t *testing.T) {
	cfg := fakeToolchain(t)
	t.Setenv("FAKE_PG_DUMP_STDERR", "pg_dump: error: server version mismatch")

	svc := postgres.New(testLogger())

	_, err := svc.Dump(context.Background(), cfg, "e2e.backup")

	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrDump)
	assert.Contains(t, err.Error(), "pg_dump: error: server version mismatch")
	assert.NoFileExists(t, filepath.Join(cfg.DumpDir, "e2e.backup"))

	cfg.StderrPolicy = models.StderrPolicyExitCode
	_, err = svc.Dump(context.Background(), cfg, "e2e.backup")
	require.NoError(t, err)
}

func TestStats_FakeToolchain_E2E(t *testing.T) {
	cfg := fakeToolchain(t)
	svc := postgres.New(testLogger())
	ctx := context.Background()

	counters, err := svc.ActivityCounters(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, [5]int64{42, 1, 10, 5, 2}, counters.Values())

	states, err := svc.ConnectionStates(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStates{"idle": 1, "active": 3}, states)

	size, err := svc.StorageSize(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, &models.StorageSize{}, size)
}

func TestMissingBinary_E2E(t *testing.T) {
	cfg := fakeToolchain(t)
	cfg.Binaries.Psql = filepath.Join(t.TempDir(), "no-such-psql")

	_, err := postgres.New(testLogger()).ActivityCounters(context.Background(), cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrProcessLaunch)
}
