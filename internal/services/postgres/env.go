package postgres

import (
	"fmt"
	"strings"

	"github.com/fgeck/pgops/internal/models"
)

// buildEnv returns the libpq environment variables for cfg.
func buildEnv(cfg models.PostgresConfig) []string {
	env := []string{
		fmt.Sprintf("PGDATABASE=%s", cfg.Database),
		fmt.Sprintf("PGUSER=%s", cfg.Username),
	}

	if cfg.Password != "" {
		env = append(env, fmt.Sprintf("PGPASSWORD=%s", cfg.Password))
	}
	if cfg.Host != "" {
		env = append(env, fmt.Sprintf("PGHOST=%s", cfg.Host))
	}
	if cfg.Port != 0 {
		env = append(env, fmt.Sprintf("PGPORT=%d", cfg.Port))
	}

	return env
}

// mergeEnv returns base with every key set in overlay replaced by the overlay value.
// Neither slice is modified.
func mergeEnv(base, overlay []string) []string {
	keys := make(map[string]struct{}, len(overlay))
	for _, kv := range overlay {
		key, _, _ := strings.Cut(kv, "=")
		keys[key] = struct{}{}
	}

	merged := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := keys[key]; ok {
			continue
		}
		merged = append(merged, kv)
	}

	return append(merged, overlay...)
}

// dsn builds a libpq key/value connection string for the lib/pq driver.
func dsn(cfg models.PostgresConfig) string {
	parts := []string{
		"dbname=" + quoteDSNValue(cfg.Database),
		"user=" + quoteDSNValue(cfg.Username),
	}

	if cfg.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(cfg.Password))
	}
	if cfg.Host != "" {
		parts = append(parts, "host="+quoteDSNValue(cfg.Host))
	}
	if cfg.Port != 0 {
		parts = append(parts, fmt.Sprintf("port=%d", cfg.Port))
	}
	if cfg.SSLMode != "" {
		parts = append(parts, "sslmode="+quoteDSNValue(cfg.SSLMode))
	}

	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteDSNValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}
