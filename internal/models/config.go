// Package models contains the data structures used throughout pgops.
package models

import "time"

// Stderr policies decide how output on a tool's error stream is treated.
const (
	StderrPolicyStrict   = "strict"
	StderrPolicyExitCode = "exit-code"
)

// Config holds the complete configuration for a pgops run.
type Config struct {
	Postgres     PostgresConfig
	Binaries     BinaryConfig
	DumpDir      string
	StderrPolicy string // "strict" (default) or "exit-code"
	Metrics      MetricsConfig
}

// BinaryConfig holds the paths of the PostgreSQL client tools.
type BinaryConfig struct {
	Psql      string
	PgDump    string
	PgRestore string
}

// MetricsConfig holds the Prometheus exporter settings.
type MetricsConfig struct {
	Listen        string
	ScrapeTimeout time.Duration
}

// StrictStderr reports whether any stderr output counts as a failure.
func (c Config) StrictStderr() bool {
	return c.StderrPolicy != StderrPolicyExitCode
}
