package models

import "time"

// PostgresConfig holds the connection settings for the target database.
type PostgresConfig struct {
	Host     string // optional, libpq default when empty
	Port     int    // optional, libpq default when zero
	Database string
	Username string
	Password string
	SSLMode  string // only used by driver connections
}

// DumpResult holds the result of a pg_dump run.
type DumpResult struct {
	Path      string
	SizeBytes int64
	Duration  time.Duration
}

// RestoreResult holds the result of a pg_restore run.
type RestoreResult struct {
	Path     string
	Duration time.Duration
}

// WipeResult holds the number of objects dropped by a wipe.
type WipeResult struct {
	TablesDropped    int
	SequencesDropped int
	Duration         time.Duration
}
