package main

import (
	"fmt"
	"os"

	"github.com/fgeck/pgops/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file without touching the database.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return errConfigRequired
	}

	// Check if file exists
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Error().Str("file", configFile).Msg("config file not found")
		return fmt.Errorf("config file not found: %s", configFile)
	}

	parser := config.NewParser()
	cfg, err := parser.LoadFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to parse config")
		return err
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	out := cmd.OutOrStdout()
	host := cfg.Postgres.Host
	if host == "" {
		host = "(libpq default)"
	}

	fmt.Fprintln(out, "Configuration is valid!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "PostgreSQL Configuration:")
	fmt.Fprintf(out, "  Host: %s\n", host)
	if cfg.Postgres.Port != 0 {
		fmt.Fprintf(out, "  Port: %d\n", cfg.Postgres.Port)
	}
	fmt.Fprintf(out, "  Database: %s\n", cfg.Postgres.Database)
	fmt.Fprintf(out, "  Username: %s\n", cfg.Postgres.Username)
	fmt.Fprintf(out, "  Password: %v\n", cfg.Postgres.Password != "")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Binaries:")
	fmt.Fprintf(out, "  psql: %s\n", cfg.Binaries.Psql)
	fmt.Fprintf(out, "  pg_dump: %s\n", cfg.Binaries.PgDump)
	fmt.Fprintf(out, "  pg_restore: %s\n", cfg.Binaries.PgRestore)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Dump directory: %s\n", cfg.DumpDir)
	fmt.Fprintf(out, "Stderr policy: %s\n", cfg.StderrPolicy)
	fmt.Fprintf(out, "Metrics listen: %s\n", cfg.Metrics.Listen)

	return nil
}
