package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fgeck/pgops/internal/services/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [name]",
	Short: "Write a custom-format dump of the database",
	Long: `Write a pg_dump custom-format dump (no owners, no privileges) into dump_dir.
Without a name the file is called <database>_<YYYYMMDD_HHMMSS>.backup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore a dump from dump_dir into the public schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := postgres.New(log.Logger).Dump(ctx, *cfg, name)
	if err != nil {
		log.Error().Err(err).Msg("dump failed")
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", result.Path, humanize.Bytes(uint64(result.SizeBytes))) //nolint:gosec // size is never negative
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if _, err := postgres.New(log.Logger).Restore(ctx, *cfg, args[0]); err != nil {
		log.Error().Err(err).Msg("restore failed")
		return err
	}

	log.Info().Str("dump", args[0]).Msg("restore completed successfully")
	return nil
}
