package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fgeck/pgops/internal/services/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive psql session",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // fd fits in int
		log.Warn().Msg("stdin is not a terminal, psql will read commands from it")
	}

	// psql handles Ctrl-C itself; keep pgops alive while it runs.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)

	if err := postgres.New(log.Logger).Shell(context.Background(), *cfg); err != nil {
		log.Error().Err(err).Msg("psql failed")
		return err
	}
	return nil
}
