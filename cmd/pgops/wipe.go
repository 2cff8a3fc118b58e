package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fgeck/pgops/internal/services/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var wipeYes bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Drop all tables and sequences visible in the search path",
	Long: `Drop every table and sequence visible in the search path in a single transaction.
Either everything is dropped or nothing is.`,
	Args: cobra.NoArgs,
	RunE: runWipe,
}

func init() {
	wipeCmd.Flags().BoolVarP(&wipeYes, "yes", "y", false, "do not ask for confirmation")
}

func runWipe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !wipeYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // fd fits in int
			return errors.New("refusing to wipe without --yes when stdin is not a terminal")
		}

		var proceed bool
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Drop ALL tables and sequences in database %q?", cfg.Postgres.Database),
			Default: false,
		}
		if err := survey.AskOne(prompt, &proceed); err != nil {
			return fmt.Errorf("survey failed: %w", err)
		}
		if !proceed {
			return fmt.Errorf("operation cancelled by user")
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := postgres.New(log.Logger).Wipe(ctx, *cfg)
	if err != nil {
		log.Error().Err(err).Msg("wipe failed")
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "dropped %d tables and %d sequences\n", result.TablesDropped, result.SequencesDropped)
	return nil
}
