package main

import (
	"github.com/fgeck/pgops/internal/services/exporter"
	"github.com/fgeck/pgops/internal/services/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var metricsListen string

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve database statistics as Prometheus metrics",
	Long: `Serve /metrics and /health. Every scrape runs the activity, connection
and storage queries against the configured database.`,
	Args: cobra.NoArgs,
	RunE: runServeMetrics,
}

func init() {
	serveMetricsCmd.Flags().StringVar(&metricsListen, "listen", "", "listen address (overrides metrics.listen)")
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := cfg.Metrics.Listen
	if metricsListen != "" {
		addr = metricsListen
	}

	collector := exporter.NewCollector(log.Logger, postgres.New(log.Logger), *cfg)
	server, err := exporter.NewServer(log.Logger, addr, collector)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("metrics server failed")
		return err
	}
	return nil
}
