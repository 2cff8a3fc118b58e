// Package exporter publishes PostgreSQL statistics as Prometheus metrics.
package exporter

import (
	"context"
	"time"

	"github.com/fgeck/pgops/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const namespace = "pgops"

// StatsReader is the subset of the PostgreSQL service the collector needs.
type StatsReader interface {
	ActivityCounters(ctx context.Context, cfg models.Config) (*models.ActivityCounters, error)
	ConnectionStates(ctx context.Context, cfg models.Config) (models.ConnectionStates, error)
	StorageSize(ctx context.Context, cfg models.Config) (*models.StorageSize, error)
}

// Collector runs the statistics queries on every scrape.
type Collector struct {
	stats  StatsReader
	cfg    models.Config
	logger zerolog.Logger

	xactCommit    *prometheus.Desc
	xactRollback  *prometheus.Desc
	tupInserted   *prometheus.Desc
	tupUpdated    *prometheus.Desc
	tupDeleted    *prometheus.Desc
	connections   *prometheus.Desc
	tableSize     *prometheus.Desc
	indexSize     *prometheus.Desc
	scrapeSuccess *prometheus.Desc
}

// NewCollector creates a collector for the database in cfg.
func NewCollector(logger zerolog.Logger, stats StatsReader, cfg models.Config) *Collector {
	dbLabel := []string{"database"}

	return &Collector{
		stats:  stats,
		cfg:    cfg,
		logger: logger,

		xactCommit: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "xact_commit_total"),
			"Transactions committed in the database.", dbLabel, nil),
		xactRollback: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "xact_rollback_total"),
			"Transactions rolled back in the database.", dbLabel, nil),
		tupInserted: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "tup_inserted_total"),
			"Rows inserted in the database.", dbLabel, nil),
		tupUpdated: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "tup_updated_total"),
			"Rows updated in the database.", dbLabel, nil),
		tupDeleted: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "tup_deleted_total"),
			"Rows deleted in the database.", dbLabel, nil),
		connections: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "connections"),
			"Connections of the configured user by state.", []string{"database", "state"}, nil),
		tableSize: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "table_size_bytes"),
			"Total size of all tables.", dbLabel, nil),
		indexSize: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "index_size_bytes"),
			"Total size of all indexes.", dbLabel, nil),
		scrapeSuccess: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "scrape_success"),
			"Whether the statistics query succeeded.", []string{"collector"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.xactCommit
	ch <- c.xactRollback
	ch <- c.tupInserted
	ch <- c.tupUpdated
	ch <- c.tupDeleted
	ch <- c.connections
	ch <- c.tableSize
	ch <- c.indexSize
	ch <- c.scrapeSuccess
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	timeout := c.cfg.Metrics.ScrapeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db := c.cfg.Postgres.Database

	counters, err := c.stats.ActivityCounters(ctx, c.cfg)
	c.reportScrape(ch, "activity", err)
	if err == nil {
		ch <- prometheus.MustNewConstMetric(c.xactCommit, prometheus.CounterValue, float64(counters.Commits), db)
		ch <- prometheus.MustNewConstMetric(c.xactRollback, prometheus.CounterValue, float64(counters.Rollbacks), db)
		ch <- prometheus.MustNewConstMetric(c.tupInserted, prometheus.CounterValue, float64(counters.RowsInserted), db)
		ch <- prometheus.MustNewConstMetric(c.tupUpdated, prometheus.CounterValue, float64(counters.RowsUpdated), db)
		ch <- prometheus.MustNewConstMetric(c.tupDeleted, prometheus.CounterValue, float64(counters.RowsDeleted), db)
	}

	states, err := c.stats.ConnectionStates(ctx, c.cfg)
	c.reportScrape(ch, "connections", err)
	if err == nil {
		for state, count := range states {
			ch <- prometheus.MustNewConstMetric(c.connections, prometheus.GaugeValue, float64(count), db, state)
		}
	}

	size, err := c.stats.StorageSize(ctx, c.cfg)
	c.reportScrape(ch, "storage", err)
	if err == nil {
		ch <- prometheus.MustNewConstMetric(c.tableSize, prometheus.GaugeValue, float64(size.TableBytes), db)
		ch <- prometheus.MustNewConstMetric(c.indexSize, prometheus.GaugeValue, float64(size.IndexBytes), db)
	}
}

func (c *Collector) reportScrape(ch chan<- prometheus.Metric, name string, err error) {
	value := 1.0
	if err != nil {
		value = 0
		c.logger.Error().Err(err).Str("collector", name).Msg("statistics query failed")
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, value, name)
}
