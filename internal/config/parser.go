// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fgeck/pgops/internal/models"
	"github.com/spf13/viper"
)

// Defaults applied when a setting is absent.
const (
	DefaultUsername      = "postgres"
	DefaultSSLMode       = "disable"
	DefaultMetricsListen = ":9187"
	DefaultScrapeTimeout = 10 * time.Second
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.Config, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.Config, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.Config, error) {
	cfg := &models.Config{}

	// Parse connection settings (database required).
	cfg.Postgres = models.PostgresConfig{
		Host:     p.expandEnv(p.v.GetString("postgres.host")),
		Port:     p.v.GetInt("postgres.port"),
		Database: p.expandEnv(p.v.GetString("postgres.database")),
		Username: p.expandEnv(p.v.GetString("postgres.username")),
		Password: p.expandEnv(p.v.GetString("postgres.password")),
		SSLMode:  p.v.GetString("postgres.sslmode"),
	}

	if cfg.Postgres.Database == "" {
		return nil, fmt.Errorf("postgres.database is required")
	}
	if cfg.Postgres.Username == "" {
		cfg.Postgres.Username = DefaultUsername
	}
	if cfg.Postgres.Port < 0 || cfg.Postgres.Port > 65535 {
		return nil, fmt.Errorf("postgres.port must be between 1 and 65535")
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultSSLMode
	}

	// Parse client binaries.
	cfg.Binaries = models.BinaryConfig{
		Psql:      p.expandEnv(p.v.GetString("binaries.psql")),
		PgDump:    p.expandEnv(p.v.GetString("binaries.pg_dump")),
		PgRestore: p.expandEnv(p.v.GetString("binaries.pg_restore")),
	}

	if cfg.Binaries.Psql == "" {
		cfg.Binaries.Psql = "psql"
	}
	if cfg.Binaries.PgDump == "" {
		cfg.Binaries.PgDump = "pg_dump"
	}
	if cfg.Binaries.PgRestore == "" {
		cfg.Binaries.PgRestore = "pg_restore"
	}

	cfg.DumpDir = p.expandEnv(p.v.GetString("dump_dir"))
	if cfg.DumpDir == "" {
		return nil, fmt.Errorf("dump_dir is required")
	}

	cfg.StderrPolicy = p.v.GetString("stderr_policy")
	if cfg.StderrPolicy == "" {
		cfg.StderrPolicy = models.StderrPolicyStrict
	}
	validPolicies := map[string]bool{models.StderrPolicyStrict: true, models.StderrPolicyExitCode: true}
	if !validPolicies[cfg.StderrPolicy] {
		return nil, fmt.Errorf("stderr_policy must be one of: strict, exit-code")
	}

	// Parse exporter settings.
	cfg.Metrics = models.MetricsConfig{
		Listen:        p.v.GetString("metrics.listen"),
		ScrapeTimeout: p.v.GetDuration("metrics.scrape_timeout"),
	}

	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	if cfg.Metrics.ScrapeTimeout == 0 {
		cfg.Metrics.ScrapeTimeout = DefaultScrapeTimeout
	}

	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Postgres.Database == "" {
		return fmt.Errorf("postgres.database is required")
	}

	if cfg.DumpDir == "" {
		return fmt.Errorf("dump_dir is required")
	}

	if info, err := os.Stat(cfg.DumpDir); err == nil && !info.IsDir() {
		return fmt.Errorf("dump_dir %s is not a directory", cfg.DumpDir)
	}

	return nil
}
