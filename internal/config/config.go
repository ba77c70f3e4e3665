package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/elemcore/internal/stats"
)

// EnvPrefix prefixes every environment override, e.g. ELEMCORE_LOG_LEVEL.
const EnvPrefix = "ELEMCORE_"

// Engine holds all configuration for the elemental engine.
type Engine struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Data files
	ElementsFile string `yaml:"elements_file" env:"ELEMENTS_FILE"`
	TablesFile   string `yaml:"tables_file" env:"TABLES_FILE"`

	Aggregation Aggregation `yaml:"aggregation" envPrefix:"AGGREGATION_"`
	Cache       Cache       `yaml:"cache" envPrefix:"CACHE_"`
	Status      Status      `yaml:"status" envPrefix:"STATUS_"`
	Combat      Combat      `yaml:"combat" envPrefix:"COMBAT_"`
	Mastery     Mastery     `yaml:"mastery" envPrefix:"MASTERY_"`

	// Database
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
}

// Aggregation configures the stat aggregator.
type Aggregation struct {
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxParallel int           `yaml:"max_parallel" env:"MAX_PARALLEL"`
	// MergeRules maps stat name to sum|max|min|override. Unlisted stats sum.
	MergeRules map[string]string `yaml:"merge_rules" env:"MERGE_RULES"`
}

// Rules converts MergeRules into stats.Rules.
func (a Aggregation) Rules() (stats.Rules, error) {
	if len(a.MergeRules) == 0 {
		return nil, nil
	}
	rules := make(stats.Rules, len(a.MergeRules))
	for stat, name := range a.MergeRules {
		r, err := stats.ParseMergeRule(name)
		if err != nil {
			return nil, fmt.Errorf("merge rule for %s: %w", stat, err)
		}
		rules[stat] = r
	}
	return rules, nil
}

// Cache configures the derived stats cache.
type Cache struct {
	Shards   int           `yaml:"shards" env:"SHARDS"`
	Capacity int           `yaml:"capacity" env:"CAPACITY"` // total entries across shards
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// Status configures the status effect engine.
type Status struct {
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	Workers      int           `yaml:"workers" env:"WORKERS"`
}

// Combat configures the hit and crit sigmoid scales.
type Combat struct {
	HitScale  float64 `yaml:"hit_scale" env:"HIT_SCALE"`
	CritScale float64 `yaml:"crit_scale" env:"CRIT_SCALE"`
}

// Mastery configures the mastery contributor.
type Mastery struct {
	Enabled  bool  `yaml:"enabled" env:"ENABLED"`
	Priority int64 `yaml:"priority" env:"PRIORITY"`
	// Store selects the experience backend: memory or postgres.
	Store string `yaml:"store" env:"STORE"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultEngine returns Engine config with sensible defaults.
func DefaultEngine() Engine {
	return Engine{
		LogLevel:     "info",
		ElementsFile: "config/elements.yaml",
		TablesFile:   "config/tables.yaml",
		Aggregation: Aggregation{
			Timeout:     100 * time.Millisecond,
			MaxParallel: 16,
		},
		Cache: Cache{
			Shards:   16,
			Capacity: 4096,
			TTL:      5 * time.Minute,
		},
		Status: Status{
			TickInterval: 200 * time.Millisecond,
			Workers:      8,
		},
		Combat: Combat{
			HitScale:  1,
			CritScale: 1,
		},
		Mastery: Mastery{
			Enabled:  true,
			Priority: 1000,
			Store:    "memory",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "elemcore",
			Password: "elemcore",
			DBName:   "elemcore",
			SSLMode:  "disable",
		},
	}
}

// LoadEngine loads engine config from a YAML file and applies ELEMCORE_*
// environment overrides on top. If the file doesn't exist, defaults are
// used.
func LoadEngine(path string) (Engine, error) {
	cfg := DefaultEngine()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing env overrides: %w", err)
	}

	return cfg, nil
}

// ParseLogLevel converts debug|info|warn|error into a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
