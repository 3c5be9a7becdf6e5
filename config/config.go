// config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Adjustment store backends
const (
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"production"`

	MongoURI string `env:"MONGO_URI"`
	DBName   string `env:"DB_NAME" envDefault:"dealership"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AdjustmentStore string `env:"ADJUSTMENT_STORE" envDefault:"redis"`
	SQLitePath      string `env:"SQLITE_PATH" envDefault:"data/adjustments.db"`

	JWTSecret          string `env:"JWT_SECRET"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`

	ReportTimezone        string    `env:"REPORT_TIMEZONE" envDefault:"UTC"`
	KeyRoleName           string    `env:"KEY_ROLE_NAME" envDefault:"Key"`
	CollectionsBonusTiers []float64 `env:"COLLECTIONS_BONUS_TIERS" envDefault:"0,50,100" envSeparator:","`
	WeeklyBonusThreshold  int       `env:"WEEKLY_BONUS_THRESHOLD" envDefault:"5"`
	WeeklyBonusPerUnit    float64   `env:"WEEKLY_BONUS_PER_UNIT" envDefault:"50"`
	CommissionBaseRate    float64   `env:"COMMISSION_BASE_RATE" envDefault:"0.2"`
	CommissionMinimum     float64   `env:"COMMISSION_MINIMUM" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.AdjustmentStore = strings.ToLower(strings.TrimSpace(cfg.AdjustmentStore))
	switch cfg.AdjustmentStore {
	case StoreRedis, StoreMongo, StoreSQLite, StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown ADJUSTMENT_STORE %q", cfg.AdjustmentStore)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves the reporting time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("load REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

// IsDevelopment reports whether ENV names a development deployment.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}
