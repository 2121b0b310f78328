// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode    string `mapstructure:"GIN_MODE"`
	ServerHost string `mapstructure:"SERVER_HOST"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	// Set from SERVER_TIMEOUT_SECONDS below; excluded from Unmarshal so a
	// plain integer env value is not fed to the duration decode hook.
	ServerTimeout time.Duration `mapstructure:"-"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"` // from DB_CONN_MAX_LIFETIME_MINUTES

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Telegram Configuration
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`

	// Base location used when normalizing listings process-wide.
	BaseCity string  `mapstructure:"BASE_CITY"`
	BaseLat  float64 `mapstructure:"BASE_LAT"`
	BaseLon  float64 `mapstructure:"BASE_LON"`

	// Economics constants for the flip-score model.
	DefaultFeesPct      float64 `mapstructure:"DEFAULT_FEES_PCT"`
	DefaultShipPerKGEUR float64 `mapstructure:"DEFAULT_SHIP_EUR_PER_KG"`
	DefaultFixedShipEUR float64 `mapstructure:"DEFAULT_FIXED_SHIP_EUR"`

	// Matching / digest parameters
	DefaultRadiusKM     int `mapstructure:"DEFAULT_RADIUS_KM"`
	DigestLookbackHours int `mapstructure:"DIGEST_LOOKBACK_HOURS"`
	DigestMaxItems      int `mapstructure:"DIGEST_MAX_ITEMS"`

	// Scrape cycle parameters
	ScrapeKeywords    string        `mapstructure:"SCRAPE_KEYWORDS"`
	SourceTimeout     time.Duration `mapstructure:"-"` // from SOURCE_TIMEOUT_SECONDS
	SourceMaxItems    int           `mapstructure:"SOURCE_MAX_ITEMS"`
	ScrapeJobSchedule string        `mapstructure:"SCRAPE_JOB_SCHEDULE"`
	DigestJobSchedule string        `mapstructure:"DIGEST_JOB_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "flipradar_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("BASE_CITY", "Marseille")
	v.SetDefault("BASE_LAT", 43.2965)
	v.SetDefault("BASE_LON", 5.3698)

	v.SetDefault("DEFAULT_FEES_PCT", 0.12)
	v.SetDefault("DEFAULT_SHIP_EUR_PER_KG", 1.8)
	v.SetDefault("DEFAULT_FIXED_SHIP_EUR", 25.0)

	v.SetDefault("DEFAULT_RADIUS_KM", 500)
	v.SetDefault("DIGEST_LOOKBACK_HOURS", 24)
	v.SetDefault("DIGEST_MAX_ITEMS", 10)

	v.SetDefault("SCRAPE_KEYWORDS", "sneaker,shoes,nike,adidas")
	v.SetDefault("SOURCE_TIMEOUT_SECONDS", 20)
	v.SetDefault("SOURCE_MAX_ITEMS", 60)
	// Scrape at minute 7 of every hour, digest two minutes later.
	v.SetDefault("SCRAPE_JOB_SCHEDULE", "7 * * * *")
	v.SetDefault("DIGEST_JOB_SCHEDULE", "9 * * * *")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SourceTimeout = time.Duration(v.GetInt("SOURCE_TIMEOUT_SECONDS")) * time.Second

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		return nil, fmt.Errorf("FATAL: TELEGRAM_BOT_TOKEN is not set. This is required for digest dispatch")
	}

	return &cfg, nil
}

// ScrapeKeywordList splits the configured scrape keywords into tokens.
func (c *Config) ScrapeKeywordList() []string {
	var out []string
	for _, kw := range strings.Split(c.ScrapeKeywords, ",") {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
