package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	API      API
	Session  Session
	Redis    Redis
	Cache    Cache
	Jobs     Jobs
	Report   Report
}

type API struct {
	Url     string        `env:"TRACKER_API_URL"`
	Timeout time.Duration `env:"TRACKER_API_TIMEOUT" envDefault:"10s"`
	Debug   bool          `env:"TRACKER_API_DEBUG" envDefault:"false"`
}

type Session struct {
	// Storage selects where the credential and identity live: "file" keeps
	// them on the local disk, "redis" shares them across devices.
	Storage string `env:"SESSION_STORAGE" envDefault:"file"`
	Dir     string `env:"SESSION_DIR" envDefault:".folioterm"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Cache struct {
	PortfoliosExpiration time.Duration `env:"CACHE_PORTFOLIOS_EXPIRATION" envDefault:"5m"`
	HoldingsExpiration   time.Duration `env:"CACHE_HOLDINGS_EXPIRATION" envDefault:"1m"`
}

type Jobs struct {
	RefreshHoldingsInterval time.Duration `env:"REFRESH_HOLDINGS_JOB_INTERVAL" envDefault:"5m"`
	ReportCleanupInterval   time.Duration `env:"REPORT_CLEANUP_JOB_INTERVAL" envDefault:"24h"`
}

type Report struct {
	DriveCredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	RetentionAge         time.Duration `env:"REPORT_RETENTION_AGE" envDefault:"720h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
