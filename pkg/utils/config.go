package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"readlog/pkg/database"
)

type Config struct {
	DBPath   string `env:"READLOG_DB_PATH"`
	HTTPAddr string `env:"READLOG_HTTP_ADDR" envDefault:":8080"`
	SyncAddr string `env:"READLOG_SYNC_ADDR" envDefault:":7070"`

	JWTSecret   string        `env:"READLOG_JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer   string        `env:"READLOG_JWT_ISSUER" envDefault:"readlog"`
	JWTDuration time.Duration `env:"READLOG_JWT_TTL" envDefault:"24h"`

	// bcrypt hash; login is refused while empty
	OwnerPasswordHash string `env:"READLOG_OWNER_PASSWORD_HASH"`

	LogLevel  string `env:"READLOG_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"READLOG_LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads the READLOG_* environment. An unset database path falls
// back to database.DefaultConfig.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = database.DefaultConfig().Path
	}
	return cfg, nil
}

func (c Config) Database() database.Config {
	return database.Config{Path: c.DBPath}
}
