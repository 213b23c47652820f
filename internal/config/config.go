package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultAuthSecret is the AUTH_SECRET fallback. It only suits local TUI and CLI use.
const DefaultAuthSecret = "change-me"

var ErrInsecureSecret = errors.New("config: AUTH_SECRET is empty or left at its default")

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Storage struct {
		// Driver selects the persisted-state backend: "bolt" or "postgres".
		Driver   string `envconfig:"STORAGE_DRIVER" default:"bolt"`
		BoltPath string `envconfig:"STORAGE_BOLT_PATH" default:"tally.db"`
		List     string `envconfig:"STORAGE_LIST" default:"default"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		// CORSOrigins is a comma separated list; empty allows any origin.
		CORSOrigins []string      `envconfig:"CORS_ORIGINS"`
	}

	Catalog struct {
		PrimaryURL   string        `envconfig:"CATALOG_PRIMARY_URL" default:"https://eandata.com/feed/"`
		PrimaryKey   string        `envconfig:"CATALOG_PRIMARY_KEY"`
		SecondaryURL string        `envconfig:"CATALOG_SECONDARY_URL"`
		Timeout      time.Duration `envconfig:"CATALOG_TIMEOUT" default:"10s"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET" default:"change-me"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"12h"`
	}

	Ledger struct {
		RequireCeiling bool `envconfig:"LEDGER_REQUIRE_CEILING" default:"false"`
	}

	Scanner struct {
		FFmpegPath string `envconfig:"SCANNER_FFMPEG" default:"ffmpeg"`
		Device     string `envconfig:"SCANNER_DEVICE"`
		Width      int    `envconfig:"SCANNER_WIDTH" default:"1280"`
		Height     int    `envconfig:"SCANNER_HEIGHT" default:"720"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// ValidateServer checks the settings the HTTP API cannot run safely without.
// Tokens signed with a well-known secret can be forged by anyone.
func (c *Config) ValidateServer() error {
	secret := strings.TrimSpace(c.Auth.Secret)
	if secret == "" || secret == DefaultAuthSecret {
		return ErrInsecureSecret
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
