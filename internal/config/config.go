package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server configures cmd/server.
type Server struct {
	Port      string        `env:"PORT" envDefault:"8080"`
	DBPath    string        `env:"DB_PATH" envDefault:"data/gameshelf.db"`
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"LOG_FORMAT" envDefault:"text"`
}

// Client configures cmd/shelf.
type Client struct {
	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"https://api.rawg.io/api"`
	CatalogAPIKey  string        `env:"CATALOG_API_KEY"`
	CatalogRPS     int           `env:"CATALOG_RPS" envDefault:"5"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"15s"`
	ServerURL      string        `env:"SHELF_SERVER_URL" envDefault:"http://localhost:8080"`
	Email          string        `env:"SHELF_EMAIL"`
	Password       string        `env:"SHELF_PASSWORD"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"warn"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadServer() (*Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadClient() (*Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.CatalogRPS <= 0 {
		return nil, fmt.Errorf("CATALOG_RPS must be positive, got %d", cfg.CatalogRPS)
	}
	return &cfg, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
