package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

type APIConfig struct {
	Addr        string     `env:"GAME_API_ADDR" envDefault:":5000"`
	Port        string     `env:"PORT"`
	SaveFile    string     `env:"GAME_SAVE_FILE" envDefault:"game_data.xml"`
	Store       string     `env:"GAME_STORE" envDefault:"file"`
	DatabaseURL string     `env:"DATABASE_URL"`
	SaveSlot    string     `env:"GAME_SAVE_SLOT" envDefault:"default"`
	LogLevel    slog.Level `env:"GAME_LOG_LEVEL" envDefault:"info"`
}

type CLIConfig struct {
	APIBaseURL string `env:"GAZD_API_BASE_URL" envDefault:"http://localhost:5000"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if port := strings.TrimSpace(cfg.Port); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Addr = port
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	switch cfg.Store {
	case StoreFile:
		if strings.TrimSpace(cfg.SaveFile) == "" {
			return cfg, fmt.Errorf("GAME_SAVE_FILE must not be empty")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for GAME_STORE=postgres")
		}
	default:
		return cfg, fmt.Errorf("unknown GAME_STORE %q", cfg.Store)
	}
	return cfg, nil
}

func LoadCLIFromEnv() (CLIConfig, error) {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg, nil
}
