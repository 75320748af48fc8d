// Package config loads CLI defaults from the environment and an optional .env file.
package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Url        string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	Model      string `env:"OLLAMA_MODEL" envDefault:"deepseek-coder:6.7b"`
	MaxRetries int    `env:"OLLAMA_MAX_RETRIES" envDefault:"3"`
	LogLevel   string `env:"OLLAMA_LOG_LEVEL" envDefault:"info"`
}

// Defaults returns the configuration of an empty environment.
func Defaults() Config {
	var cfg Config
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Load reads .env files (missing files are ignored) and then the process environment.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse environment")
	}
	if cfg.MaxRetries <= 0 {
		return Config{}, errors.Errorf("OLLAMA_MAX_RETRIES must be positive, got %d", cfg.MaxRetries)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, errors.Wrapf(err, "invalid OLLAMA_LOG_LEVEL")
	}
	return cfg, nil
}
