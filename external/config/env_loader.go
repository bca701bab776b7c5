package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/campushub/attendance/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env          string `env:"ENV" envDefault:"production"`
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	LateAfterMin int    `env:"LATE_AFTER_MIN" envDefault:"10"`
}

func Load() (*internalconfig.Config, error) {
	// A local .env is a convenience for development; its absence is fine.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:          raw.Env,
		HTTPAddr:     raw.HTTPAddr,
		DatabaseURL:  raw.DatabaseURL,
		LateAfterMin: raw.LateAfterMin,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
