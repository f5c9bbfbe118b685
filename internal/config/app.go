package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type App struct {
	Addr        string `env:"APP_ADDR" envDefault:":8080"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
	LogFile     string `env:"LOG_FILE"`
	LogMaxSize  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxAge   int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

func NewApp() (*App, error) {
	cfg, err := env.ParseAs[App]()
	if err != nil {
		return nil, fmt.Errorf("unable to parse app config: %w", err)
	}
	return &cfg, nil
}
