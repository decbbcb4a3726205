package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/DoyleJ11/territory-backend/internal/engine"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidRule = errors.New("game rules must be positive")

type Config struct {
	Addr           string        `env:"TERRITORY_ADDR" envDefault:":8080"`
	Seats          int           `env:"TERRITORY_SEATS" envDefault:"2"`
	MinTransfer    int           `env:"TERRITORY_MIN_TRANSFER" envDefault:"10"`
	TickPeriod     time.Duration `env:"TERRITORY_TICK_PERIOD" envDefault:"1s"`
	GrowthPerTick  int           `env:"TERRITORY_GROWTH_PER_TICK" envDefault:"1"`
	StartTroops    int           `env:"TERRITORY_START_TROOPS" envDefault:"1"`
	DatabaseURL    string        `env:"TERRITORY_DATABASE_URL"`
	AllowedOrigins []string      `env:"TERRITORY_ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads envFile into the process environment when it exists, then parses
// the environment. A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int64
	}{
		{"TERRITORY_SEATS", int64(c.Seats)},
		{"TERRITORY_MIN_TRANSFER", int64(c.MinTransfer)},
		{"TERRITORY_TICK_PERIOD", int64(c.TickPeriod)},
		{"TERRITORY_GROWTH_PER_TICK", int64(c.GrowthPerTick)},
		{"TERRITORY_START_TROOPS", int64(c.StartTroops)},
	}
	for _, chk := range checks {
		if chk.value <= 0 {
			return fmt.Errorf("%s=%d: %w", chk.name, chk.value, ErrInvalidRule)
		}
	}
	return nil
}

// Rules projects the game constants out of the config.
func (c Config) Rules() engine.Rules {
	return engine.Rules{
		SeatCapacity:  c.Seats,
		MinTransfer:   c.MinTransfer,
		GrowthPerTick: c.GrowthPerTick,
		StartTroops:   c.StartTroops,
	}
}
