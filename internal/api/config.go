package api

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration. Values come from READER_-prefixed
// environment variables and may be overridden by CLI flags.
type Config struct {
	Port           int           `env:"PORT" envDefault:"8080"`
	CorpusPath     string        `env:"CORPUS"`
	DBPath         string        `env:"DB" envDefault:"reader.db"`
	Voice          string        `env:"VOICE" envDefault:"default"`
	Rate           float64       `env:"RATE" envDefault:"1.0"`
	WrapDelay      time.Duration `env:"WRAP_DELAY" envDefault:"2s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","` // CORS allowed origins (empty = allow all)
}

// ConfigFromEnv loads configuration from the environment.
func ConfigFromEnv() (Config, error) {
	return env.ParseAsWithOptions[Config](env.Options{Prefix: "READER_"})
}
