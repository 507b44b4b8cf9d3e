package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                    string        `env:"PORT" envDefault:"8080"`
	Env                     string        `env:"ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	FirebaseCredentialsPath string        `env:"FIREBASE_CREDENTIALS_PATH"`
	PostgresConnStr         string        `env:"POSTGRES_CONN_STR,required,notEmpty"`
	MongoURI                string        `env:"MONGO_URI,required,notEmpty"`
	MongoDatabase           string        `env:"MONGO_DATABASE" envDefault:"socialmedia"`
	JWTSecret               string        `env:"JWT_SECRET,required,notEmpty"`
	MetricsPort             string        `env:"METRICS_PORT" envDefault:"9090"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	FeedFanoutLimit         int           `env:"FEED_FANOUT_LIMIT" envDefault:"8"`
}

// Load reads the configuration from the environment, after applying an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.FeedFanoutLimit < 1 {
		c.FeedFanoutLimit = 1
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
