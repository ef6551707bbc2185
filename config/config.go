package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the restaurant service.
type Config struct {
	Port         string   `env:"PORT" envDefault:"8000"`
	MongoURL     string   `env:"MONGODB_URL,required"`
	DatabaseName string   `env:"DATABASE_NAME" envDefault:"restaurant"`
	SecretKey    string   `env:"SECRET_KEY,required"`
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:9000"`

	ExpoPushHost string        `env:"EXPO_PUSH_HOST" envDefault:"https://exp.host"`
	PushTimeout  time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`

	// RabbitMQURL enables the cross-instance realtime backbone when set.
	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RealtimeExchange string `env:"REALTIME_EXCHANGE" envDefault:"restaurant_events_fanout"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// BackboneEnabled reports whether realtime events go through RabbitMQ.
func (c *Config) BackboneEnabled() bool {
	return c.RabbitMQURL != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
