/*
Package configs is responsible for loading and parsing the application's configuration settings.

Settings are read from environment variables with caarlos0/env: the running environment,
the listening port, the allowed WebSocket/CORS origins and the per-connection outbound
queue size.
*/
package configs

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	minPort = 1024
	maxPort = 65535
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"3000"`

	// Security Settings
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Connection Settings
	SendQueueSize int `env:"SEND_QUEUE_SIZE" envDefault:"256"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads and validates the configuration from environment variables.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Port < minPort || cfg.Port > maxPort {
		return nil, fmt.Errorf("port number %d is outside the allowed range (%d-%d) to avoid privileged ports", cfg.Port, minPort, maxPort)
	}

	if cfg.SendQueueSize <= 0 {
		return nil, fmt.Errorf("SEND_QUEUE_SIZE must be positive, got %d", cfg.SendQueueSize)
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins

	return cfg, nil
}
