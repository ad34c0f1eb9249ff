package otel

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string `envconfig:"MCLAUDE_OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"MCLAUDE_OTEL_ENABLED"`
	Insecure bool   `envconfig:"MCLAUDE_OTEL_INSECURE"`
}

// LoadConfig loads OTEL configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load OTEL config: %w", err)
	}
	return cfg, nil
}

// Active reports whether an exporter should be created.
func (c Config) Active() bool {
	return c.Enabled && c.Endpoint != ""
}
