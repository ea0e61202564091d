package dispatch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nmirabets/gen-ui-app/gateway"
	"github.com/nmirabets/gen-ui-app/session"
)

// Config holds initialization parameters for the dispatcher and its
// collaborators. Each section delegates to that subsystem's config-driven
// constructor.
type Config struct {
	Gateway  gateway.Config            `json:"gateway"`
	Gateways map[string]gateway.Config `json:"gateways,omitempty"`
	Session  session.Config            `json:"session"`
	Observer string                    `json:"observer,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Gateway: gateway.DefaultConfig(),
		Session: session.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Gateway.Merge(&source.Gateway)
	c.Session.Merge(&source.Session)

	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if len(source.Gateways) > 0 {
		c.Gateways = source.Gateways
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
