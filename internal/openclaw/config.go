// Package openclaw reads the OpenClaw configuration and cron files that the
// admin server exposes. Nothing in this package writes to those files.
package openclaw

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultGatewayPort is reported when openclaw.json does not set a port.
const DefaultGatewayPort = 18789

// ErrAgentNotFound is returned when no agent in the list has the requested ID.
var ErrAgentNotFound = errors.New("agent not found")

// Config is the typed subset of openclaw.json the server reads. The full
// document is kept as a generic map for the sanitized config dump.
type Config struct {
	Gateway  GatewaySection             `json:"gateway"`
	Agents   AgentsSection              `json:"agents"`
	Channels map[string]json.RawMessage `json:"channels"`

	raw map[string]any
}

// GatewaySection holds the gateway listener settings.
type GatewaySection struct {
	Port *int `json:"port"`
	HTTP struct {
		Port *int `json:"port"`
	} `json:"http"`
}

// AgentsSection holds the configured agents.
type AgentsSection struct {
	List []Agent `json:"list"`
}

// Load reads and parses the OpenClaw config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading openclaw config: %w", err)
	}
	return Parse(data)
}

// Parse decodes an openclaw.json document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing openclaw config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg.raw); err != nil {
		return nil, fmt.Errorf("parsing openclaw config: %w", err)
	}
	if cfg.raw == nil {
		cfg.raw = map[string]any{}
	}
	return &cfg, nil
}

// GatewayPort returns gateway.port, defaulting to 18789.
func (c *Config) GatewayPort() int {
	if c.Gateway.Port != nil {
		return *c.Gateway.Port
	}
	return DefaultGatewayPort
}

// GatewayHTTPPort returns gateway.http.port, defaulting to 18789.
func (c *Config) GatewayHTTPPort() int {
	if c.Gateway.HTTP.Port != nil {
		return *c.Gateway.HTTP.Port
	}
	return DefaultGatewayPort
}

// FindAgent returns the agent with the given ID.
func (c *Config) FindAgent(id string) (Agent, error) {
	for _, a := range c.Agents.List {
		if a.ID == id {
			return a, nil
		}
	}
	return Agent{}, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
}
