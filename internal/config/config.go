package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultPort          = 8093
	DefaultGatewayURL    = "http://127.0.0.1:18789"
	DefaultGatewayOrigin = "*"
	DefaultRelayTimeout  = 120 * time.Second
	DefaultChunkSize     = 8192
	DefaultMaxBodyBytes  = 32 << 20
	DefaultOpenClawPath  = "~/.openclaw/openclaw.json"
	DefaultTunnelAPIURL  = "http://127.0.0.1:4040/api/tunnels"
	DefaultTunnelPort    = 8095
)

// Defaults returns a Config with sensible defaults applied.
// Paths derived from the OpenClaw config location are filled in by Load.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         DefaultPort,
			Bind:         "lan",
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Gateway: GatewayConfig{
			URL:       DefaultGatewayURL,
			Origin:    DefaultGatewayOrigin,
			Timeout:   DefaultRelayTimeout,
			ChunkSize: DefaultChunkSize,
		},
		OpenClaw: OpenClawConfig{
			ConfigPath: DefaultOpenClawPath,
		},
		Cache: CacheConfig{
			Agents:   30 * time.Second,
			Channels: 30 * time.Second,
			Config:   30 * time.Second,
			Sessions: 10 * time.Second,
		},
		Sessions: SessionsConfig{
			Command: "openclaw",
			Args:    []string{"sessions", "--json"},
			Timeout: 10 * time.Second,
		},
		Tunnel: TunnelConfig{
			APIURL:       DefaultTunnelAPIURL,
			Command:      "ngrok",
			Port:         DefaultTunnelPort,
			ProbeTimeout: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}
