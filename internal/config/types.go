package config

import "time"

// Config is the root configuration for the ClawChat server.
// It describes the server itself; the OpenClaw config it exposes is read separately.
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Gateway  GatewayConfig  `yaml:"gateway,omitempty"`
	OpenClaw OpenClawConfig `yaml:"openclaw,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Sessions SessionsConfig `yaml:"sessions,omitempty"`
	Tunnel   TunnelConfig   `yaml:"tunnel,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ServerConfig controls the local HTTP server.
type ServerConfig struct {
	Port           int       `yaml:"port,omitempty"`
	Bind           string    `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string    `yaml:"customBindHost,omitempty"`
	APIKey         string    `yaml:"apiKey,omitempty"` // gates sensitive endpoints when set
	AllowedOrigins []string  `yaml:"allowedOrigins,omitempty"`
	StaticDir      string    `yaml:"staticDir,omitempty"`
	MaxBodyBytes   int64     `yaml:"maxBodyBytes,omitempty"`
	Metrics        *bool     `yaml:"metrics,omitempty"` // defaults to true
	TLS            ServerTLS `yaml:"tls,omitempty"`
}

// MetricsEnabled reports whether /metrics is served.
func (s ServerConfig) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// ServerTLS configures TLS for the local server.
type ServerTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// GatewayConfig points at the upstream OpenClaw gateway that executes chat completions.
type GatewayConfig struct {
	URL       string        `yaml:"url,omitempty"`
	Token     string        `yaml:"token,omitempty"`
	Origin    string        `yaml:"origin,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`   // bounds each upstream wait
	ChunkSize int           `yaml:"chunkSize,omitempty"` // stream relay read size
}

// OpenClawConfig locates the external OpenClaw state this server reads.
type OpenClawConfig struct {
	ConfigPath string `yaml:"configPath,omitempty"`
	CronPath   string `yaml:"cronPath,omitempty"`  // default: <config dir>/cron/jobs.json
	SharedDir  string `yaml:"sharedDir,omitempty"` // default: <config dir>/workspace/shared
	Watch      *bool  `yaml:"watch,omitempty"`     // purge caches on file change; defaults to true
}

// WatchEnabled reports whether the OpenClaw files are watched for changes.
func (o OpenClawConfig) WatchEnabled() bool {
	return o.Watch == nil || *o.Watch
}

// CacheConfig sets the time-to-live of each cached endpoint.
type CacheConfig struct {
	Agents   time.Duration `yaml:"agents,omitempty"`
	Channels time.Duration `yaml:"channels,omitempty"`
	Config   time.Duration `yaml:"config,omitempty"`
	Sessions time.Duration `yaml:"sessions,omitempty"`
}

// SessionsConfig describes the external CLI that lists live sessions.
type SessionsConfig struct {
	Command string        `yaml:"command,omitempty"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// TunnelConfig controls the ngrok integration.
type TunnelConfig struct {
	APIURL       string        `yaml:"apiURL,omitempty"`
	Command      string        `yaml:"command,omitempty"`
	Port         int           `yaml:"port,omitempty"`
	ProbeTimeout time.Duration `yaml:"probeTimeout,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
}
