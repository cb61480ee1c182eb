package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Server.APIKey = expandEnvVars(cfg.Server.APIKey)
	cfg.Gateway.Token = expandEnvVars(cfg.Gateway.Token)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			applyDefaults(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Decode interprets a raw config map the way Load interprets the file.
// Environment overrides are not applied, so the result reflects the file alone.
func Decode(raw map[string]any) (Config, error) {
	cfg := Defaults()
	data, err := yaml.Marshal(raw)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "invalid config: " + err.Error()}
	}
	expandSensitiveFields(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// ToRaw converts cfg to a generic map keyed like the config file.
func ToRaw(cfg Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults and resolves
// the OpenClaw file locations.
func applyDefaults(cfg *Config) {
	d := Defaults()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = d.Server.Bind
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
	cfg.Server.StaticDir = ExpandHome(cfg.Server.StaticDir)

	if cfg.Gateway.URL == "" {
		cfg.Gateway.URL = d.Gateway.URL
	}
	cfg.Gateway.URL = strings.TrimSuffix(cfg.Gateway.URL, "/")
	if cfg.Gateway.Origin == "" {
		cfg.Gateway.Origin = d.Gateway.Origin
	}
	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = d.Gateway.Timeout
	}
	if cfg.Gateway.ChunkSize <= 0 {
		cfg.Gateway.ChunkSize = d.Gateway.ChunkSize
	}

	if cfg.OpenClaw.ConfigPath == "" {
		cfg.OpenClaw.ConfigPath = d.OpenClaw.ConfigPath
	}
	cfg.OpenClaw.ConfigPath = ExpandHome(cfg.OpenClaw.ConfigPath)
	base := filepath.Dir(cfg.OpenClaw.ConfigPath)
	if cfg.OpenClaw.CronPath == "" {
		cfg.OpenClaw.CronPath = filepath.Join(base, "cron", "jobs.json")
	}
	cfg.OpenClaw.CronPath = ExpandHome(cfg.OpenClaw.CronPath)
	if cfg.OpenClaw.SharedDir == "" {
		cfg.OpenClaw.SharedDir = filepath.Join(base, "workspace", "shared")
	}
	cfg.OpenClaw.SharedDir = ExpandHome(cfg.OpenClaw.SharedDir)

	if cfg.Cache.Agents <= 0 {
		cfg.Cache.Agents = d.Cache.Agents
	}
	if cfg.Cache.Channels <= 0 {
		cfg.Cache.Channels = d.Cache.Channels
	}
	if cfg.Cache.Config <= 0 {
		cfg.Cache.Config = d.Cache.Config
	}
	if cfg.Cache.Sessions <= 0 {
		cfg.Cache.Sessions = d.Cache.Sessions
	}

	if cfg.Sessions.Command == "" {
		cfg.Sessions.Command = d.Sessions.Command
		if len(cfg.Sessions.Args) == 0 {
			cfg.Sessions.Args = d.Sessions.Args
		}
	}
	if cfg.Sessions.Timeout <= 0 {
		cfg.Sessions.Timeout = d.Sessions.Timeout
	}

	if cfg.Tunnel.APIURL == "" {
		cfg.Tunnel.APIURL = d.Tunnel.APIURL
	}
	if cfg.Tunnel.Command == "" {
		cfg.Tunnel.Command = d.Tunnel.Command
	}
	if cfg.Tunnel.Port == 0 {
		cfg.Tunnel.Port = d.Tunnel.Port
	}
	if cfg.Tunnel.ProbeTimeout <= 0 {
		cfg.Tunnel.ProbeTimeout = d.Tunnel.ProbeTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = d.Logging.Style
	}
}

// applyEnvOverrides reads environment variables and overrides config values.
// PORT, GATEWAY_URL, GATEWAY_TOKEN and OPENCLAW_CONFIG_PATH keep the names
// the web UI launcher scripts already export.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GATEWAY_URL"); v != "" {
		cfg.Gateway.URL = v
	}
	if v := os.Getenv("GATEWAY_TOKEN"); v != "" {
		cfg.Gateway.Token = v
	}
	if v := os.Getenv("OPENCLAW_CONFIG_PATH"); v != "" {
		cfg.OpenClaw.ConfigPath = v
	}
	if v := os.Getenv("CLAWCHAT_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("CLAWCHAT_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("CLAWCHAT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
