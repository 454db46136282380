package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// Load reads config from a JSON5 file (tolerant of comments and trailing
// commas), then overlays environment variable overrides, then validates.
// A missing file is not an error — defaults plus env overrides are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overlays recognized environment variables onto cfg.
// Env values take precedence over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := parsePort(v); err == nil {
			c.Port = port
		} else {
			// leave the invalid value in place so Validate reports it
			if n, convErr := strconv.Atoi(v); convErr == nil {
				c.Port = n
			} else {
				c.Port = -1
			}
		}
	}

	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("HOST", &c.Host)
	envStr("ADVENTURES_DIR", &c.AdventuresDir)
	envStr("PROJECT_DIR", &c.ProjectDir)
	envStr("LOG_LEVEL", &c.LogLevel)
	envStr("NODE_ENV", &c.NodeEnv)
	envStr("STATIC_ROOT", &c.StaticRoot)

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.AllowedOrigins = origins
	}

	if v := os.Getenv("MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConnections = n
		} else {
			c.MaxConnections = -1
		}
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		c.LogFile = v == "true" || v == "1"
	}
	if v := os.Getenv("MOCK_SDK"); v != "" {
		c.MockSDK = v == "true" || v == "1"
	}

	envStr("AGENT_API_KEY", &c.AgentAPIKey)
	envStr("DATABASE_URL", &c.DatabaseURL)
	envStr("AGENT_COMMAND", &c.AgentCommand)

	if v := os.Getenv("AGENT_ARGS"); v != "" {
		args := strings.Split(v, ",")
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
		}
		c.AgentArgs = args
	}
}
