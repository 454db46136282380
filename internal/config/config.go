// Package config loads and validates the session engine's configuration:
// a JSON5 file overlaid with environment variable overrides, matching the
// recognized-keys table in the operational runbook.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the root runtime configuration for the session engine.
type Config struct {
	Port           int      `json:"port"`
	Host           string   `json:"host"`
	AdventuresDir  string   `json:"adventuresDir"`
	ProjectDir     string   `json:"projectDir"`
	AllowedOrigins []string `json:"allowedOrigins"`
	MaxConnections int      `json:"maxConnections"`
	LogLevel       string   `json:"logLevel"`
	LogFile        bool     `json:"logFile"`
	NodeEnv        string   `json:"nodeEnv"`
	StaticRoot     string   `json:"staticRoot"`
	MockSDK        bool     `json:"mockSdk"`

	// AgentAPIKey is the upstream agent credential. Never read from the
	// JSON file — env only, and never marshaled back out.
	AgentAPIKey string `json:"-"`

	// DatabaseURL optionally points the Adventure Index at Postgres;
	// empty selects the embedded SQLite backend.
	DatabaseURL string `json:"-"`

	// AgentCommand launches the external Game Master agent as a
	// co-process (ignored when MockSDK is set). Empty uses the compiled
	// default.
	AgentCommand string   `json:"agentCommand"`
	AgentArgs    []string `json:"agentArgs"`
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true,
}

// Default returns a Config with the documented defaults applied.
func Default() *Config {
	return &Config{
		Port:           3000,
		Host:           "localhost",
		AdventuresDir:  "./adventures",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		MaxConnections: 100,
		LogLevel:       "info",
		StaticRoot:     "./static",
		AgentCommand:   "agent-gm",
	}
}

// Validate checks every recognized key and composes all violations into a
// single error, so startup reports everything wrong at once instead of
// one field at a time.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.ProjectDir == "" {
		problems = append(problems, "PROJECT_DIR is required")
	}
	if c.MaxConnections < 1 {
		problems = append(problems, fmt.Sprintf("MAX_CONNECTIONS must be a positive integer, got %d", c.MaxConnections))
	}
	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of trace|debug|info|warn|error|fatal, got %q", c.LogLevel))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
}

// IsProduction reports whether NODE_ENV indicates a production deployment.
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("PORT must be an integer, got %q", s)
	}
	return n, nil
}
