// Package sim is an in-memory ServiceNow Table API simulator. It serves the
// read/write subset relmap consumes, so the tool can be demoed and
// integration-tested without a real CMDB instance.
package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds simulator configuration values.
type Config struct {
	Port        string
	ListenHost  string
	LogLevel    string
	CORSOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       envOrDefault("SIM_PORT", "8090"),
		ListenHost: envOrDefault("SIM_LISTEN_HOST", "127.0.0.1"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
	}

	origins := envOrDefault("SIM_CORS_ORIGINS", "*")
	cfg.CORSOrigins = strings.Split(origins, ",")
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("SIM_PORT must be a port number, got %q", cfg.Port)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
