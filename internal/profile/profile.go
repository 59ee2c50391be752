// Package profile carries the process-level runtime configuration loaded
// from flags and environment variables before the engine starts.
package profile

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start the resolver process.
type Profile struct {
	// Mode is demo, dev or prod.
	Mode string
	// ConfigFile points at the optional YAML engine configuration.
	ConfigFile string
	// CatalogFile points at the YAML product catalog.
	CatalogFile string
	// Addr is the metrics listen address; empty disables the listener.
	Addr string
	// Port is the metrics listen port.
	Port int
	// Version is the service version pinned at startup.
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables. Values already
// set (from flags) win over the environment.
func (p *Profile) FromEnv() {
	if p.Mode == "" {
		p.Mode = getEnvOrDefault("FRESHCHAT_MODE", "demo")
	}
	if p.ConfigFile == "" {
		p.ConfigFile = getEnvOrDefault("FRESHCHAT_CONFIG", "")
	}
	if p.CatalogFile == "" {
		p.CatalogFile = getEnvOrDefault("FRESHCHAT_CATALOG", "")
	}
	if p.Addr == "" {
		p.Addr = getEnvOrDefault("FRESHCHAT_ADDR", "")
	}
	if p.Port == 0 {
		p.Port = getEnvOrDefaultInt("FRESHCHAT_PORT", 9108)
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.CatalogFile != "" {
		abs, err := filepath.Abs(p.CatalogFile)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve catalog file %s", p.CatalogFile)
		}
		if _, err := os.Stat(abs); err != nil {
			return errors.Wrapf(err, "unable to access catalog file %s", abs)
		}
		p.CatalogFile = abs
	}

	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}
	return nil
}
