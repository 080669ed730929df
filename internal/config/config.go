// Package config provides configuration file parsing and Homebrew prefix
// resolution for phpswitch.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Dir returns the phpswitch config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/phpswitch if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "phpswitch"), nil
}

// DefaultPath returns the path of the optional config file,
// {config dir}/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Config holds the user-tunable settings. Every field is optional; zero
// values fall back to defaults.
type Config struct {
	// Prefix overrides Homebrew prefix detection. Supports ~ expansion.
	Prefix string `yaml:"prefix"`

	// ServiceWaitSeconds bounds how long `switch --wait` polls for the
	// php-fpm service to report started.
	ServiceWaitSeconds int `yaml:"service_wait_seconds"`

	// History enables or disables the switch history log. Defaults to on.
	History *bool `yaml:"history,omitempty"`
}

// HistoryEnabled returns the effective history flag applying defaults.
func (c Config) HistoryEnabled() bool {
	if c.History == nil {
		return true
	}
	return *c.History
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Prefix:             "",
		ServiceWaitSeconds: 30,
		History:            boolPtr(true),
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.ServiceWaitSeconds == 0 {
		c.ServiceWaitSeconds = defaults.ServiceWaitSeconds
	}
	if c.History == nil {
		c.History = boolPtr(true)
	}
}

// ResolvePrefix returns the effective Homebrew prefix. Precedence: the
// explicit flag value, the HOMEBREW_PREFIX environment variable, the
// configured prefix, then the platform default. Tilde expands in all
// user-supplied values.
func (c Config) ResolvePrefix(flag string) (string, error) {
	for _, candidate := range []string{flag, os.Getenv("HOMEBREW_PREFIX"), c.Prefix} {
		if candidate == "" {
			continue
		}
		expanded, err := homedir.Expand(candidate)
		if err != nil {
			return "", fmt.Errorf("expand prefix %q: %w", candidate, err)
		}
		return expanded, nil
	}
	return DefaultPrefix(), nil
}

// DefaultPrefix returns the standard Homebrew prefix for this machine:
// /opt/homebrew on Apple Silicon, /usr/local on Intel.
func DefaultPrefix() string {
	if runtime.GOARCH == "arm64" {
		return "/opt/homebrew"
	}
	return "/usr/local"
}

func boolPtr(v bool) *bool {
	return &v
}
