// Package config loads runtime configuration from flags and PASSFS_*
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MountConfig controls how the filesystem is mounted.
type MountConfig struct {
	ReadOnly   bool `mapstructure:"readonly"`
	AllowOther bool `mapstructure:"allowother"`
	Debug      bool `mapstructure:"debug"`
}

// Config is the full runtime configuration.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Mount MountConfig `mapstructure:"mount"`
}

// flagBindings maps configuration keys to their command-line flags.
var flagBindings = map[string]string{
	"log.level":        "log-level",
	"log.format":       "log-format",
	"mount.readonly":   "read-only",
	"mount.allowother": "allow-other",
	"mount.debug":      "debug",
}

// Load builds the configuration from defaults, PASSFS_* environment
// variables and the given flag set, in increasing order of precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("mount.readonly", false)
	v.SetDefault("mount.allowother", false)
	v.SetDefault("mount.debug", false)

	v.SetEnvPrefix("PASSFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the process cannot run with.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	return nil
}
