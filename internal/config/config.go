// Package config loads the hookconf tool configuration: where configuration
// and backup files live, the environment variable prefix, cache lifetime,
// and audit store settings.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Backup holds backup retention and scheduling settings.
type Backup struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	Schedule   string `yaml:"schedule" mapstructure:"schedule"`
}

// Audit holds the durable audit store settings.
type Audit struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Log holds logging settings.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Config is the hookconf tool configuration.
type Config struct {
	ConfigDir   string        `yaml:"config_dir" mapstructure:"config_dir"`
	BaseName    string        `yaml:"base_name" mapstructure:"base_name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	EnvPrefix   string        `yaml:"env_prefix" mapstructure:"env_prefix"`
	CacheTTL    time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	Backup      Backup        `yaml:"backup" mapstructure:"backup"`
	Audit       Audit         `yaml:"audit" mapstructure:"audit"`
	Log         Log           `yaml:"log" mapstructure:"log"`
}

// Default returns the tool defaults.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		ConfigDir:   dataDir,
		BaseName:    "hookconf",
		Environment: "development",
		EnvPrefix:   "HOOK_CONFIG_",
		CacheTTL:    5 * time.Minute,
		Backup: Backup{
			Dir:        filepath.Join(dataDir, "backups"),
			MaxBackups: 10,
		},
		Audit: Audit{
			Enabled: false,
			Path:    filepath.Join(dataDir, "audit"),
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// ConfigPath returns the path of the active configuration file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.ConfigDir, c.BaseName+"."+c.Environment+".json")
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return "./data"
	}
	return filepath.Join(home, ".hookconf")
}

// Load reads the tool configuration from a YAML file, falling back to the
// standard search paths, with HOOKCONF_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HOOKCONF")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hookconf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hookconf/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".hookconf"))
		}
	}

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		// An explicitly named file must exist; auto-discovery may come up
		// empty.
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
