package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/ghub"
	"github.com/spf13/viper"
)

// Config is the top-level ghubbattery configuration.
type Config struct {
	SettingsPath        string        `mapstructure:"settings_path"`
	RefreshInterval     time.Duration `mapstructure:"refresh_interval"`
	LowBatteryThreshold float64       `mapstructure:"low_battery_threshold"`
	LogLevel            string        `mapstructure:"log_level"`
	HistoryDB           string        `mapstructure:"history_db"`
	Output              Output        `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	// Width is the width of the charge bar in cells.
	Width int `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with GHUBBATTERY_ override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("settings_path", "")
	v.SetDefault("refresh_interval", DefaultRefreshInterval)
	v.SetDefault("low_battery_threshold", DefaultLowBatteryThreshold)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("history_db", "")
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	v.SetEnvPrefix("ghubbattery")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.SettingsPath == "" {
		cfg.SettingsPath = ghub.DefaultSettingsPath()
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = DBPath()
	}
	cfg.SettingsPath = expandPath(cfg.SettingsPath)
	cfg.HistoryDB = expandPath(cfg.HistoryDB)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects values the rest of the program cannot work with.
func (c *Config) validate() error {
	if c.RefreshInterval < MinRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s", MinRefreshInterval, c.RefreshInterval)
	}
	if c.LowBatteryThreshold < 0 || c.LowBatteryThreshold > 100 {
		return fmt.Errorf("low_battery_threshold must be between 0 and 100, got %v", c.LowBatteryThreshold)
	}
	if c.Output.Width <= 0 {
		c.Output.Width = DefaultOutput.Width
	}
	return nil
}

// DBPath returns the full path to the history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultHistoryDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
