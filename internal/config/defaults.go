// Package config provides configuration loading and defaults for ghubbattery.
package config

import "time"

// DefaultConfigDir is the default location for ghubbattery configuration.
const DefaultConfigDir = "~/.config/ghubbattery"

// DefaultHistoryDBName is the filename for the battery history database.
const DefaultHistoryDBName = "history.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultRefreshInterval is how often the G HUB settings are re-read.
const DefaultRefreshInterval = 10 * time.Second

// MinRefreshInterval is the shortest accepted refresh interval.
const MinRefreshInterval = time.Second

// DefaultLowBatteryThreshold is the percentage below which a device is
// reported as low.
const DefaultLowBatteryThreshold = 20.0

// DefaultLogLevel is the logrus level used when none is configured.
const DefaultLogLevel = "info"

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 20,
}
