package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/blackwell-systems/ghubbattery/internal/config"
	"github.com/blackwell-systems/ghubbattery/internal/ghub"
	"github.com/blackwell-systems/ghubbattery/internal/output"
	"github.com/sirupsen/logrus"
)

// setup loads the configuration, applies command-line overrides and builds
// the logger every command uses.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if flagSettings != "" {
		cfg.SettingsPath = flagSettings
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagVerbose {
		level = "debug"
	}
	log := newLogger(level, os.Stderr)

	output.ConfigureColor(cfg.Output.Color && !flagNoColor)

	log.WithField("settings", cfg.SettingsPath).Debug("configuration loaded")
	return cfg, log, nil
}

// newLogger returns a text logger at the given level. Unknown levels fall
// back to info.
func newLogger(level string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("level", level).Warn("unknown log level, using info")
		return log
	}
	log.SetLevel(lvl)
	return log
}

// newCache builds the battery cache over the configured settings database.
func newCache(cfg *config.Config, log logrus.FieldLogger) *battery.Cache {
	return battery.New(
		ghub.NewStore(cfg.SettingsPath),
		cfg.RefreshInterval,
		log.WithField("component", "battery"),
	)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stateLabel describes a device's power state in a word.
func stateLabel(s battery.BatteryStats) string {
	switch {
	case !s.IsConnected:
		return "disconnected"
	case s.IsCharging:
		return "charging"
	default:
		return "discharging"
	}
}

// styledState renders stateLabel with a color matching the state.
func styledState(s battery.BatteryStats) string {
	label := stateLabel(s)
	switch label {
	case "disconnected":
		return output.StyleMuted.Render(label)
	case "charging":
		return output.StyleSuccess.Render(label)
	default:
		return label
	}
}
