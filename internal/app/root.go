// Package app contains the Cobra command tree for ghubbattery.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor  bool
	flagJSON     bool
	flagVerbose  bool
	flagConfig   string
	flagSettings string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ghubbattery",
	Short: "Battery levels of Logitech G HUB devices",
	Long: `ghubbattery reads the battery state that Logitech G HUB records for
wireless mice, keyboards and headsets from G HUB's local settings database.
It never writes to that database.

Run 'ghubbattery' with no arguments to see the current battery levels.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatus,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/ghubbattery/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Path to the G HUB settings.db (default: %LOCALAPPDATA%\\LGHUB\\settings.db)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output (same as --log-level debug)")
}
