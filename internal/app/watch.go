package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/blackwell-systems/ghubbattery/internal/config"
	"github.com/blackwell-systems/ghubbattery/internal/output"
	"github.com/blackwell-systems/ghubbattery/internal/store"
	"github.com/blackwell-systems/ghubbattery/internal/watcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	watchDaemon   bool
	watchInterval time.Duration
	watchStop     bool
	watchQuiet    bool
	watchRecord   bool
	watchNotify   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow battery levels and alert when a device runs low",
	Long: `Keep the battery snapshot fresh in the background and print the level of
every device on each check. Low and critical levels, plugging in, unplugging
and devices dropping off are reported as desktop notifications and/or
terminal alerts.

Examples:
  ghubbattery watch                    # run in foreground (ctrl-c to stop)
  ghubbattery watch --record           # also store every reading in the history database
  ghubbattery watch --interval 1m      # print and check every minute
  ghubbattery watch --daemon           # run in background, write PID file
  ghubbattery watch --stop             # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Check interval (default: refresh_interval from config)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "Store every reading in the history database")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", true, "Send desktop notifications for alerts")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	interval := cfg.RefreshInterval
	if watchInterval != 0 {
		interval = watchInterval
	}
	if interval < config.MinRefreshInterval {
		return fmt.Errorf("interval must be at least %s, got %s", config.MinRefreshInterval, interval)
	}

	if watchDaemon {
		return runDaemon(cmd.Context(), cfg, log, interval)
	}
	return runForeground(cmd.Context(), cfg, log, interval, os.Stdout)
}

// watchSession wires the cache, the watcher and the optional history store
// for one run of the watch command.
type watchSession struct {
	cache    *battery.Cache
	watcher  *watcher.Watcher
	history  *store.DB
	log      logrus.FieldLogger
	out      io.Writer
	low      float64
	quiet    bool
	notify   func(watcher.Alert) error
	disabled bool
}

func newWatchSession(cfg *config.Config, log logrus.FieldLogger, interval time.Duration, out io.Writer) *watchSession {
	s := &watchSession{
		cache:  newCache(cfg, log),
		log:    log,
		out:    out,
		low:    cfg.LowBatteryThreshold,
		quiet:  watchQuiet,
		notify: watcher.Notify,
	}
	if !watchNotify {
		s.notify = nil
	}
	s.watcher = watcher.New(s.cache, interval, s.onAlert)
	s.watcher.LowThreshold = cfg.LowBatteryThreshold
	s.watcher.OnTick = s.onTick
	return s
}

// run drives the cache refresh loop and the watcher until ctx is done.
func (s *watchSession) run(ctx context.Context) error {
	// Populate the first snapshot before the watcher's first tick so the
	// baseline is not empty.
	_ = s.cache.DeviceList(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.cache.Run(gctx) })
	g.Go(func() error { return s.watcher.Run(gctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *watchSession) onAlert(a watcher.Alert) {
	s.log.WithFields(logrus.Fields{
		"device": a.Device,
		"level":  a.Level,
	}).Info(a.Title)

	if s.notify != nil {
		if err := s.notify(a); err != nil {
			s.log.WithError(err).Debug("desktop notification failed")
		}
	}
	if !s.quiet {
		printAlert(s.out, a)
	}
}

func (s *watchSession) onTick(snap *battery.Snapshot) {
	if s.cache.State() == battery.Disabled && !s.disabled {
		s.disabled = true
		if !s.quiet {
			fmt.Fprintf(s.out, "[%s] %s battery refresh stopped: %v\n",
				time.Now().Format("15:04:05"),
				output.StyleError.Render("✗"),
				s.cache.LastError())
		}
	}

	if s.history != nil && snap.Len() > 0 {
		if err := s.history.InsertReadings(readingsFromSnapshot(snap)); err != nil {
			s.log.WithError(err).Warn("recording readings failed")
		}
	}

	if s.quiet {
		return
	}
	printSnapshotLine(s.out, snap, s.low)
}

// runForeground runs the watcher in the foreground with live terminal output.
func runForeground(parent context.Context, cfg *config.Config, log *logrus.Logger, interval time.Duration, out io.Writer) error {
	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	defer stop()

	s := newWatchSession(cfg, log, interval, out)
	if watchRecord {
		db, err := store.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer func() { _ = db.Close() }()
		s.history = db
	}

	if !watchQuiet {
		fmt.Fprintf(out, "ghubbattery watching %s (checking every %s)\n", cfg.SettingsPath, interval)
	}

	if err := s.run(ctx); err != nil {
		return err
	}
	if !watchQuiet {
		fmt.Fprintln(out, "\nStopped.")
	}
	return nil
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(parent context.Context, cfg *config.Config, log *logrus.Logger, interval time.Duration) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	log.SetOutput(logFile)
	log.WithFields(logrus.Fields{"pid": pid, "interval": interval}).Info("ghubbattery daemon started")

	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	defer stop()

	s := newWatchSession(cfg, log, interval, io.Discard)
	s.quiet = true
	if watchRecord {
		db, err := store.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer func() { _ = db.Close() }()
		s.history = db
	}

	if err := s.run(ctx); err != nil {
		log.WithError(err).Error("daemon stopped")
		return err
	}
	log.Info("daemon stopped")
	return nil
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// readingsFromSnapshot converts a snapshot into history rows.
func readingsFromSnapshot(snap *battery.Snapshot) []store.Reading {
	entries := snap.Entries()
	readings := make([]store.Reading, 0, len(entries))
	for _, e := range entries {
		readings = append(readings, store.Reading{
			TakenAt:     snap.TakenAt,
			Device:      e.Name,
			Percentage:  e.Stats.Percentage,
			Millivolts:  e.Stats.Millivolts,
			IsCharging:  e.Stats.IsCharging,
			IsConnected: e.Stats.IsConnected,
		})
	}
	return readings
}

// printSnapshotLine prints one compact line with every device's level.
func printSnapshotLine(w io.Writer, snap *battery.Snapshot, low float64) {
	timestamp := time.Now().Format("15:04:05")
	if snap.Len() == 0 {
		fmt.Fprintf(w, "[%s] %s no devices reporting a battery\n", timestamp, output.StyleMuted.Render("-"))
		return
	}

	parts := make([]string, 0, snap.Len())
	for _, e := range snap.Entries() {
		level := output.LevelStyle(e.Stats.Percentage, low)(output.FormatPercent(e.Stats.Percentage))
		part := fmt.Sprintf("%s %s", output.StyleBold.Render(e.Name), level)
		if e.Stats.IsCharging {
			part += " " + output.StyleSuccess.Render("⚡")
		}
		parts = append(parts, part)
	}
	fmt.Fprintf(w, "[%s] %s\n", timestamp, strings.Join(parts, "  "))
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "         %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case watcher.LevelCritical:
		return output.StyleError.Render("●")
	case watcher.LevelWarning:
		return output.StyleWarning.Render("▲")
	case watcher.LevelInfo:
		return output.StyleSuccess.Render("✓")
	default:
		return " "
	}
}
