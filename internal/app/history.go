package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/output"
	"github.com/blackwell-systems/ghubbattery/internal/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [device]",
	Short: "Show battery readings recorded by watch --record",
	Long: `Show the readings stored in the history database. Without a device the
latest reading of every recorded device is shown; with a device its most
recent readings are listed newest first.

Examples:
  ghubbattery history                   # latest reading per device
  ghubbattery history "G502 X"          # last 20 readings of one device
  ghubbattery history --prune 720h      # drop readings older than 30 days`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of readings to show for a device")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete readings older than this duration before listing")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if historyPrune > 0 {
		n, err := db.PruneBefore(time.Now().Add(-historyPrune))
		if err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		log.WithField("deleted", n).Info("pruned old readings")
	}

	var readings []store.Reading
	if len(args) == 1 {
		readings, err = db.RecentReadings(args[0], historyLimit)
		if err != nil {
			return fmt.Errorf("querying readings: %w", err)
		}
	} else {
		readings, err = latestReadings(db)
		if err != nil {
			return err
		}
	}

	if flagJSON {
		if readings == nil {
			readings = []store.Reading{}
		}
		return writeJSON(os.Stdout, readings)
	}

	renderHistory(os.Stdout, readings, cfg.LowBatteryThreshold)
	return nil
}

// latestReadings returns the newest reading of every recorded device.
func latestReadings(db *store.DB) ([]store.Reading, error) {
	devices, err := db.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	readings := make([]store.Reading, 0, len(devices))
	for _, d := range devices {
		r, err := db.LatestReading(d)
		if err != nil {
			return nil, fmt.Errorf("querying latest reading for %s: %w", d, err)
		}
		if r != nil {
			readings = append(readings, *r)
		}
	}
	return readings, nil
}

func renderHistory(w io.Writer, readings []store.Reading, low float64) {
	fmt.Fprintln(w, output.Section("History"))
	fmt.Fprintln(w)

	if len(readings) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No readings recorded. Run 'ghubbattery watch --record' to collect some."))
		return
	}

	tbl := output.NewTable("Time", "Device", "Charge", "Voltage", "State")
	for _, r := range readings {
		state := "discharging"
		switch {
		case !r.IsConnected:
			state = "disconnected"
		case r.IsCharging:
			state = "charging"
		}
		tbl.AddRow(
			r.TakenAt.Local().Format("2006-01-02 15:04:05"),
			r.Device,
			output.LevelStyle(r.Percentage, low)(output.FormatPercent(r.Percentage)),
			fmt.Sprintf("%d mV", r.Millivolts),
			state,
		)
	}
	fmt.Fprint(w, tbl.String())
	fmt.Fprintln(w)
}
