package app

import (
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/blackwell-systems/ghubbattery/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [device...]",
	Short: "Show the battery level of one or more devices",
	Long: `Show charge level, voltage and power state for the named devices, or
for every device when no names are given. Device names are listed by the
devices command.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// deviceStatus is the JSON shape of one status row.
type deviceStatus struct {
	Device string `json:"device"`
	battery.BatteryStats
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	cache := newCache(cfg, log)
	devices := cache.DeviceList(cmd.Context())
	if len(devices) == 0 {
		if err := cache.LastError(); err != nil {
			return fmt.Errorf("reading G HUB settings: %w", err)
		}
	}

	names := args
	if len(names) == 0 {
		for _, d := range devices {
			names = append(names, d.Name)
		}
	}

	rows, err := collectStatus(cache, names)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(os.Stdout, rows)
	}

	renderStatus(os.Stdout, rows, cfg.Output.Width, cfg.LowBatteryThreshold)
	return nil
}

// collectStatus looks up each name in the cache's current snapshot.
func collectStatus(cache *battery.Cache, names []string) ([]deviceStatus, error) {
	rows := make([]deviceStatus, 0, len(names))
	for _, name := range names {
		stats, ok := cache.Stats(name)
		if !ok {
			return nil, fmt.Errorf("device not found: %s", name)
		}
		rows = append(rows, deviceStatus{Device: name, BatteryStats: stats})
	}
	return rows, nil
}

func renderStatus(w io.Writer, rows []deviceStatus, width int, low float64) {
	fmt.Fprintln(w, output.Section("Battery"))
	fmt.Fprintln(w)

	if len(rows) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No devices with battery information found."))
		return
	}

	tbl := output.NewTable("Device", "Charge", "Voltage", "State")
	for _, r := range rows {
		voltage := "-"
		if r.Millivolts > 0 {
			voltage = fmt.Sprintf("%d mV", r.Millivolts)
		}
		tbl.AddRow(r.Device, output.ChargeBar(r.Percentage, width, low), voltage, styledState(r.BatteryStats))
	}
	fmt.Fprint(w, tbl.String())
	fmt.Fprintln(w)
}
