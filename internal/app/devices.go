package app

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/blackwell-systems/ghubbattery/internal/output"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the devices G HUB reports a battery for",
	Long: `List every device that has a battery entry in G HUB's settings, in the
order G HUB stores them. The names printed here are the ones the status
command and the MCP get_battery_stats tool accept.`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
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

	if flagJSON {
		if devices == nil {
			devices = []battery.DeviceInfo{}
		}
		return writeJSON(os.Stdout, devices)
	}

	renderDevices(os.Stdout, devices)
	return nil
}

func renderDevices(w io.Writer, devices []battery.DeviceInfo) {
	fmt.Fprintln(w, output.Section("Devices"))
	fmt.Fprintln(w)

	if len(devices) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No devices with battery information found."))
		return
	}

	tbl := output.NewTable("#", "Device")
	for i, d := range devices {
		tbl.AddRow(strconv.Itoa(i+1), d.Name)
	}
	fmt.Fprint(w, tbl.String())
	fmt.Fprintln(w)
}
