package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/blackwell-systems/ghubbattery/internal/config"
	"github.com/blackwell-systems/ghubbattery/internal/ghub"
	"github.com/blackwell-systems/ghubbattery/internal/output"
	"github.com/blackwell-systems/ghubbattery/internal/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether G HUB battery data can be read",
	Long: `Run a series of health checks against the G HUB settings database and
the ghubbattery configuration. Prints a pass/fail line for each check and a
summary of how many checks passed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	checks := runDoctorChecks(ctx, cfg)

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return writeJSON(os.Stdout, doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Println(output.Section("Doctor"))
	fmt.Println()
	for _, c := range checks {
		renderDoctorCheck(os.Stdout, c)
	}
	fmt.Println()

	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Printf(" %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// runDoctorChecks runs every check in order. Checks that depend on the
// settings database are reported as failed when it cannot be read.
func runDoctorChecks(ctx context.Context, cfg *config.Config) []doctorCheck {
	var checks []doctorCheck

	checks = append(checks, checkSettingsFile(cfg.SettingsPath))

	doc, readCheck := checkSettingsReadable(ctx, cfg.SettingsPath)
	checks = append(checks, readCheck)
	checks = append(checks, checkBatteryEntries(doc, readCheck.Passed))

	checks = append(checks, checkHistoryDB(cfg.HistoryDB))
	checks = append(checks, checkWatchDaemon())
	return checks
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	var indicator string
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	} else {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Fprintf(w, "  %s  %-30s %s\n", indicator, label, detail)
}

// checkSettingsFile verifies that the G HUB settings database exists.
func checkSettingsFile(path string) doctorCheck {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return doctorCheck{
			Name:    "G HUB settings file",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s (is G HUB installed?)", path),
		}
	case info.IsDir():
		return doctorCheck{
			Name:    "G HUB settings file",
			Passed:  false,
			Message: fmt.Sprintf("%s is a directory", path),
		}
	}
	return doctorCheck{
		Name:    "G HUB settings file",
		Passed:  true,
		Message: path,
	}
}

// checkSettingsReadable reads the newest settings blob and returns the
// parsed document on success.
func checkSettingsReadable(ctx context.Context, path string) (ghub.Document, doctorCheck) {
	doc, err := ghub.ReadSettings(ctx, path)
	if err != nil {
		msg := err.Error()
		switch {
		case errors.Is(err, ghub.ErrNotFound):
			msg = "no settings stored yet"
			if _, statErr := os.Stat(path); statErr != nil {
				msg = "settings file missing"
			}
		case errors.Is(err, ghub.ErrParse):
			msg = "newest settings blob is not valid JSON"
		}
		return nil, doctorCheck{
			Name:    "Settings readable",
			Passed:  false,
			Message: msg,
		}
	}
	return doc, doctorCheck{
		Name:    "Settings readable",
		Passed:  true,
		Message: fmt.Sprintf("%d keys in newest blob", len(doc)),
	}
}

// checkBatteryEntries verifies that the settings document holds at least
// one battery entry that decodes.
func checkBatteryEntries(doc ghub.Document, readable bool) doctorCheck {
	if !readable {
		return doctorCheck{
			Name:    "Battery entries",
			Passed:  false,
			Message: "skipped (settings not readable)",
		}
	}

	snap, err := battery.ExtractBatteryStats(doc, time.Now())
	if err != nil {
		return doctorCheck{
			Name:    "Battery entries",
			Passed:  false,
			Message: err.Error(),
		}
	}
	if snap.Len() == 0 {
		return doctorCheck{
			Name:    "Battery entries",
			Passed:  false,
			Message: "no wireless device has reported a battery level",
		}
	}

	noun := "devices"
	if snap.Len() == 1 {
		noun = "device"
	}
	return doctorCheck{
		Name:    "Battery entries",
		Passed:  true,
		Message: fmt.Sprintf("%d %s", snap.Len(), noun),
	}
}

// checkHistoryDB verifies that the history database exists and opens.
func checkHistoryDB(path string) doctorCheck {
	if _, err := os.Stat(path); err != nil {
		return doctorCheck{
			Name:    "History database",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s (run 'ghubbattery watch --record' to create)", path),
		}
	}

	db, err := store.Open(path)
	if err != nil {
		return doctorCheck{
			Name:    "History database",
			Passed:  false,
			Message: err.Error(),
		}
	}
	defer func() { _ = db.Close() }()

	devices, err := db.Devices()
	if err != nil {
		return doctorCheck{
			Name:    "History database",
			Passed:  false,
			Message: err.Error(),
		}
	}
	return doctorCheck{
		Name:    "History database",
		Passed:  true,
		Message: fmt.Sprintf("%s (%d devices recorded)", path, len(devices)),
	}
}

// checkWatchDaemon checks whether the watch daemon PID file exists and the process is running.
func checkWatchDaemon() doctorCheck {
	if _, err := os.Stat(pidFilePath()); err != nil {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: "not running (no PID file)",
		}
	}

	pid, err := readPID()
	if err != nil {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: fmt.Sprintf("invalid PID file %s", filepath.Base(pidFilePath())),
		}
	}
	if !processExists(pid) {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid),
		}
	}
	return doctorCheck{
		Name:    "Watch daemon",
		Passed:  true,
		Message: fmt.Sprintf("running (PID %d)", pid),
	}
}
