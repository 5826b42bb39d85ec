package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Notify sends a desktop notification for the given alert. On macOS it uses
// osascript, on Linux notify-send and on Windows a PowerShell balloon tip.
// If none is available, it falls back to printing to stderr.
func Notify(alert Alert) error {
	switch runtime.GOOS {
	case "darwin":
		return notifyMacOS(alert)
	case "linux":
		return notifyLinux(alert)
	case "windows":
		return notifyWindows(alert)
	default:
		return notifyFallback(os.Stderr, alert)
	}
}

// notifyMacOS sends a notification via osascript on macOS.
func notifyMacOS(alert Alert) error {
	script := fmt.Sprintf(
		`display notification %q with title "ghubbattery" subtitle %q`,
		alert.Message, alert.Title,
	)
	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return notifyFallback(os.Stderr, alert)
	}
	return nil
}

// notifyLinux sends a notification via notify-send on Linux.
func notifyLinux(alert Alert) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return notifyFallback(os.Stderr, alert)
	}

	args := []string{fmt.Sprintf("ghubbattery: %s", alert.Title), alert.Message}
	if alert.Level == LevelCritical {
		args = append([]string{"--urgency=critical"}, args...)
	}
	cmd := exec.Command("notify-send", args...)
	if err := cmd.Run(); err != nil {
		return notifyFallback(os.Stderr, alert)
	}
	return nil
}

// notifyWindows shows a tray balloon via PowerShell on Windows, where G HUB
// actually runs.
func notifyWindows(alert Alert) error {
	script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms;
$n = New-Object System.Windows.Forms.NotifyIcon;
$n.Icon = [System.Drawing.SystemIcons]::Information;
$n.Visible = $true;
$n.ShowBalloonTip(5000, %s, %s, 'None');
Start-Sleep -Seconds 6; $n.Dispose()`, psQuote("ghubbattery: "+alert.Title), psQuote(alert.Message))

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err := cmd.Start(); err != nil {
		return notifyFallback(os.Stderr, alert)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// psQuote quotes s as a single-quoted PowerShell string literal.
func psQuote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}

// notifyFallback prints the alert to w when no desktop notification
// system is available.
func notifyFallback(w io.Writer, alert Alert) error {
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
