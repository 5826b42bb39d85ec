package ghub

import (
	"os"
	"path/filepath"
)

// SettingsFile is the settings database location relative to the per-user
// local application data directory.
var SettingsFile = filepath.Join("LGHUB", "settings.db")

// DefaultSettingsPath returns where G HUB keeps its settings database for the
// current user: %LOCALAPPDATA%\LGHUB\settings.db on Windows. When LOCALAPPDATA
// is unset the user cache directory is used instead.
func DefaultSettingsPath() string {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			base = dir
		}
	}
	return filepath.Join(base, SettingsFile)
}
