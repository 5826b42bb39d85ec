package battery

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/ghub"
	"github.com/pkg/errors"
)

const (
	// batteryMarker must appear in a key for it to be considered.
	batteryMarker = "battery"

	kindPercentage = "percentage"
	kindWarning    = "warning"
)

// parseBatteryKey splits a key of the form <prefix>/<device>/<kind>.
// ok is false for keys of any other shape or kind.
func parseBatteryKey(key string) (device, kind string, ok bool) {
	if !strings.Contains(key, batteryMarker) {
		return "", "", false
	}
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", "", false
	}
	switch parts[2] {
	case kindPercentage, kindWarning:
		return parts[1], parts[2], true
	default:
		return "", "", false
	}
}

// ExtractBatteryStats builds a snapshot from every battery entry in doc.
//
// Entries are visited in document order. A percentage entry always sets the
// device's stats; a warning entry only fills in a device that has no entry
// yet, so the first warning is kept and a later percentage replaces it. A
// battery value that does not decode fails the whole extraction with
// ghub.ErrParse.
func ExtractBatteryStats(doc ghub.Document, takenAt time.Time) (*Snapshot, error) {
	snap := NewSnapshot(takenAt)

	for _, e := range doc {
		device, kind, ok := parseBatteryKey(e.Key)
		if !ok {
			continue
		}
		if _, seen := snap.Get(device); kind == kindWarning && seen {
			continue
		}

		var stats BatteryStats
		if err := json.Unmarshal(e.Value, &stats); err != nil {
			return nil, errors.Wrapf(ghub.ErrParse, "battery entry %q: %v", e.Key, err)
		}

		snap.put(device, stats)
	}

	return snap, nil
}
