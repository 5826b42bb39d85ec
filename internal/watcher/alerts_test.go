package watcher

import (
	"testing"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(entries ...battery.Entry) *battery.Snapshot {
	return battery.NewSnapshot(time.Now(), entries...)
}

func dev(name string, pct float64, charging, connected bool) battery.Entry {
	return battery.Entry{Name: name, Stats: battery.BatteryStats{
		Percentage:  pct,
		IsCharging:  charging,
		IsConnected: connected,
		Millivolts:  3800,
	}}
}

func titles(alerts []Alert) []string {
	var out []string
	for _, a := range alerts {
		out = append(out, a.Title)
	}
	return out
}

func TestCompare_NoChanges(t *testing.T) {
	prev := snap(dev("mouse", 80, false, true))
	curr := snap(dev("mouse", 79, false, true))

	assert.Empty(t, Compare(prev, curr, 20))
}

func TestCompare_EmptySnapshots(t *testing.T) {
	assert.Empty(t, Compare(nil, snap(), 20))
	assert.Empty(t, Compare(snap(), snap(), 20))
}

func TestCompare_LowAndCritical(t *testing.T) {
	curr := snap(
		dev("mouse", 15, false, true),
		dev("keyboard", 3, false, true),
		dev("headset", 3, true, true),
		dev("pad", 2, false, false),
	)

	alerts := Compare(nil, curr, 20)
	require.Len(t, alerts, 2)

	assert.Equal(t, LevelWarning, alerts[0].Level)
	assert.Equal(t, "mouse", alerts[0].Device)
	assert.Equal(t, "mouse battery low", alerts[0].Title)

	assert.Equal(t, LevelCritical, alerts[1].Level)
	assert.Equal(t, "keyboard battery critical", alerts[1].Title)
}

func TestCompare_Transitions(t *testing.T) {
	prev := snap(
		dev("mouse", 50, false, true),
		dev("keyboard", 50, true, true),
		dev("headset", 50, false, false),
	)
	curr := snap(
		dev("mouse", 50, true, true),
		dev("keyboard", 50, false, false),
		dev("headset", 50, false, true),
		dev("pad", 90, false, true),
	)

	assert.Equal(t, []string{
		"mouse charging",
		"keyboard disconnected",
		"keyboard stopped charging",
		"headset connected",
		"New device: pad",
	}, titles(Compare(prev, curr, 20)))
}

func TestCompare_NoNewDeviceAlertsAgainstEmptyBaseline(t *testing.T) {
	curr := snap(dev("mouse", 80, false, true))
	assert.Empty(t, Compare(snap(), curr, 20))
}
