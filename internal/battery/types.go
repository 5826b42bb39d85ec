// Package battery turns G HUB settings documents into per-device battery
// snapshots and keeps the latest one available to readers.
package battery

import "time"

// BatteryStats is the battery state G HUB records for one device.
type BatteryStats struct {
	IsCharging  bool    `json:"isCharging"`
	IsConnected bool    `json:"isConnected"`
	Millivolts  int     `json:"millivolts"`
	Percentage  float64 `json:"percentage"`
}

// DeviceInfo identifies a device for enumeration.
type DeviceInfo struct {
	Name string `json:"name"`
}

// Entry pairs a device name with its stats.
type Entry struct {
	Name  string
	Stats BatteryStats
}

// Snapshot is the complete device to stats mapping produced by one refresh.
// It is never modified after it has been published.
type Snapshot struct {
	TakenAt time.Time

	names []string
	stats map[string]BatteryStats
}

// NewSnapshot builds a snapshot from entries. A repeated name keeps its first
// position and takes the later stats.
func NewSnapshot(takenAt time.Time, entries ...Entry) *Snapshot {
	s := &Snapshot{
		TakenAt: takenAt,
		stats:   make(map[string]BatteryStats, len(entries)),
	}
	for _, e := range entries {
		s.put(e.Name, e.Stats)
	}
	return s
}

func (s *Snapshot) put(name string, stats BatteryStats) {
	if _, ok := s.stats[name]; !ok {
		s.names = append(s.names, name)
	}
	s.stats[name] = stats
}

// Len returns the number of devices. A nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Get returns the stats recorded for name.
func (s *Snapshot) Get(name string) (BatteryStats, bool) {
	if s == nil {
		return BatteryStats{}, false
	}
	st, ok := s.stats[name]
	return st, ok
}

// Names returns the device names in the order they were first seen.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Devices returns one DeviceInfo per device, in Names order.
func (s *Snapshot) Devices() []DeviceInfo {
	devices := make([]DeviceInfo, 0, s.Len())
	if s == nil {
		return devices
	}
	for _, n := range s.names {
		devices = append(devices, DeviceInfo{Name: n})
	}
	return devices
}

// Entries returns every device with its stats, in Names order.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, Entry{Name: n, Stats: s.stats[n]})
	}
	return out
}
