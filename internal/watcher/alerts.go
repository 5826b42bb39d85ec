package watcher

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
)

// criticalPercent is the charge level that raises a critical alert.
const criticalPercent = 5.0

// Compare detects notable changes between two snapshots and returns alerts.
// prev may be nil for the first snapshot, in which case only level alerts
// are raised.
//
// Level alerts (low, critical) are raised on every call while the condition
// holds; the Watcher deduplicates them. Transition alerts (charging,
// disconnected, new device) only fire when the state changed.
func Compare(prev, curr *battery.Snapshot, lowThreshold float64) []Alert {
	var alerts []Alert
	now := time.Now()

	for _, e := range curr.Entries() {
		alerts = append(alerts, levelAlerts(e, lowThreshold, now)...)

		if prev == nil {
			continue
		}
		before, existed := prev.Get(e.Name)
		if !existed {
			if prev.Len() > 0 {
				alerts = append(alerts, Alert{
					Level:   LevelInfo,
					Device:  e.Name,
					Title:   fmt.Sprintf("New device: %s", e.Name),
					Message: fmt.Sprintf("Battery at %.0f%%", e.Stats.Percentage),
					Time:    now,
				})
			}
			continue
		}
		alerts = append(alerts, transitionAlerts(e.Name, before, e.Stats, now)...)
	}

	return alerts
}

// levelAlerts reports a discharging, connected device whose charge is low.
func levelAlerts(e battery.Entry, lowThreshold float64, now time.Time) []Alert {
	s := e.Stats
	if s.IsCharging || !s.IsConnected {
		return nil
	}

	switch {
	case s.Percentage < criticalPercent:
		return []Alert{{
			Level:   LevelCritical,
			Device:  e.Name,
			Title:   fmt.Sprintf("%s battery critical", e.Name),
			Message: fmt.Sprintf("%.0f%% remaining (%d mV), charge now", s.Percentage, s.Millivolts),
			Time:    now,
		}}
	case s.Percentage < lowThreshold:
		return []Alert{{
			Level:   LevelWarning,
			Device:  e.Name,
			Title:   fmt.Sprintf("%s battery low", e.Name),
			Message: fmt.Sprintf("%.0f%% remaining (below %.0f%%)", s.Percentage, lowThreshold),
			Time:    now,
		}}
	}
	return nil
}

// transitionAlerts reports charging and connection changes for one device.
func transitionAlerts(name string, before, after battery.BatteryStats, now time.Time) []Alert {
	var alerts []Alert

	if before.IsConnected && !after.IsConnected {
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Device:  name,
			Title:   fmt.Sprintf("%s disconnected", name),
			Message: fmt.Sprintf("Last reading %.0f%%", after.Percentage),
			Time:    now,
		})
	}
	if !before.IsConnected && after.IsConnected {
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Device:  name,
			Title:   fmt.Sprintf("%s connected", name),
			Message: fmt.Sprintf("Battery at %.0f%%", after.Percentage),
			Time:    now,
		})
	}

	if !before.IsCharging && after.IsCharging {
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Device:  name,
			Title:   fmt.Sprintf("%s charging", name),
			Message: fmt.Sprintf("Started at %.0f%%", after.Percentage),
			Time:    now,
		})
	}
	if before.IsCharging && !after.IsCharging {
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Device:  name,
			Title:   fmt.Sprintf("%s stopped charging", name),
			Message: fmt.Sprintf("Now at %.0f%%", after.Percentage),
			Time:    now,
		})
	}

	return alerts
}
