// Package watcher follows the battery cache on an interval, hands each
// snapshot to a render callback and emits alerts when a device's battery
// state changes in a notable way.
package watcher

import (
	"context"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
)

// Alert levels.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Alert represents a notable battery event.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Device  string
	Title   string
	Message string
	Time    time.Time
}

// SnapshotSource provides the latest published snapshot without blocking.
type SnapshotSource interface {
	Snapshot() *battery.Snapshot
}

// Watcher reads the snapshot on every tick and emits alerts when battery
// state changes.
type Watcher struct {
	source        SnapshotSource
	interval      time.Duration
	previous      *battery.Snapshot
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts

	// LowThreshold is the percentage below which a low battery alert fires.
	LowThreshold float64
	// OnTick, if set, receives the snapshot read on every tick.
	OnTick func(*battery.Snapshot)
}

// New creates a Watcher reading from source every interval.
func New(source SnapshotSource, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		source:        source,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		LowThreshold:  20,
	}
}

// Run checks immediately and then at every interval. Blocks until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.tick()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Watcher) tick() {
	snap := w.source.Snapshot()
	if w.OnTick != nil {
		w.OnTick(snap)
	}
	for _, a := range w.check(snap) {
		if w.alertFn != nil {
			w.alertFn(a)
		}
	}
}

// Check compares the current snapshot with the one seen on the previous
// check and returns new alerts. Identical alerts are suppressed until the
// condition clears.
func (w *Watcher) Check() []Alert {
	return w.check(w.source.Snapshot())
}

func (w *Watcher) check(curr *battery.Snapshot) []Alert {
	// The same snapshot as last time: nothing has been refreshed.
	if curr == w.previous {
		return nil
	}

	raw := Compare(w.previous, curr, w.LowThreshold)

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Device + ":" + a.Title
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}
