package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves whatever snapshot was set last.
type stubSource struct {
	mu   sync.Mutex
	snap *battery.Snapshot
}

func (s *stubSource) Snapshot() *battery.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *stubSource) set(snap *battery.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func TestNew_SetsFields(t *testing.T) {
	called := false
	src := &stubSource{}
	w := New(src, 10*time.Minute, func(Alert) { called = true })

	assert.Equal(t, 10*time.Minute, w.interval)
	assert.Equal(t, 20.0, w.LowThreshold)
	require.NotNil(t, w.alertFn)

	w.alertFn(Alert{})
	assert.True(t, called)
}

func TestCheck_DeduplicatesLevelAlerts(t *testing.T) {
	src := &stubSource{snap: snap(dev("mouse", 10, false, true))}
	w := New(src, time.Minute, nil)

	first := w.Check()
	require.Len(t, first, 1)
	assert.Equal(t, "mouse battery low", first[0].Title)

	// Still low on the next refresh: suppressed.
	src.set(snap(dev("mouse", 9, false, true)))
	assert.Empty(t, w.Check())

	// Charging clears the condition and raises a transition alert.
	src.set(snap(dev("mouse", 9, true, true)))
	assert.Equal(t, []string{"mouse charging"}, titles(w.Check()))

	// Unplugged while still low: the low alert fires again.
	src.set(snap(dev("mouse", 9, false, true)))
	assert.Equal(t, []string{"mouse battery low", "mouse stopped charging"}, titles(w.Check()))
}

func TestCheck_SameSnapshotIsSkipped(t *testing.T) {
	s := snap(dev("mouse", 10, false, true))
	src := &stubSource{snap: s}
	w := New(src, time.Minute, nil)

	require.Len(t, w.Check(), 1)
	w.lastAlertKeys = map[string]bool{}
	assert.Empty(t, w.Check(), "an unchanged snapshot must not be compared again")
}

func TestRun_CallsOnTickAndAlerts(t *testing.T) {
	src := &stubSource{snap: snap(dev("mouse", 3, false, true))}

	var mu sync.Mutex
	var alerts []Alert
	ticks := 0

	w := New(src, 5*time.Millisecond, func(a Alert) {
		mu.Lock()
		alerts = append(alerts, a)
		mu.Unlock()
	})
	w.OnTick = func(s *battery.Snapshot) {
		mu.Lock()
		ticks++
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks >= 3
	}, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, alerts, 1)
	assert.Equal(t, LevelCritical, alerts[0].Level)
}
