package battery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blackwell-systems/ghubbattery/internal/ghub"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultInterval is how often Run refreshes the snapshot.
const DefaultInterval = 10 * time.Second

// ErrDisabled is returned by Refresh once the cache has stopped refreshing.
var ErrDisabled = errors.New("battery cache disabled")

// State is the refresh state of a Cache.
type State int32

const (
	// Idle means the cache refreshes normally.
	Idle State = iota
	// Disabled means a refresh failed and no further refreshes will run.
	Disabled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Source yields the current settings document.
type Source interface {
	Read(ctx context.Context) (ghub.Document, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (ghub.Document, error)

// Read calls f.
func (f SourceFunc) Read(ctx context.Context) (ghub.Document, error) {
	return f(ctx)
}

// Cache keeps the latest battery snapshot read from a Source.
//
// Refresh is the only writer; it publishes each snapshot with a single
// pointer swap. Stats and Snapshot never block on I/O. The first refresh
// failure disables the cache for good; the last published snapshot stays
// readable.
type Cache struct {
	source   Source
	interval time.Duration
	log      logrus.FieldLogger
	now      func() time.Time

	refreshMu sync.Mutex
	group     singleflight.Group

	current   atomic.Pointer[Snapshot]
	state     atomic.Int32
	lastErr   atomic.Value // errorBox
	refreshes atomic.Int64
}

type errorBox struct{ err error }

// New creates a cache reading from source. An interval of zero or less uses
// DefaultInterval; a nil log uses the logrus standard logger.
func New(source Source, interval time.Duration, log logrus.FieldLogger) *Cache {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Cache{
		source:   source,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
	c.current.Store(NewSnapshot(time.Time{}))
	return c
}

// Interval returns the refresh interval.
func (c *Cache) Interval() time.Duration {
	return c.interval
}

// State reports whether the cache is still refreshing.
func (c *Cache) State() State {
	return State(c.state.Load())
}

// LastError returns the error that disabled the cache, or nil.
func (c *Cache) LastError() error {
	if b, ok := c.lastErr.Load().(errorBox); ok {
		return b.err
	}
	return nil
}

// Refreshes returns how many times the source has been read.
func (c *Cache) Refreshes() int64 {
	return c.refreshes.Load()
}

// Snapshot returns the last published snapshot. It is never nil.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Stats looks up name in the current snapshot. It never triggers a refresh.
func (c *Cache) Stats(name string) (BatteryStats, bool) {
	return c.current.Load().Get(name)
}

// DeviceList returns the devices in the current snapshot. When the snapshot
// is empty and the cache is not disabled it refreshes synchronously first;
// concurrent callers share that refresh.
func (c *Cache) DeviceList(ctx context.Context) []DeviceInfo {
	if c.current.Load().Len() == 0 && c.State() == Idle {
		_, _, _ = c.group.Do("refresh", func() (any, error) {
			if c.current.Load().Len() > 0 {
				return nil, nil
			}
			return nil, c.Refresh(ctx)
		})
	}
	return c.current.Load().Devices()
}

// Refresh reads the source and publishes a new snapshot. Any read or parse
// failure, other than cancellation of ctx, disables the cache and leaves the
// previous snapshot in place.
func (c *Cache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.State() == Disabled {
		return ErrDisabled
	}

	c.refreshes.Add(1)
	doc, err := c.source.Read(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return c.disable(err)
	}

	snap, err := ExtractBatteryStats(doc, c.now())
	if err != nil {
		return c.disable(err)
	}

	c.current.Store(snap)
	c.log.WithField("devices", snap.Len()).Debug("battery snapshot refreshed")
	return nil
}

// disable records err and stops further refreshes. Callers hold refreshMu.
func (c *Cache) disable(err error) error {
	c.lastErr.Store(errorBox{err: err})
	c.state.Store(int32(Disabled))

	entry := c.log.WithError(err)
	switch {
	case errors.Is(err, ghub.ErrNotFound):
		entry.Error("settings not found, battery refresh stopped")
	case errors.Is(err, ghub.ErrParse):
		entry.Error("settings could not be parsed, battery refresh stopped")
	default:
		entry.Error("reading settings failed, battery refresh stopped")
	}
	return err
}

// Run refreshes once immediately and then on every interval until ctx is
// done. Once the cache is disabled the ticker is stopped and Run only waits
// for ctx. It always returns ctx.Err().
func (c *Cache) Run(ctx context.Context) error {
	if c.State() == Idle {
		_ = c.Refresh(ctx)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if c.State() == Disabled {
			ticker.Stop()
			<-ctx.Done()
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}
