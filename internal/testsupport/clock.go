package testsupport

import (
	"context"
	"time"

	"github.com/coffeetab/coffeetab/internal/domain/port/core"
)

// FixedClock is a deterministic TimeProvider for tests. Time moves only when
// Advance is called.
type FixedClock struct {
	Current time.Time
}

// NewFixedClock creates a clock pinned to a fixed instant
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{Current: t}
}

// Advance moves the clock forward
func (c *FixedClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

func (c *FixedClock) Now() time.Time {
	return c.Current
}

func (c *FixedClock) Since(t time.Time) core.Duration {
	return core.Duration(c.Current.Sub(t))
}

func (c *FixedClock) Until(t time.Time) core.Duration {
	return core.Duration(t.Sub(c.Current))
}

// Sleep advances the clock instead of blocking
func (c *FixedClock) Sleep(d core.Duration) {
	c.Advance(d.Std())
}

// WithTimeout returns a cancelable context; no real timer fires in tests
func (c *FixedClock) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

func (c *FixedClock) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}
