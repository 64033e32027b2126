package layerfs

import (
	"sync"
	"time"
)

// epoch is the start of the default logical clock.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// clock is the time source of a file system and every instance derived from it.
// Unless fixed or backed by a function it advances one millisecond per reading,
// so timestamps are deterministic and strictly increasing.
type clock struct {
	mu     sync.Mutex
	now    time.Time
	fixed  bool
	source func() time.Time
}

func newClock(opts *Options) *clock {
	switch {
	case opts.Clock != nil:
		return &clock{source: opts.Clock}
	case !opts.Time.IsZero():
		return &clock{now: opts.Time, fixed: true}
	default:
		return &clock{now: epoch}
	}
}

func (c *clock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source != nil {
		return c.source()
	}
	if !c.fixed {
		c.now = c.now.Add(time.Millisecond)
	}
	return c.now
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source = nil
	c.now = t
	c.fixed = true
}
