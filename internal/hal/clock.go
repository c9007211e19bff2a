// Package hal is the platform layer of the lock: the wall clock used for
// record timestamps and the actuator that drives the physical bolt.
package hal

import (
	"sync/atomic"
	"time"
)

// Clock returns the current time as unsigned 32-bit Unix seconds, the
// resolution stored in every record.
type Clock interface {
	Now() uint32
}

type SystemClock struct{}

func (SystemClock) Now() uint32 {
	return uint32(time.Now().Unix())
}

// ManualClock is a settable Clock for tests and simulations.
type ManualClock struct {
	t atomic.Uint32
}

func NewManualClock(start uint32) *ManualClock {
	c := &ManualClock{}
	c.t.Store(start)
	return c
}

func (c *ManualClock) Now() uint32 { return c.t.Load() }

func (c *ManualClock) Set(t uint32) { c.t.Store(t) }

// Advance moves the clock forward by d, truncated to whole seconds.
func (c *ManualClock) Advance(d time.Duration) {
	c.t.Add(uint32(d / time.Second))
}
