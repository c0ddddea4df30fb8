package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a StepClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a deterministic time source for tests.
//
// Each call to Now advances the clock by one second, so archived runs get
// distinct, ordered, reproducible timestamps.
//
// Thread-safety: all methods are safe for concurrent use.
type StepClock struct {
	mu    sync.Mutex
	ticks int
}

// NewStepClock creates a clock whose first Now returns Epoch.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Now returns the current instant and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.ticks) * time.Second)
	c.ticks++
	return t
}

// Reset rewinds the clock to Epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
