package viewer

import "sync/atomic"

// Sequencer stamps committed states and outward events with increasing
// sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock.
//
// Every committed viewer state and every outward event gets a strictly
// increasing seq from the clock, so a journal replays in the order the loop
// produced it, independent of wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Only the controller loop calls Next in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last returned sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
