package pipeline

import (
	"sync/atomic"
)

// Cursor is the shared state between the capture scheduler and the
// encoder engine. Each counter has exactly one writer: the scheduler
// advances the captured count, the engine advances the encoded count.
// That single-writer discipline is what makes plain atomics sufficient;
// no lock is held on the hot path.
//
// The captured count is only advanced after the frame has been stored,
// so an encoder that observes index i may always read frame i.
type Cursor struct {
	captured atomic.Int64
	encoded  atomic.Int64
	finished atomic.Bool

	wake chan struct{}
}

// NewCursor creates a Cursor with no frames captured or encoded.
func NewCursor() *Cursor {
	return &Cursor{
		wake: make(chan struct{}, 1),
	}
}

// AdvanceCaptured publishes one newly stored frame and nudges the
// encoder. Called by the capture scheduler only.
func (c *Cursor) AdvanceCaptured() {
	c.captured.Add(1)
	c.nudge()
}

// AdvanceEncoded records that the next frame has been appended to the
// container. Called by the encoder engine only.
func (c *Cursor) AdvanceEncoded() {
	c.encoded.Add(1)
}

// Finish signals that capture has ended and no further frames will be
// published. Safe to call more than once.
func (c *Cursor) Finish() {
	c.finished.Store(true)
	c.nudge()
}

// Captured returns the number of frames published so far.
func (c *Cursor) Captured() int {
	return int(c.captured.Load())
}

// Encoded returns the number of frames appended so far.
func (c *Cursor) Encoded() int {
	return int(c.encoded.Load())
}

// Finished reports whether capture has ended.
func (c *Cursor) Finished() bool {
	return c.finished.Load()
}

// Backlog returns the number of published frames not yet encoded.
func (c *Cursor) Backlog() int {
	return c.Captured() - c.Encoded()
}

// Wake returns the channel the encoder parks on when it has drained
// the backlog. A receive means "state changed, look again"; it carries
// no data and may coalesce multiple nudges.
func (c *Cursor) Wake() <-chan struct{} {
	return c.wake
}

func (c *Cursor) nudge() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
