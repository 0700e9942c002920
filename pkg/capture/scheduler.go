// Package capture implements the timer-driven frame producer.
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/user/winreel/pkg/pipeline"
	"github.com/user/winreel/pkg/ports"
)

// Scheduler acquires one frame per tick at a fixed wall-clock interval
// and publishes it through the frame store and cursor. Capture is an
// unbounded producer: it never waits for the encoder to catch up.
type Scheduler struct {
	grabber  ports.Grabber
	store    ports.FrameStore
	cursor   *pipeline.Cursor
	sink     ports.DebugSink
	logger   ports.Logger
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a Scheduler firing at the given interval.
func New(grabber ports.Grabber, store ports.FrameStore, cursor *pipeline.Cursor,
	sink ports.DebugSink, logger ports.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		grabber:  grabber,
		store:    store,
		cursor:   cursor,
		sink:     sink,
		logger:   logger.WithComponent("capture"),
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins firing capture ticks until Stop is called or ctx is
// cancelled. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Debug("Capture started at %v intervals", s.interval)
	go s.loop(ctx)
}

// Stop halts future ticks. It does not block on in-flight work; use
// Done to wait for the loop to drain.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Done is closed once the capture loop has fully exited, including any
// tick that was in flight when Stop was called.
func (s *Scheduler) Done() <-chan struct{} {
	return s.doneCh
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.doneCh)
	defer func() {
		s.logger.Debug("Capture stopped after %d frames", s.cursor.Captured())
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick acquires and publishes one frame. An acquisition failure (e.g.
// the target went away for a moment) skips this tick without advancing
// the counter; a single missed tick is not fatal to the recording.
func (s *Scheduler) tick(ctx context.Context) {
	index := s.cursor.Captured()

	img, err := s.grabber.CaptureFrame(ctx)
	if err != nil {
		s.logger.Warn("Frame %d skipped: %s", index, err)
		return
	}

	// Store before publishing so a reader that observes the new count
	// always finds the frame.
	s.store.Put(index, img)

	if s.sink.Enabled() {
		if err := s.sink.SaveRawFrame(index, img); err != nil {
			s.logger.Warn("Frame %d skipped: %s", index, err)
		}
	}

	s.cursor.AdvanceCaptured()
}
