// Package controller wires the capture scheduler and encoder engine
// into a single recording run.
package controller

import (
	"context"
	"sync"

	"github.com/user/winreel/pkg/capture"
	"github.com/user/winreel/pkg/encoder"
	"github.com/user/winreel/pkg/pipeline"
	"github.com/user/winreel/pkg/ports"
)

// Result summarizes a finished recording.
type Result struct {
	OutputPath string
	Frames     int
	DurationMs int
	Bytes      int64
}

// Controller owns the lifecycle of one recording: it starts both
// halves of the pipeline, translates cancellation into an orderly
// stop-capture-then-drain sequence, and reports the outcome.
type Controller struct {
	session pipeline.Session
	sched   *capture.Scheduler
	engine  *encoder.Engine
	cursor  *pipeline.Cursor
	logger  ports.Logger

	stopOnce sync.Once
}

// New creates a Controller over an already-constructed scheduler and
// engine sharing the given cursor.
func New(session pipeline.Session, sched *capture.Scheduler, engine *encoder.Engine,
	cursor *pipeline.Cursor, logger ports.Logger) *Controller {
	return &Controller{
		session: session,
		sched:   sched,
		engine:  engine,
		cursor:  cursor,
		logger:  logger.WithComponent("controller"),
	}
}

// Run records until ctx is cancelled, then drains the backlog and
// finalizes the container. It blocks until the engine reaches a
// terminal state and returns the container stats or the engine's
// terminal error.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	c.engine.Start()
	c.sched.Start(ctx)

	select {
	case <-ctx.Done():
		c.logger.Info("Stopping capture, draining %d remaining frames", c.cursor.Backlog())
		c.Stop()
	case <-c.engine.Done():
		// The engine failed mid-run; capturing more frames is pointless.
		c.Stop()
	}

	<-c.engine.Done()

	if err := c.engine.Err(); err != nil {
		return Result{OutputPath: c.session.OutputPath}, err
	}
	stats := c.engine.Stats()
	return Result{
		OutputPath: c.session.OutputPath,
		Frames:     stats.Frames,
		DurationMs: stats.DurationMs,
		Bytes:      stats.Bytes,
	}, nil
}

// Stop ends capture and declares the end of input. The scheduler is
// drained first so a tick in flight still publishes its frame before
// the cursor is marked finished. Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.sched.Stop()
		<-c.sched.Done()
		c.cursor.Finish()
	})
}
