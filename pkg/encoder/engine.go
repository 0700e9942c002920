// Package encoder implements the pull-driven consumer that drains
// captured frames into the output container.
package encoder

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/user/winreel/pkg/pipeline"
	"github.com/user/winreel/pkg/ports"
)

// State is the engine lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateWriting
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWriting:
		return "writing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine consumes published frames in index order, converts each to
// the writer's pixel format, and appends it at its presentation
// timestamp. It runs on its own goroutine: the capture side nudges it
// through the cursor's wake channel, and the engine drains the whole
// backlog before parking again.
//
// The container is finalized exactly once, on the terminal transition
// to done or failed.
type Engine struct {
	session pipeline.Session
	cursor  *pipeline.Cursor
	store   ports.FrameStore
	conv    ports.FrameConverter
	writer  ports.SampleWriter
	fs      ports.FileSystem
	logger  ports.Logger

	state     atomic.Int32
	startOnce sync.Once
	done      chan struct{}

	// Written before done is closed, read only after.
	err   error
	stats ports.WriterStats
}

// New creates an Engine. Start must be called to begin draining.
func New(session pipeline.Session, cursor *pipeline.Cursor, store ports.FrameStore,
	conv ports.FrameConverter, writer ports.SampleWriter, fs ports.FileSystem,
	logger ports.Logger) *Engine {
	return &Engine{
		session: session,
		cursor:  cursor,
		store:   store,
		conv:    conv,
		writer:  writer,
		fs:      fs,
		logger:  logger.WithComponent("encoder"),
		done:    make(chan struct{}),
	}
}

// Start launches the drain loop. Subsequent calls are no-ops.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		go e.run()
	})
}

// Done is closed when the engine reaches a terminal state.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Err returns the terminal error, or nil on success. Valid only after
// Done is closed.
func (e *Engine) Err() error {
	return e.err
}

// Stats returns the finalized container stats. Valid only after Done
// is closed with a nil Err.
func (e *Engine) Stats() ports.WriterStats {
	return e.stats
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) run() {
	// The track dimensions derive from the first frame, so the engine
	// idles until frame 0 is published or capture finishes empty.
	for e.cursor.Captured() == 0 {
		if e.cursor.Finished() {
			e.fail(ErrNoFrames)
			return
		}
		<-e.cursor.Wake()
	}

	first, ok := e.store.Frame(0)
	if !ok {
		e.fail(fmt.Errorf("%w: frame 0", ErrFrameGap))
		return
	}
	bounds := first.Bounds()
	target := e.session.TargetDimensions(ports.Dimension{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	})

	if err := e.openContainer(target); err != nil {
		e.fail(err)
		return
	}
	e.state.Store(int32(StateWriting))
	e.logger.Debug("Video track: %dx%d at %d fps", target.Width, target.Height, e.session.FPS)

	next := 0
	for {
		for next < e.cursor.Captured() {
			if err := e.encodeFrame(next, target); err != nil {
				e.abort(err)
				return
			}
			next++
		}
		if e.cursor.Finished() && next == e.cursor.Captured() {
			break
		}
		<-e.cursor.Wake()
	}

	e.finalize(next)
}

// openContainer clears any stale file at the output path and declares
// the video track. Reruns against the same path behave identically.
func (e *Engine) openContainer(target ports.Dimension) error {
	path := e.session.OutputPath
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := e.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("%w: %w", ErrOpenContainer, err)
		}
	}
	exists, err := e.fs.Exists(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenContainer, err)
	}
	if exists {
		if err := e.fs.Remove(path); err != nil {
			return fmt.Errorf("%w: %w", ErrOpenContainer, err)
		}
	}

	opts := ports.WriterOptions{
		Quality: e.session.Quality,
		Bitrate: e.session.Bitrate,
	}
	if err := e.writer.Begin(path, target.Width, target.Height, e.session.FPS, opts); err != nil {
		return fmt.Errorf("%w: %w", ErrOpenContainer, err)
	}
	return nil
}

// encodeFrame converts and appends one frame, then retires it from the
// store. The pixel buffer is released on every path.
func (e *Engine) encodeFrame(index int, target ports.Dimension) error {
	img, ok := e.store.Frame(index)
	if !ok {
		return fmt.Errorf("%w: frame %d", ErrFrameGap, index)
	}

	buf, err := e.conv.Convert(ports.Frame{Index: index, Image: img}, target)
	if err != nil {
		return fmt.Errorf("%w: frame %d: %w", ErrConvertFrame, index, err)
	}

	err = e.writer.WriteSample(buf, e.session.TimestampMs(index))
	e.conv.Release(buf)
	if err != nil {
		return fmt.Errorf("%w: frame %d: %w", ErrAppendSample, index, err)
	}

	e.cursor.AdvanceEncoded()
	e.store.Evict(index)
	return nil
}

// finalize flushes the container and enters the done state.
func (e *Engine) finalize(samples int) {
	e.state.Store(int32(StateFinalizing))
	e.logger.Debug("Finalizing container with %d samples", samples)

	stats, err := e.writer.End()
	if err != nil {
		e.fail(fmt.Errorf("%w: %w", ErrFinalize, err))
		return
	}
	e.stats = stats
	e.state.Store(int32(StateDone))
	close(e.done)
}

// abort handles a fatal mid-write error: the container gets one
// best-effort flush so frames already appended survive as a playable
// truncated file, then the engine fails with the original error.
func (e *Engine) abort(err error) {
	e.state.Store(int32(StateFinalizing))
	if stats, endErr := e.writer.End(); endErr != nil {
		e.logger.Debug("Salvage flush failed: %s", endErr)
	} else {
		e.stats = stats
		e.logger.Debug("Salvaged %d samples into truncated container", stats.Frames)
	}
	e.state.Store(int32(StateFailed))
	e.err = err
	close(e.done)
}

// fail enters the failed state without touching the writer. Used before
// the container is open and after finalize itself fails.
func (e *Engine) fail(err error) {
	e.state.Store(int32(StateFailed))
	e.err = err
	close(e.done)
}
