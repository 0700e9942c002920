package encoder

import "errors"

var (
	// ErrNoFrames is returned when capture finishes before a single
	// frame was published; there is nothing to size the track from.
	ErrNoFrames = errors.New("no frames captured")

	// ErrOpenContainer is returned when the output file cannot be
	// prepared or the writer rejects the track declaration.
	ErrOpenContainer = errors.New("cannot open output container")

	// ErrConvertFrame is returned when a frame cannot be rescaled into
	// the writer's pixel format.
	ErrConvertFrame = errors.New("frame conversion failed")

	// ErrAppendSample is returned when the writer rejects a sample.
	ErrAppendSample = errors.New("sample append failed")

	// ErrFinalize is returned when the container cannot be flushed.
	ErrFinalize = errors.New("container finalize failed")

	// ErrFrameGap is returned when a published frame is missing from
	// the store; it indicates a broken store-then-publish ordering.
	ErrFrameGap = errors.New("published frame missing from store")
)
