package ffmpegwriter

import "errors"

var (
	// ErrNotStarted is returned when writer methods are called before Begin.
	ErrNotStarted = errors.New("ffmpegwriter: writer not started")

	// ErrBadFrameSize is returned when a frame does not match the track dimensions.
	ErrBadFrameSize = errors.New("ffmpegwriter: frame size mismatch")

	// ErrFFmpegNotFound is returned when ffmpeg is not found.
	ErrFFmpegNotFound = errors.New("ffmpegwriter: ffmpeg not found in PATH")
)
