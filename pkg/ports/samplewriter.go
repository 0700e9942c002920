package ports

// WriterOptions configures a sample writer.
type WriterOptions struct {
	// Quality in [0,1]; 1 is best. Mapped to the codec's native scale
	// by each writer (CRF for H.264, JPEG quality for MJPEG).
	Quality float64
	// Bitrate is the target average bitrate in kbps (0 = codec default).
	Bitrate int
}

// WriterStats reports what a finalized container holds.
type WriterStats struct {
	// Frames is the number of samples written to the container.
	Frames int
	// Bytes is the size of the finished container file.
	Bytes int64
	// DurationMs is the presentation duration of the track.
	DurationMs int
}

// SampleWriter owns one output container and its single video track.
type SampleWriter interface {
	// Begin opens the container at path and declares the video track
	// with the given dimensions and frame rate. Any pre-existing file
	// at path must already have been removed by the caller.
	Begin(path string, width, height, fps int, opts WriterOptions) error

	// WriteSample appends one frame at the given presentation
	// timestamp. Timestamps must be strictly increasing.
	WriteSample(buf *PixelBuffer, timestampMs int) error

	// End marks the track complete and flushes the container.
	// The writer must not be used after End returns.
	End() (WriterStats, error)
}
