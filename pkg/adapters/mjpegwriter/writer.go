// Package mjpegwriter writes Motion-JPEG video in an AVI container.
// It is the pure-Go fallback writer, selected for .avi output paths,
// and needs no external encoder.
package mjpegwriter

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"sync"

	"github.com/icza/mjpeg"

	"github.com/user/winreel/pkg/ports"
)

var (
	// ErrNotStarted is returned when writer methods are called before Begin.
	ErrNotStarted = errors.New("mjpegwriter: writer not started")
)

// Writer implements ports.SampleWriter using icza/mjpeg.
type Writer struct {
	mu sync.Mutex

	aw      mjpeg.AviWriter
	path    string
	fps     int
	quality int

	frames int
	closed bool
}

// New creates a new Writer.
func New() *Writer {
	return &Writer{}
}

// Begin opens the AVI container at path.
func (w *Writer) Begin(path string, width, height, fps int, opts ports.WriterOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return fmt.Errorf("open avi: %w", err)
	}

	w.aw = aw
	w.path = path
	w.fps = fps
	w.quality = jpegQuality(opts.Quality)
	w.frames = 0
	w.closed = false
	return nil
}

// jpegQuality maps quality [0,1] onto the JPEG scale 1..100.
func jpegQuality(q float64) int {
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	quality := int(q * 100)
	if quality < 1 {
		quality = 1
	}
	return quality
}

// WriteSample JPEG-encodes one frame and appends it. MJPEG/AVI is a
// constant-rate container, so the timestamp is implied by the frame
// position and the frame rate declared in Begin.
func (w *Writer) WriteSample(buf *ports.PixelBuffer, timestampMs int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.aw == nil || w.closed {
		return ErrNotStarted
	}

	var b bytes.Buffer
	if err := jpeg.Encode(&b, buf.RGBA(), &jpeg.Options{Quality: w.quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}

	if err := w.aw.AddFrame(b.Bytes()); err != nil {
		return fmt.Errorf("add frame: %w", err)
	}

	w.frames++
	return nil
}

// End finalizes the AVI index and closes the file.
func (w *Writer) End() (ports.WriterStats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var stats ports.WriterStats

	if w.aw == nil || w.closed {
		return stats, ErrNotStarted
	}

	w.closed = true
	err := w.aw.Close()
	w.aw = nil
	if err != nil {
		return stats, fmt.Errorf("close avi: %w", err)
	}

	fi, err := os.Stat(w.path)
	if err != nil {
		return stats, fmt.Errorf("stat output: %w", err)
	}

	stats.Frames = w.frames
	stats.Bytes = fi.Size()
	stats.DurationMs = w.frames * 1000 / w.fps
	return stats, nil
}

// Ensure Writer implements ports.SampleWriter
var _ ports.SampleWriter = (*Writer)(nil)
