// Package ffmpegwriter writes H.264 video using an ffmpeg subprocess.
// Raw RGBA frames are piped to ffmpeg's stdin; ffmpeg encodes and muxes
// straight into the output container.
package ffmpegwriter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/user/winreel/pkg/ports"
)

// Writer implements ports.SampleWriter using an external ffmpeg process.
type Writer struct {
	mu sync.Mutex

	path   string
	width  int
	height int
	fps    int
	opts   ports.WriterOptions

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	frames int
	closed bool
}

// New creates a new Writer.
func New() *Writer {
	return &Writer{}
}

// Begin starts ffmpeg writing to path. The caller has already removed
// any pre-existing file at path; ffmpeg is still passed -y so a race
// with an outside writer cannot stall it on a prompt.
func (w *Writer) Begin(path string, width, height, fps int, opts ports.WriterOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}

	w.path = path
	w.width = width
	w.height = height
	w.fps = fps
	w.opts = opts
	w.frames = 0
	w.closed = false
	w.stderr.Reset()

	w.cmd = exec.Command(ffmpegPath, buildArgs(path, width, height, fps, opts)...)
	w.cmd.Stderr = &w.stderr

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("get stdin pipe: %w", err)
	}
	w.stdin = stdin

	if err := w.cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	return nil
}

// buildArgs assembles the ffmpeg command line for one recording.
func buildArgs(path string, width, height, fps int, opts ports.WriterOptions) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-crf", fmt.Sprintf("%d", crfFromQuality(opts.Quality)),
	}

	if opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	}

	// Baseline profile for broad player compatibility.
	args = append(args,
		"-profile:v", "baseline",
		"-level", "3.1",
		"-movflags", "+faststart",
		path,
	)

	return args
}

// crfFromQuality maps quality [0,1] onto x264's CRF scale (51..0).
func crfFromQuality(q float64) int {
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	return int((1 - q) * 51)
}

// WriteSample pipes one raw RGBA frame to ffmpeg. The input stream is
// constant-rate, so the presentation timestamp is implied by the frame
// position and the -r flag; the caller's strictly increasing timestamps
// land unchanged in the container.
func (w *Writer) WriteSample(buf *ports.PixelBuffer, timestampMs int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stdin == nil || w.closed {
		return ErrNotStarted
	}
	if buf.Width != w.width || buf.Height != w.height {
		return fmt.Errorf("%w: got %dx%d, track is %dx%d",
			ErrBadFrameSize, buf.Width, buf.Height, w.width, w.height)
	}

	if _, err := w.stdin.Write(buf.Pix); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	w.frames++
	return nil
}

// End closes ffmpeg's input and waits for the container to be flushed.
func (w *Writer) End() (ports.WriterStats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var stats ports.WriterStats

	if w.stdin == nil || w.closed {
		return stats, ErrNotStarted
	}

	w.stdin.Close()
	w.stdin = nil
	w.closed = true

	if err := w.cmd.Wait(); err != nil {
		return stats, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, w.stderr.String())
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
