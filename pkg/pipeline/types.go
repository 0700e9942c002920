// Package pipeline provides the shared data model of the capture
// pipeline: the immutable recording session and the cursor that the
// capture and encode actors coordinate through.
package pipeline

import (
	"time"

	"github.com/user/winreel/pkg/ports"
)

// Session holds the configuration of one recording. It is created once
// at start and never mutated afterwards.
type Session struct {
	// OutputPath is where the finished container is written.
	// The extension selects the writer (.avi = MJPEG, otherwise H.264).
	OutputPath string

	// FPS is the capture and playback frame rate (positive integer,
	// at most 1000 so millisecond timestamps stay distinct). Playback
	// speed is frame-rate-defined; capture latency does not shift
	// presentation timestamps.
	FPS int

	// Scale is the uniform spatial scale factor applied to the first
	// frame's dimensions to derive the video dimensions.
	Scale float64

	// Quality is the compression quality in [0,1]; 1 is best.
	Quality float64

	// Bitrate is the target average bitrate in kbps (0 = codec default).
	Bitrate int

	// Target selects what is captured.
	Target ports.TargetKind

	// Display is the display index for TargetDisplay.
	Display int

	// PageURL is the page to capture for TargetPage.
	PageURL string

	// Stamp draws a timecode overlay onto each frame.
	Stamp bool
}

// DefaultSession returns a Session with default values.
func DefaultSession() Session {
	return Session{
		OutputPath: "animation.mov",
		FPS:        10,
		Scale:      0.5,
		Quality:    0.5,
		Target:     ports.TargetDisplay,
	}
}

// Interval is the wall-clock spacing between capture ticks.
func (s Session) Interval() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// TimestampMs returns the presentation timestamp of frame i in
// milliseconds: i/FPS seconds. Pure in the frame index, so timestamps
// are strictly increasing.
func (s Session) TimestampMs(i int) int {
	return i * 1000 / s.FPS
}

// TargetDimensions derives the video dimensions from the first frame's
// dimensions and the configured scale. Results are rounded down to even
// values since 4:2:0 chroma subsampling requires them, with a floor of
// 2x2.
func (s Session) TargetDimensions(first ports.Dimension) ports.Dimension {
	w := int(float64(first.Width)*s.Scale) &^ 1
	h := int(float64(first.Height)*s.Scale) &^ 1
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return ports.Dimension{Width: w, Height: h}
}
