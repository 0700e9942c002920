// Package screengrabber captures still images of a physical display.
package screengrabber

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/user/winreel/pkg/ports"
)

var (
	// ErrNoDisplay is returned when the requested display does not exist.
	ErrNoDisplay = errors.New("screengrabber: display not found")
)

// Options configures the grabber.
type Options struct {
	// Display is the display index to capture (0 = primary).
	Display int
	// Region restricts capture to a sub-rectangle of the display, in
	// display coordinates. Nil captures the whole display.
	Region *image.Rectangle
}

// Grabber implements ports.Grabber for displays. The display index is
// fixed at construction, so every call captures the same target.
type Grabber struct {
	opts Options
}

// New creates a Grabber for the configured display.
func New(opts Options) (*Grabber, error) {
	if opts.Display < 0 || opts.Display >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("%w: index %d, %d active",
			ErrNoDisplay, opts.Display, screenshot.NumActiveDisplays())
	}
	return &Grabber{opts: opts}, nil
}

// CaptureFrame takes one snapshot of the display.
func (g *Grabber) CaptureFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := screenshot.GetDisplayBounds(g.opts.Display)
	if g.opts.Region != nil {
		bounds = g.opts.Region.Intersect(bounds)
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", g.opts.Display, err)
	}
	return img, nil
}

// Close releases nothing; display capture holds no resources between calls.
func (g *Grabber) Close() error {
	return nil
}

// Ensure Grabber implements ports.Grabber
var _ ports.Grabber = (*Grabber)(nil)
