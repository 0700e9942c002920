package ports

import (
	"context"
	"image"
)

// TargetKind selects what a Grabber captures.
type TargetKind string

const (
	// TargetDisplay captures a physical display (or a region of one).
	TargetDisplay TargetKind = "display"
	// TargetPage captures a web page rendered in a headless browser.
	TargetPage TargetKind = "page"
)

// Grabber acquires one still image of the capture target per call.
// Implementations make a deterministic choice when the target is
// ambiguous (e.g. display index); callers must not assume anything
// beyond "the same target every call".
type Grabber interface {
	// CaptureFrame takes a single snapshot of the target.
	// A failed snapshot returns an error and no image; the caller
	// decides whether the failure is fatal.
	CaptureFrame(ctx context.Context) (image.Image, error)

	// Close releases any resources held by the grabber.
	Close() error
}
