// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"image"
)

// Grabber is a mock implementation of ports.Grabber.
type Grabber struct {
	CaptureFrameFunc func(ctx context.Context) (image.Image, error)
	CloseFunc        func() error

	// Recorded calls for verification
	CaptureCalls int
	CloseCalled  bool
}

func (m *Grabber) CaptureFrame(ctx context.Context) (image.Image, error) {
	m.CaptureCalls++
	if m.CaptureFrameFunc != nil {
		return m.CaptureFrameFunc(ctx)
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (m *Grabber) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
