package mocks

import (
	"github.com/user/winreel/pkg/ports"
)

// FrameConverter is a mock implementation of ports.FrameConverter.
type FrameConverter struct {
	ConvertFunc func(frame ports.Frame, target ports.Dimension) (*ports.PixelBuffer, error)
	ReleaseFunc func(buf *ports.PixelBuffer)

	// Recorded calls for verification
	ConvertCalls []int
	ReleaseCalls int
}

func (m *FrameConverter) Convert(frame ports.Frame, target ports.Dimension) (*ports.PixelBuffer, error) {
	m.ConvertCalls = append(m.ConvertCalls, frame.Index)
	if m.ConvertFunc != nil {
		return m.ConvertFunc(frame, target)
	}
	return &ports.PixelBuffer{
		Width:  target.Width,
		Height: target.Height,
		Pix:    make([]byte, target.Width*target.Height*4),
	}, nil
}

func (m *FrameConverter) Release(buf *ports.PixelBuffer) {
	m.ReleaseCalls++
	if m.ReleaseFunc != nil {
		m.ReleaseFunc(buf)
	}
}
