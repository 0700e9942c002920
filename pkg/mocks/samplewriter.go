package mocks

import (
	"github.com/user/winreel/pkg/ports"
)

// SampleWriter is a mock implementation of ports.SampleWriter.
type SampleWriter struct {
	BeginFunc       func(path string, width, height, fps int, opts ports.WriterOptions) error
	WriteSampleFunc func(buf *ports.PixelBuffer, timestampMs int) error
	EndFunc         func() (ports.WriterStats, error)

	// Recorded calls for verification
	BeginCalled bool
	BeginPath   string
	BeginWidth  int
	BeginHeight int
	BeginFPS    int
	WrittenMs   []int
	EndCalls    int
}

func (m *SampleWriter) Begin(path string, width, height, fps int, opts ports.WriterOptions) error {
	m.BeginCalled = true
	m.BeginPath = path
	m.BeginWidth = width
	m.BeginHeight = height
	m.BeginFPS = fps
	if m.BeginFunc != nil {
		return m.BeginFunc(path, width, height, fps, opts)
	}
	return nil
}

func (m *SampleWriter) WriteSample(buf *ports.PixelBuffer, timestampMs int) error {
	m.WrittenMs = append(m.WrittenMs, timestampMs)
	if m.WriteSampleFunc != nil {
		return m.WriteSampleFunc(buf, timestampMs)
	}
	return nil
}

func (m *SampleWriter) End() (ports.WriterStats, error) {
	m.EndCalls++
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	return ports.WriterStats{Frames: len(m.WrittenMs)}, nil
}
