package mocks

import (
	"image"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	EnabledValue     bool
	SaveRawFrameFunc func(index int, img image.Image) error

	// Recorded calls for verification
	SavedFrames  []int
	SessionJSONs [][]byte
}

func (m *DebugSink) Enabled() bool {
	return m.EnabledValue
}

func (m *DebugSink) SaveRawFrame(index int, img image.Image) error {
	m.SavedFrames = append(m.SavedFrames, index)
	if m.SaveRawFrameFunc != nil {
		return m.SaveRawFrameFunc(index, img)
	}
	return nil
}

func (m *DebugSink) SaveSessionJSON(data []byte) error {
	m.SessionJSONs = append(m.SessionJSONs, data)
	return nil
}
