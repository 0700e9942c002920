package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRawFrame saves a captured frame before conversion.
	SaveRawFrame(index int, img image.Image) error

	// SaveSessionJSON saves the resolved session configuration as JSON.
	SaveSessionJSON(data []byte) error
}
