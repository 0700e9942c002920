package ports

import (
	"image"
)

// Dimension represents width and height in pixels.
type Dimension struct {
	Width  int
	Height int
}

// Frame is one captured still image with its sequence index.
type Frame struct {
	Index int
	Image image.Image
}

// PixelBuffer is an opaque RGBA pixel buffer in the exact layout the
// sample writers expect: 4 bytes per pixel, row-major, stride =
// Width*4, alpha always 0xFF.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// RGBA wraps the buffer as an image without copying.
func (b *PixelBuffer) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FrameConverter rescales a raw captured frame into the pixel buffer
// the sample writer consumes. Conversion applies one uniform scale
// factor to both axes and discards any source alpha channel.
type FrameConverter interface {
	// Convert produces a buffer of exactly target dimensions from the
	// frame's image. The buffer is only valid until Release is called.
	Convert(frame Frame, target Dimension) (*PixelBuffer, error)

	// Release returns a buffer obtained from Convert to the pool.
	// Callers must release on every exit path so peak memory stays at
	// one frame regardless of sequence length.
	Release(buf *PixelBuffer)
}
