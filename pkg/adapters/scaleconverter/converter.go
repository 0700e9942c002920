// Package scaleconverter converts captured frames into the opaque RGBA
// buffers the sample writers consume.
package scaleconverter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/winreel/pkg/ports"
)

var (
	// ErrNilFrame is returned when the frame carries no image.
	ErrNilFrame = errors.New("scaleconverter: frame has no image")

	// ErrBadDimensions is returned for a non-positive target size.
	ErrBadDimensions = errors.New("scaleconverter: invalid target dimensions")

	// ErrSourceChanged is returned when a frame's dimensions differ
	// from the first frame of the sequence.
	ErrSourceChanged = errors.New("scaleconverter: source dimensions changed mid-sequence")
)

// Options configures the converter.
type Options struct {
	// Stamp draws a timecode and frame number onto each frame.
	Stamp bool
	// FPS is the session frame rate, used to derive the timecode.
	FPS int
}

// Converter implements ports.FrameConverter. Buffers are recycled
// through a sync.Pool, so steady-state conversion allocates nothing
// per frame.
type Converter struct {
	opts Options
	pool sync.Pool

	// Dimensions of the first converted frame. The target size is
	// derived from frame 0, so a source that changes size mid-run
	// (display resolution switch) would be stretched with two
	// different factors; such frames are rejected instead.
	srcW, srcH int
}

// New creates a Converter.
func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// Convert scales the frame to target dimensions and normalizes it to
// opaque RGBA. Source alpha is discarded by compositing over an opaque
// background; the output never carries transparency.
func (c *Converter) Convert(frame ports.Frame, target ports.Dimension) (*ports.PixelBuffer, error) {
	if frame.Image == nil {
		return nil, ErrNilFrame
	}
	if target.Width <= 0 || target.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, target.Width, target.Height)
	}

	b := frame.Image.Bounds()
	if c.srcW == 0 && c.srcH == 0 {
		c.srcW, c.srcH = b.Dx(), b.Dy()
	} else if b.Dx() != c.srcW || b.Dy() != c.srcH {
		return nil, fmt.Errorf("%w: frame %d is %dx%d, sequence started at %dx%d",
			ErrSourceChanged, frame.Index, b.Dx(), b.Dy(), c.srcW, c.srcH)
	}

	buf := c.getBuffer(target)
	dst := buf.RGBA()

	// Opaque background first, then composite the source over it.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), frame.Image, frame.Image.Bounds(), draw.Over, nil)

	// A video frame is always fully opaque.
	for i := 3; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = 0xFF
	}

	if c.opts.Stamp {
		c.stamp(dst, frame.Index)
	}

	return buf, nil
}

// Release returns the buffer to the pool.
func (c *Converter) Release(buf *ports.PixelBuffer) {
	if buf == nil {
		return
	}
	c.pool.Put(buf)
}

// getBuffer supplies a buffer of exactly the target size, reusing a
// pooled one when it matches.
func (c *Converter) getBuffer(target ports.Dimension) *ports.PixelBuffer {
	if v := c.pool.Get(); v != nil {
		buf := v.(*ports.PixelBuffer)
		if buf.Width == target.Width && buf.Height == target.Height {
			return buf
		}
	}
	return &ports.PixelBuffer{
		Width:  target.Width,
		Height: target.Height,
		Pix:    make([]byte, target.Width*target.Height*4),
	}
}

// stamp draws "HH:MM:SS.mmm #N" in the bottom-left corner.
func (c *Converter) stamp(dst *image.RGBA, index int) {
	fps := c.opts.FPS
	if fps <= 0 {
		fps = 1
	}
	ms := index * 1000 / fps
	label := fmt.Sprintf("%02d:%02d:%02d.%03d #%d",
		ms/3600000, ms/60000%60, ms/1000%60, ms%1000, index)

	dc := gg.NewContextForRGBA(dst)
	w, h := dc.MeasureString(label)
	x := 4.0
	y := float64(dst.Bounds().Dy()) - 4

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(x-2, y-h-2, w+4, h+4)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawString(label, x, y-2)
}

// Ensure Converter implements ports.FrameConverter
var _ ports.FrameConverter = (*Converter)(nil)
