package ports

import (
	"image"
)

// FrameStore holds captured frames by sequential index until they are
// consumed by the encoder. Put and Frame are safe to call from
// different goroutines; a frame published by Put is fully visible to a
// subsequent Frame call for the same index.
type FrameStore interface {
	// Put stores the image for frame index i. Indices are append-only
	// and gapless; storing the same index twice is a programming error.
	Put(i int, img image.Image)

	// Frame returns the image for frame index i.
	// ok is false if the index was never stored or was evicted.
	Frame(i int) (img image.Image, ok bool)

	// Evict drops the image for frame index i so its memory can be
	// reclaimed once the encoder no longer needs it.
	Evict(i int)

	// Len returns the number of frames currently held.
	Len() int
}
