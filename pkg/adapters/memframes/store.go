// Package memframes provides an in-memory frame store.
package memframes

import (
	"image"
	"sync"

	"github.com/user/winreel/pkg/ports"
)

// Store keeps captured frames in memory, indexed by frame number.
// Writers and readers run on different goroutines; the mutex gives
// Frame a happens-after relationship with the Put that stored the
// image, so a reader never observes a partially written frame.
type Store struct {
	mu     sync.RWMutex
	frames map[int]image.Image
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		frames: make(map[int]image.Image),
	}
}

// Put stores the image for frame index i.
func (s *Store) Put(i int, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[i] = img
}

// Frame returns the image for frame index i.
func (s *Store) Frame(i int) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.frames[i]
	return img, ok
}

// Evict drops the image for frame index i.
func (s *Store) Evict(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.frames, i)
}

// Len returns the number of frames currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}

// Ensure Store implements ports.FrameStore
var _ ports.FrameStore = (*Store)(nil)
