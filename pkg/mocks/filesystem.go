package mocks

import (
	"os"
	"sync"
)

// FileSystem is an in-memory mock implementation of ports.FileSystem.
type FileSystem struct {
	ReadFileFunc func(path string) ([]byte, error)
	ExistsFunc   func(path string) (bool, error)
	RemoveFunc   func(path string) error

	mu    sync.Mutex
	files map[string][]byte

	// Recorded calls for verification
	Removed []string
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = data
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *FileSystem) Remove(path string) error {
	m.Removed = append(m.Removed, path)
	if m.RemoveFunc != nil {
		return m.RemoveFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}
