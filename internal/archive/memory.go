package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"custody-go/internal/custody"
)

// MemoryArchive is an in-memory implementation of the Archive interface,
// useful for testing. Safe for concurrent use.
type MemoryArchive struct {
	name   string
	copies map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryArchive creates a new in-memory archive with the given name.
func NewMemoryArchive(name string) *MemoryArchive {
	return &MemoryArchive{
		name:   name,
		copies: make(map[string][]byte),
	}
}

// Put stores a copy under the given name.
func (m *MemoryArchive) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read copy: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies[name] = data
	return nil
}

// Get retrieves a stored copy by name.
func (m *MemoryArchive) Get(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.copies[name]
	if !ok {
		return fmt.Errorf("copy not found: %s", name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write copy: %w", err)
	}
	return nil
}

// Len returns the number of stored copies.
func (m *MemoryArchive) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.copies)
}

// ValidateSetup always succeeds for in-memory archives.
func (m *MemoryArchive) ValidateSetup() error { return nil }

// Compile-time check that MemoryArchive implements custody.Archive
var _ custody.Archive = (*MemoryArchive)(nil)
