package testutil

import (
	"custody-go/internal/archive"
	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// MemoryArchiveProvider resolves every storage location to a shared
// in-memory archive so tests never touch real backup destinations.
type MemoryArchiveProvider struct {
	Archive *archive.MemoryArchive
}

var _ custody.ArchiveProvider = (*MemoryArchiveProvider)(nil)

// NewMemoryArchiveProvider creates a provider backed by one MemoryArchive.
func NewMemoryArchiveProvider() *MemoryArchiveProvider {
	return &MemoryArchiveProvider{Archive: archive.NewMemoryArchive("test-archive")}
}

func (p *MemoryArchiveProvider) For(loc *model.StorageLocation) (custody.Archive, error) {
	return p.Archive, nil
}
