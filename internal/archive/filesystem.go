// Package archive implements backup destinations for transcript copies.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"custody-go/internal/custody"
)

// FileSystemArchive stores copies as plain files under a root directory.
// It covers every directory-backed location type: local folders, mounted
// external drives, and sync-provider folders (iCloud, Dropbox, Drive) —
// the provider's own agent handles the cloud side.
type FileSystemArchive struct {
	name string
	root string
}

// NewFileSystemArchive creates an archive rooted at the given directory,
// creating it if necessary.
func NewFileSystemArchive(name, root string) (*FileSystemArchive, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileSystemArchive{name: name, root: root}, nil
}

// Put stores a copy under the given name using an atomic
// temp-file-then-rename write.
func (a *FileSystemArchive) Put(name string, r io.Reader, size int64) error {
	destPath := filepath.Join(a.root, name)

	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Get retrieves a stored copy by name and writes it to w.
func (a *FileSystemArchive) Get(name string, w io.Writer) error {
	f, err := os.Open(filepath.Join(a.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("copy not found: %s", name)
		}
		return fmt.Errorf("failed to open copy: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read copy: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the archive root is an accessible directory.
func (a *FileSystemArchive) ValidateSetup() error {
	info, err := os.Stat(a.root)
	if err != nil {
		return fmt.Errorf("archive root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root is not a directory: %s", a.root)
	}
	return nil
}

// Compile-time check that FileSystemArchive implements custody.Archive
var _ custody.Archive = (*FileSystemArchive)(nil)
