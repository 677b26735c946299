// Package filestore writes transcript records to the local filesystem.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// maxTitleLen bounds the sanitized title portion of a filename.
const maxTitleLen = 80

// Store is the filesystem implementation of custody.FileStore. It owns the
// primary transcript directory and an optional mirror directory that
// receives a second identical copy of every default save.
type Store struct {
	transcriptsDir string
	mirrorDir      string
}

// NewStore creates a Store. mirrorDir may be empty to disable mirroring.
func NewStore(transcriptsDir, mirrorDir string) *Store {
	return &Store{
		transcriptsDir: transcriptsDir,
		mirrorDir:      mirrorDir,
	}
}

// Save writes the record content as UTF-8 text into dir, named
// <sanitizedTitle>_<recordID><ext>. The write is atomic: content goes to a
// temp file in the same directory which is then renamed into place, so a
// partially written file is never visible at the returned path.
func (s *Store) Save(record *model.Record, dir string, format model.ExportFormat) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &custody.IOError{Op: "creating transcript directory", Path: dir, Err: err}
	}

	name := FileName(record.Title, record.ID, format)
	destPath := filepath.Join(dir, name)

	if err := writeFileAtomic(destPath, []byte(record.Content)); err != nil {
		return "", &custody.IOError{Op: "writing transcript", Path: destPath, Err: err}
	}

	return destPath, nil
}

// SaveDefault writes the record into the configured transcript directory
// and mirrors it when a mirror directory is configured. The mirror is a
// plain secondary copy, not linked to the primary file.
func (s *Store) SaveDefault(record *model.Record, format model.ExportFormat) (string, string, error) {
	primary, err := s.Save(record, s.transcriptsDir, format)
	if err != nil {
		return "", "", err
	}

	if s.mirrorDir == "" {
		return primary, "", nil
	}

	mirror, err := s.Save(record, s.mirrorDir, format)
	if err != nil {
		return "", "", fmt.Errorf("writing mirror copy: %w", err)
	}
	return primary, mirror, nil
}

// Open opens a stored transcript file for reading.
func (s *Store) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &custody.IOError{Op: "opening transcript", Path: path, Err: err}
	}
	return f, nil
}

// Stat returns the size in bytes of a stored transcript file.
func (s *Store) Stat(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, &custody.IOError{Op: "stat transcript", Path: path, Err: err}
	}
	return info.Size(), nil
}

// FileName builds the on-disk name for a record:
// <sanitizedTitle>_<recordID><ext>. ext comes from the export format;
// the pdf format is written as plain text, the extension is all that
// changes.
func FileName(title, recordID string, format model.ExportFormat) string {
	return SanitizeTitle(title) + "_" + recordID + format.Extension()
}

// SanitizeTitle reduces a free-text title to a filesystem-safe token:
// letters, digits, dashes and underscores survive, runs of anything else
// collapse to a single underscore.
func SanitizeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		out = "untitled"
	}
	if len(out) > maxTitleLen {
		out = out[:maxTitleLen]
	}
	return out
}

// writeFileAtomic writes data to destPath via a temp file in the same
// directory followed by a rename.
func writeFileAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that Store implements custody.FileStore
var _ custody.FileStore = (*Store)(nil)
