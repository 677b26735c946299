package custody

import "io"

// Archive is a backup destination for transcript copies. Implementations
// exist for local/sync-folder directories, in-memory (tests), and S3.
type Archive interface {
	// Put stores a copy under the given name. size is the number of bytes
	// that will be read from r.
	Put(name string, r io.Reader, size int64) error

	// Get retrieves a stored copy by name and writes it to w.
	Get(name string, w io.Writer) error

	// ValidateSetup verifies that the destination is accessible.
	ValidateSetup() error
}
