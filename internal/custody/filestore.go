package custody

import (
	"io"

	"custody-go/internal/model"
)

// FileStore writes transcript records to the local filesystem.
type FileStore interface {
	// Save serializes the record content as UTF-8 text into dir, named
	// <sanitizedTitle>_<recordID><ext> with the extension taken from
	// format. The write is atomic: a partially written file is never
	// visible at the returned path. The pdf format is written as plain
	// text — a known simplification, not a true PDF.
	Save(record *model.Record, dir string, format model.ExportFormat) (string, error)

	// SaveDefault writes the record into the configured transcript
	// directory and, when a mirror directory is configured, writes a second
	// identical copy there. Returns the primary and mirror paths; the
	// mirror path is empty when no mirror is configured.
	SaveDefault(record *model.Record, format model.ExportFormat) (string, string, error)

	// Open opens a stored transcript file for reading.
	Open(path string) (io.ReadCloser, error)

	// Stat returns the size in bytes of a stored transcript file.
	Stat(path string) (int64, error)
}

// Encryptor seals backup copies destined for encrypted storage locations.
type Encryptor interface {
	// Setup generates and stores the key material, protecting the
	// private half with the passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w using
	// the stored public key. No passphrase is needed to encrypt.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns a
	// context that can decrypt data.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether key material is present.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key.
type DecryptionContext interface {
	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
