package testutil

import (
	"custody-go/internal/custody"
	"custody-go/internal/encryption"
)

// NewTestEncryptor creates a deterministic encryptor for testing.
func NewTestEncryptor() custody.Encryptor {
	return encryption.NewTestEncryptor()
}
