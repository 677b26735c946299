package custody

import (
	"time"

	"custody-go/internal/model"
)

// ProofRequest carries everything a notary client needs to publish a digest.
type ProofRequest struct {
	Title     string
	Hash      string // SHA-256 hex of the transcript file
	Timestamp time.Time
}

// Proof is the result of one successful notarization call.
type Proof struct {
	Service       model.NotaryService
	PublicURL     string // set by URL-returning services
	TransactionID string // set by blockchain-style services
	Status        model.PublicationStatus
}

// Notary publishes content digests to external notarization services.
// Implementations make exactly one outbound call per invocation: no
// retries, no backoff, platform-default transport behavior only.
type Notary interface {
	// Publish submits the digest to the given service and returns the proof.
	// Fails with ErrUnsupportedService when no client exists for service,
	// and with the publication error kinds otherwise.
	Publish(service model.NotaryService, req ProofRequest) (*Proof, error)
}
