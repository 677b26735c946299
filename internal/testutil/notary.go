package testutil

import (
	"sync"

	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// FakeNotary records publish requests and returns a canned proof or error.
type FakeNotary struct {
	mu       sync.Mutex
	Proof    *custody.Proof
	Err      error
	Requests []custody.ProofRequest
	Services []model.NotaryService
}

var _ custody.Notary = (*FakeNotary)(nil)

// NewFakeNotary creates a FakeNotary that confirms every publication.
func NewFakeNotary() *FakeNotary {
	return &FakeNotary{
		Proof: &custody.Proof{
			Service:   model.ServiceCustomWebhook,
			PublicURL: "https://notary.test/proof/1",
			Status:    model.PublicationConfirmed,
		},
	}
}

func (n *FakeNotary) Publish(service model.NotaryService, req custody.ProofRequest) (*custody.Proof, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Requests = append(n.Requests, req)
	n.Services = append(n.Services, service)
	if n.Err != nil {
		return nil, n.Err
	}
	proof := *n.Proof
	proof.Service = service
	return &proof, nil
}

// Calls returns how many publish requests were made.
func (n *FakeNotary) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Requests)
}
