package custody

import (
	"fmt"

	"custody-go/internal/model"
)

// Publish submits the record's current hash to an external notarization
// service. Exactly one outbound call is made; on failure nothing is
// persisted — no publication row and no custody entry.
func (s *Service) Publish(recordID string, service model.NotaryService) (*model.Publication, error) {
	record, err := s.db.GetRecord(recordID)
	if err != nil {
		return nil, err
	}
	if record.CurrentHash == "" {
		return nil, fmt.Errorf("record %s has no hash to publish: %w", recordID, ErrInvalidHash)
	}

	now := s.clock.Now()
	proof, err := s.notary.Publish(service, ProofRequest{
		Title:     record.Title,
		Hash:      record.CurrentHash,
		Timestamp: now,
	})
	if err != nil {
		return nil, fmt.Errorf("publishing to %s: %w", service, err)
	}

	pub := &model.Publication{
		ID:            s.idgen.New(),
		RecordID:      record.ID,
		Service:       service,
		PublishedAt:   now,
		PublicURL:     proof.PublicURL,
		TransactionID: proof.TransactionID,
		Status:        proof.Status,
	}
	if err := s.db.CreatePublication(pub); err != nil {
		return nil, fmt.Errorf("recording publication: %w", err)
	}

	location := pub.PublicURL
	if location == "" {
		location = pub.TransactionID
	}
	details := fmt.Sprintf("hash published to %s (%s)", service, pub.Status)
	if err := s.appendEntry(record.ID, model.ActionPublished, details, record.CurrentHash, location, model.StatusUnverified); err != nil {
		return nil, err
	}

	s.logger.Info("hash published", "record", record.ID, "service", service, "status", pub.Status)
	return pub, nil
}

// Publications returns a record's publications in publish order.
func (s *Service) Publications(recordID string) ([]*model.Publication, error) {
	return s.db.ListPublications(recordID)
}
