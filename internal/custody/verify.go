package custody

import (
	"fmt"
	"time"

	"custody-go/internal/hash"
	"custody-go/internal/model"
)

// VerificationResult is the outcome of an integrity check.
type VerificationResult struct {
	IsValid      bool
	StoredHash   string
	ComputedHash string
	VerifiedAt   time.Time
}

// VerifyIntegrity recomputes the hash of the record's transcript file and
// compares it (case-insensitively) against the last recorded hash. A
// "verified" entry is appended on a match, a "modified" entry on a
// mismatch. If the file cannot be read, no entry is appended.
func (s *Service) VerifyIntegrity(recordID string) (*VerificationResult, error) {
	record, err := s.db.GetRecord(recordID)
	if err != nil {
		return nil, err
	}
	if record.CurrentHash == "" {
		return nil, fmt.Errorf("record %s has no recorded hash to verify against", recordID)
	}
	if record.LocalPath == "" {
		return nil, fmt.Errorf("record %s has no saved transcript file", recordID)
	}

	computed, err := hash.SumFile(record.LocalPath)
	if err != nil {
		return nil, &IOError{Op: "reading transcript for verification", Path: record.LocalPath, Err: err}
	}

	now := s.clock.Now()
	result := &VerificationResult{
		IsValid:      hash.Verify(computed, record.CurrentHash),
		StoredHash:   record.CurrentHash,
		ComputedHash: computed,
		VerifiedAt:   now,
	}

	if result.IsValid {
		err = s.appendEntry(record.ID, model.ActionVerified,
			"integrity verified: file content matches recorded hash",
			computed, record.LocalPath, model.StatusVerified)
	} else {
		err = s.appendEntry(record.ID, model.ActionModified,
			"integrity check failed: file content does not match recorded hash",
			computed, record.LocalPath, model.StatusUnverified)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("integrity check complete", "record", record.ID, "valid", result.IsValid)
	return result, nil
}
