package custody

import (
	"fmt"

	"custody-go/internal/hash"
	"custody-go/internal/model"
)

// ArchiveProvider resolves a storage location to its Archive backend.
type ArchiveProvider interface {
	For(loc *model.StorageLocation) (Archive, error)
}

// Indexer maintains the full-text search index over stored transcripts.
type Indexer interface {
	Index(record *model.Record) error
	Delete(id string) error
}

// NopIndexer is an Indexer that does nothing. Used when search is disabled.
type NopIndexer struct{}

func (NopIndexer) Index(*model.Record) error { return nil }
func (NopIndexer) Delete(string) error       { return nil }

// Service is the orchestration layer that coordinates across all components
// to perform the high-level custody operations needed by the CLI.
type Service struct {
	db       Database
	files    FileStore
	notary   Notary
	archives ArchiveProvider
	enc      Encryptor
	index    Indexer
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a Service with the provided dependencies.
func NewService(db Database, files FileStore, notary Notary, archives ArchiveProvider, enc Encryptor, index Indexer, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		db:       db,
		files:    files,
		notary:   notary,
		archives: archives,
		enc:      enc,
		index:    index,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// Import creates a new record from pasted transcript text, writes it to the
// transcript directory (and mirror, if configured), computes its content
// hash, and appends the "imported" and "hashed" custody entries.
func (s *Service) Import(title, content, platform, sourceURL string, format model.ExportFormat) (*model.Record, error) {
	now := s.clock.Now()
	record := &model.Record{
		ID:             s.idgen.New(),
		Title:          title,
		Content:        content,
		SourceURL:      sourceURL,
		SourcePlatform: platform,
		CreatedAt:      now,
		ImportedAt:     now,
		ExportFormat:   format,
	}

	if err := s.db.CreateRecord(record); err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	localPath, mirrorPath, err := s.files.SaveDefault(record, format)
	if err != nil {
		return nil, fmt.Errorf("saving transcript: %w", err)
	}
	record.LocalPath = localPath
	record.MirrorPath = mirrorPath

	// The store never auto-hashes; the saved file is hashed here so
	// CurrentHash always reflects the on-disk content.
	sum, err := hash.SumFile(localPath)
	if err != nil {
		return nil, &IOError{Op: "hashing transcript", Path: localPath, Err: err}
	}
	record.CurrentHash = sum

	if err := s.db.UpdateRecordPaths(record.ID, format, localPath, mirrorPath, record.OfflinePath); err != nil {
		return nil, fmt.Errorf("recording paths: %w", err)
	}
	if err := s.db.UpdateRecordHash(record.ID, sum); err != nil {
		return nil, fmt.Errorf("recording hash: %w", err)
	}

	details := fmt.Sprintf("imported from %s", platform)
	if platform == "" {
		details = "imported"
	}
	if err := s.appendEntry(record.ID, model.ActionImported, details, sum, localPath, model.StatusUnverified); err != nil {
		return nil, err
	}
	if err := s.appendEntry(record.ID, model.ActionHashed, "computed SHA-256 digest of saved transcript", sum, "", model.StatusUnverified); err != nil {
		return nil, err
	}

	if err := s.index.Index(record); err != nil {
		// Search is a convenience layer; a failed index write must not
		// undo a completed import.
		s.logger.Warn("indexing transcript failed", "record", record.ID, "error", err)
	}

	s.logger.Info("transcript imported", "record", record.ID, "title", title, "hash", sum)
	return record, nil
}

// Export re-saves a record's content into dir using the given format,
// re-hashes the written file, and appends an "exported" custody entry.
func (s *Service) Export(recordID, dir string, format model.ExportFormat) (string, error) {
	record, err := s.db.GetRecord(recordID)
	if err != nil {
		return "", err
	}

	path, err := s.files.Save(record, dir, format)
	if err != nil {
		return "", fmt.Errorf("exporting transcript: %w", err)
	}

	sum, err := hash.SumFile(path)
	if err != nil {
		return "", &IOError{Op: "hashing export", Path: path, Err: err}
	}

	if err := s.db.UpdateRecordPaths(record.ID, format, path, record.MirrorPath, record.OfflinePath); err != nil {
		return "", fmt.Errorf("recording paths: %w", err)
	}
	if err := s.db.UpdateRecordHash(record.ID, sum); err != nil {
		return "", fmt.Errorf("recording hash: %w", err)
	}

	details := fmt.Sprintf("exported as %s", format)
	if err := s.appendEntry(record.ID, model.ActionExported, details, sum, path, model.StatusUnverified); err != nil {
		return "", err
	}

	s.logger.Info("transcript exported", "record", record.ID, "path", path)
	return path, nil
}

// Get returns a single record by ID.
func (s *Service) Get(recordID string) (*model.Record, error) {
	return s.db.GetRecord(recordID)
}

// List returns all records, newest imports first.
func (s *Service) List() ([]*model.Record, error) {
	return s.db.ListRecords()
}

// Entries returns a record's custody entries in chain order.
func (s *Service) Entries(recordID string) ([]*model.AuditEntry, error) {
	return s.db.ListEntries(recordID)
}

// Delete removes a record along with its custody entries and publications.
// The transcript files on disk are left in place.
func (s *Service) Delete(recordID string) error {
	if _, err := s.db.GetRecord(recordID); err != nil {
		return err
	}
	if err := s.db.DeleteRecord(recordID); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if err := s.index.Delete(recordID); err != nil {
		s.logger.Warn("removing transcript from index failed", "record", recordID, "error", err)
	}
	s.logger.Info("record deleted", "record", recordID)
	return nil
}

// appendEntry creates and persists one immutable custody entry.
// Status is required by design: it is never derived from the action tag.
func (s *Service) appendEntry(recordID string, action model.Action, details, hashValue, location string, status model.EntryStatus) error {
	entry := &model.AuditEntry{
		ID:        s.idgen.New(),
		RecordID:  recordID,
		Timestamp: s.clock.Now(),
		Action:    action,
		Details:   details,
		Hash:      hashValue,
		Location:  location,
		Status:    status,
	}
	if err := s.db.AppendEntry(entry); err != nil {
		return fmt.Errorf("appending %s entry: %w", action, err)
	}
	return nil
}
