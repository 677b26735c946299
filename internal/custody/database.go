package custody

import (
	"time"

	"custody-go/internal/model"
)

// Database provides an interface for metadata storage operations.
// Implementations must enforce cascade deletion: removing a record removes
// its audit entries and publications.
type Database interface {
	// Record operations

	// CreateRecord persists a new transcript record.
	CreateRecord(record *model.Record) error

	// GetRecord returns the record with the given ID, or ErrRecordNotFound.
	GetRecord(id string) (*model.Record, error)

	// ListRecords returns all records ordered by import time, newest first.
	ListRecords() ([]*model.Record, error)

	// UpdateRecordHash sets the record's current content hash.
	UpdateRecordHash(id string, hash string) error

	// UpdateRecordPaths sets the record's storage paths and export format
	// after a save.
	UpdateRecordPaths(id string, format model.ExportFormat, localPath, mirrorPath, offlinePath string) error

	// DeleteRecord removes a record and cascades to its entries and
	// publications.
	DeleteRecord(id string) error

	// Audit entry operations

	// AppendEntry persists one immutable custody entry.
	AppendEntry(entry *model.AuditEntry) error

	// ListEntries returns a record's entries ordered by timestamp ascending,
	// falling back to insertion order for identical timestamps.
	ListEntries(recordID string) ([]*model.AuditEntry, error)

	// Publication operations

	// CreatePublication persists a publication linked to a record.
	CreatePublication(pub *model.Publication) error

	// ListPublications returns a record's publications ordered by publish
	// time ascending.
	ListPublications(recordID string) ([]*model.Publication, error)

	// Storage location operations

	// CreateLocation registers a backup destination.
	CreateLocation(loc *model.StorageLocation) error

	// ListLocations returns all configured backup destinations.
	ListLocations() ([]*model.StorageLocation, error)

	// UpdateLocationSync records the outcome of a backup to a location.
	UpdateLocationSync(id string, syncedAt time.Time, status string) error

	// Close closes the database connection.
	Close() error
}
