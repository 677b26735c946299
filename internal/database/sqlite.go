package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"custody-go/internal/custody"
	"custody-go/internal/database/migrations"
	"custody-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the custody.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens a SQLite database at path.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a raw configured handle.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Cascade deletion of audit entries and publications depends on this;
	// SQLite ships with foreign keys OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// storageErr wraps a persistence failure in the typed error the service
// layer matches on.
func storageErr(op string, err error) error {
	return &custody.StorageError{Op: op, Err: err}
}

// Record operations

func (s *SQLiteDatabase) CreateRecord(record *model.Record) error {
	_, err := s.db.Exec(`
		INSERT INTO records (id, title, content, source_url, source_platform,
			created_at, imported_at, current_hash, export_format,
			local_path, mirror_path, offline_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Title, record.Content, record.SourceURL, record.SourcePlatform,
		record.CreatedAt, record.ImportedAt, record.CurrentHash, string(record.ExportFormat),
		record.LocalPath, record.MirrorPath, record.OfflinePath,
	)
	if err != nil {
		return storageErr("creating record", err)
	}
	return nil
}

const recordColumns = `id, title, content, source_url, source_platform,
	created_at, imported_at, current_hash, export_format,
	local_path, mirror_path, offline_path`

func scanRecord(row interface{ Scan(...any) error }) (*model.Record, error) {
	var r model.Record
	var format string
	err := row.Scan(&r.ID, &r.Title, &r.Content, &r.SourceURL, &r.SourcePlatform,
		&r.CreatedAt, &r.ImportedAt, &r.CurrentHash, &format,
		&r.LocalPath, &r.MirrorPath, &r.OfflinePath)
	if err != nil {
		return nil, err
	}
	r.ExportFormat = model.ExportFormat(format)
	return &r, nil
}

func (s *SQLiteDatabase) GetRecord(id string) (*model.Record, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, custody.ErrRecordNotFound)
		}
		return nil, storageErr("finding record", err)
	}
	return record, nil
}

func (s *SQLiteDatabase) ListRecords() ([]*model.Record, error) {
	rows, err := s.db.Query(`SELECT ` + recordColumns + ` FROM records ORDER BY imported_at DESC, id`)
	if err != nil {
		return nil, storageErr("listing records", err)
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, storageErr("scanning record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listing records", err)
	}
	return records, nil
}

func (s *SQLiteDatabase) UpdateRecordHash(id string, hash string) error {
	res, err := s.db.Exec(`UPDATE records SET current_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return storageErr("updating record hash", err)
	}
	return requireRowAffected(res, id)
}

func (s *SQLiteDatabase) UpdateRecordPaths(id string, format model.ExportFormat, localPath, mirrorPath, offlinePath string) error {
	res, err := s.db.Exec(`
		UPDATE records
		SET export_format = ?, local_path = ?, mirror_path = ?, offline_path = ?
		WHERE id = ?`,
		string(format), localPath, mirrorPath, offlinePath, id)
	if err != nil {
		return storageErr("updating record paths", err)
	}
	return requireRowAffected(res, id)
}

// DeleteRecord removes a record. Audit entries and publications cascade via
// the foreign key constraints.
func (s *SQLiteDatabase) DeleteRecord(id string) error {
	res, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return storageErr("deleting record", err)
	}
	return requireRowAffected(res, id)
}

func requireRowAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("checking affected rows", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, custody.ErrRecordNotFound)
	}
	return nil
}

// Audit entry operations

func (s *SQLiteDatabase) AppendEntry(entry *model.AuditEntry) error {
	res, err := s.db.Exec(`
		INSERT INTO audit_entries (id, record_id, timestamp, action, details, hash, location, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.RecordID, entry.Timestamp, string(entry.Action),
		entry.Details, entry.Hash, entry.Location, string(entry.Status),
	)
	if err != nil {
		return storageErr("appending audit entry", err)
	}
	if seq, err := res.LastInsertId(); err == nil {
		entry.Seq = seq
	}
	return nil
}

func (s *SQLiteDatabase) ListEntries(recordID string) ([]*model.AuditEntry, error) {
	// Ordering is timestamp ascending with the autoincrement seq as a
	// stable tiebreak for identical timestamps.
	rows, err := s.db.Query(`
		SELECT seq, id, record_id, timestamp, action, details, hash, location, status
		FROM audit_entries
		WHERE record_id = ?
		ORDER BY timestamp, seq`, recordID)
	if err != nil {
		return nil, storageErr("listing audit entries", err)
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var action, status string
		if err := rows.Scan(&e.Seq, &e.ID, &e.RecordID, &e.Timestamp, &action,
			&e.Details, &e.Hash, &e.Location, &status); err != nil {
			return nil, storageErr("scanning audit entry", err)
		}
		e.Action = model.Action(action)
		e.Status = model.EntryStatus(status)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listing audit entries", err)
	}
	return entries, nil
}

// Publication operations

func (s *SQLiteDatabase) CreatePublication(pub *model.Publication) error {
	_, err := s.db.Exec(`
		INSERT INTO publications (id, record_id, service, published_at,
			public_url, transaction_id, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pub.ID, pub.RecordID, string(pub.Service), pub.PublishedAt,
		pub.PublicURL, pub.TransactionID, string(pub.Status), pub.ErrorMessage,
	)
	if err != nil {
		return storageErr("creating publication", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListPublications(recordID string) ([]*model.Publication, error) {
	rows, err := s.db.Query(`
		SELECT id, record_id, service, published_at, public_url, transaction_id, status, error_message
		FROM publications
		WHERE record_id = ?
		ORDER BY published_at, seq`, recordID)
	if err != nil {
		return nil, storageErr("listing publications", err)
	}
	defer rows.Close()

	var pubs []*model.Publication
	for rows.Next() {
		var p model.Publication
		var service, status string
		if err := rows.Scan(&p.ID, &p.RecordID, &service, &p.PublishedAt,
			&p.PublicURL, &p.TransactionID, &status, &p.ErrorMessage); err != nil {
			return nil, storageErr("scanning publication", err)
		}
		p.Service = model.NotaryService(service)
		p.Status = model.PublicationStatus(status)
		pubs = append(pubs, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listing publications", err)
	}
	return pubs, nil
}

// Storage location operations

func (s *SQLiteDatabase) CreateLocation(loc *model.StorageLocation) error {
	var lastSync sql.NullTime
	if loc.LastSyncAt != nil {
		lastSync = sql.NullTime{Time: *loc.LastSyncAt, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO storage_locations (id, name, type, path, enabled, encrypted, last_sync_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		loc.ID, loc.Name, string(loc.Type), loc.Path, loc.Enabled, loc.Encrypted, lastSync, loc.SyncStatus,
	)
	if err != nil {
		return storageErr("creating storage location", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListLocations() ([]*model.StorageLocation, error) {
	rows, err := s.db.Query(`
		SELECT id, name, type, path, enabled, encrypted, last_sync_at, sync_status
		FROM storage_locations
		ORDER BY name`)
	if err != nil {
		return nil, storageErr("listing storage locations", err)
	}
	defer rows.Close()

	var locs []*model.StorageLocation
	for rows.Next() {
		var l model.StorageLocation
		var typ string
		var lastSync sql.NullTime
		if err := rows.Scan(&l.ID, &l.Name, &typ, &l.Path, &l.Enabled, &l.Encrypted, &lastSync, &l.SyncStatus); err != nil {
			return nil, storageErr("scanning storage location", err)
		}
		l.Type = model.LocationType(typ)
		if lastSync.Valid {
			t := lastSync.Time
			l.LastSyncAt = &t
		}
		locs = append(locs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listing storage locations", err)
	}
	return locs, nil
}

func (s *SQLiteDatabase) UpdateLocationSync(id string, syncedAt time.Time, status string) error {
	_, err := s.db.Exec(`
		UPDATE storage_locations SET last_sync_at = ?, sync_status = ? WHERE id = ?`,
		syncedAt, status, id)
	if err != nil {
		return storageErr("updating location sync state", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp applies all pending schema migrations.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements custody.Database
var _ custody.Database = (*SQLiteDatabase)(nil)
