package app

import (
	"fmt"
	"os"
	"time"

	"custody-go/internal/archive"
	"custody-go/internal/config"
	"custody-go/internal/custody"
	"custody-go/internal/database"
	"custody-go/internal/encryption"
	"custody-go/internal/filestore"
	"custody-go/internal/model"
	"custody-go/internal/notary"
	"custody-go/internal/search"
)

// App is the application layer between the CLI and the custody Service.
// It constructs all dependencies from config, exposes the high-level
// operations the commands call, and manages resource lifecycles on Close.
type App struct {
	cfg       *config.Config
	db        custody.Database
	encryptor custody.Encryptor
	index     *search.Index
	service   *custody.Service
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Import", "Verify").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database schema: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	var index *search.Index
	var indexer custody.Indexer = custody.NopIndexer{}
	if cfg.Search.Enabled && cfg.Search.IndexPath != "" {
		index, err = search.Open(cfg.Search.IndexPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("opening search index: %w", err)
		}
		indexer = index
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		if index != nil {
			index.Close()
		}
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store := filestore.NewStore(cfg.TranscriptsDir, cfg.MirrorDir)
	notaryClient := notary.NewClient(cfg.Notary)
	archives := archive.NewProvider(cfg.S3)

	svc := custody.NewService(db, store, notaryClient, archives, enc, indexer,
		&slogAdapter{l: logger.With("op", operation)}, custody.RealClock{}, custody.UUIDGenerator{})

	return &App{
		cfg:       cfg,
		db:        db,
		encryptor: enc,
		index:     index,
		service:   svc,
		logFile:   logFile,
	}, nil
}

// Import preserves a pasted transcript and returns the new record.
func (a *App) Import(title, content, platform, sourceURL string, format model.ExportFormat) (*model.Record, error) {
	return a.service.Import(title, content, platform, sourceURL, format)
}

// Export re-saves a record into dir using the given format.
func (a *App) Export(recordID, dir string, format model.ExportFormat) (string, error) {
	return a.service.Export(recordID, dir, format)
}

// Get returns a single record by ID.
func (a *App) Get(recordID string) (*model.Record, error) {
	return a.service.Get(recordID)
}

// List returns all records, newest imports first.
func (a *App) List() ([]*model.Record, error) {
	return a.service.List()
}

// Entries returns a record's custody entries in chain order.
func (a *App) Entries(recordID string) ([]*model.AuditEntry, error) {
	return a.service.Entries(recordID)
}

// Delete removes a record with its custody entries and publications.
func (a *App) Delete(recordID string) error {
	return a.service.Delete(recordID)
}

// Verify recomputes the record's file hash and compares it against the
// recorded one.
func (a *App) Verify(recordID string) (*custody.VerificationResult, error) {
	return a.service.VerifyIntegrity(recordID)
}

// Publish submits the record's hash to a notarization service.
func (a *App) Publish(recordID string, service model.NotaryService) (*model.Publication, error) {
	return a.service.Publish(recordID, service)
}

// Publications returns a record's publications in publish order.
func (a *App) Publications(recordID string) ([]*model.Publication, error) {
	return a.service.Publications(recordID)
}

// Backup copies the record's transcript file to every enabled location.
func (a *App) Backup(recordID string) (int, error) {
	return a.service.Backup(recordID)
}

// Report renders the record's full chain-of-custody report.
func (a *App) Report(recordID string) (string, error) {
	return a.service.Report(recordID)
}

// AddLocation registers a new backup destination.
func (a *App) AddLocation(name string, typ model.LocationType, path string, encrypted bool) (*model.StorageLocation, error) {
	loc := &model.StorageLocation{
		ID:        custody.UUIDGenerator{}.New(),
		Name:      name,
		Type:      typ,
		Path:      path,
		Enabled:   true,
		Encrypted: encrypted,
	}
	if err := a.db.CreateLocation(loc); err != nil {
		return nil, fmt.Errorf("creating storage location: %w", err)
	}
	return loc, nil
}

// ListLocations returns all configured backup destinations.
func (a *App) ListLocations() ([]*model.StorageLocation, error) {
	return a.db.ListLocations()
}

// Search runs a full-text query over stored transcripts.
func (a *App) Search(query string, limit int) ([]*search.Result, error) {
	if a.index == nil {
		return nil, fmt.Errorf("search is disabled in the configuration")
	}
	return a.index.Search(query, limit)
}

// Reindex rebuilds the search index from all stored records.
func (a *App) Reindex() (int, error) {
	if a.index == nil {
		return 0, fmt.Errorf("search is disabled in the configuration")
	}
	records, err := a.service.List()
	if err != nil {
		return 0, err
	}
	if err := a.index.Reindex(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// InitKeys generates the age key pair used for encrypted backup copies.
func (a *App) InitKeys(passphrase string) error {
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("key pair already exists; refusing to overwrite")
	}
	return a.encryptor.Setup(passphrase)
}

// Close releases the database, search index, and log file.
func (a *App) Close() error {
	var firstErr error

	if a.index != nil {
		if err := a.index.Close(); err != nil {
			firstErr = fmt.Errorf("closing search index: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
