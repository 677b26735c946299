package model

import "time"

// ExportFormat selects the on-disk representation of a transcript.
type ExportFormat string

const (
	FormatText     ExportFormat = "text"
	FormatMarkdown ExportFormat = "markdown"
	FormatPDF      ExportFormat = "pdf" // written as plain text; see filestore
)

// Extension returns the file extension for a format, including the dot.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatPDF:
		return ".pdf"
	default:
		return ".txt"
	}
}

// Action tags a custody entry with the operation that produced it.
type Action string

const (
	ActionImported  Action = "imported"
	ActionExported  Action = "exported"
	ActionHashed    Action = "hashed"
	ActionPublished Action = "published"
	ActionBackedUp  Action = "backed-up"
	ActionVerified  Action = "verified"
	ActionModified  Action = "modified"
)

// EntryStatus is the verification status carried by a custody entry.
// Tampered is reserved for a future manual-flag feature; nothing assigns it.
type EntryStatus string

const (
	StatusVerified   EntryStatus = "verified"
	StatusUnverified EntryStatus = "unverified"
	StatusTampered   EntryStatus = "tampered"
)

// NotaryService identifies an external notarization target.
type NotaryService string

const (
	ServiceGist          NotaryService = "github-gist"
	ServiceEmail         NotaryService = "email"
	ServiceTimestamps    NotaryService = "open-timestamps"
	ServiceBitcoin       NotaryService = "bitcoin-op-return"
	ServiceCustomWebhook NotaryService = "custom-webhook"
)

// PublicationStatus is the confirmation state of a publication.
type PublicationStatus string

const (
	PublicationPending   PublicationStatus = "pending"
	PublicationConfirmed PublicationStatus = "confirmed"
	PublicationFailed    PublicationStatus = "failed"
)

// LocationType classifies a backup destination.
type LocationType string

const (
	LocationLocal       LocationType = "local"
	LocationICloud      LocationType = "icloud"
	LocationDropbox     LocationType = "dropbox"
	LocationGoogleDrive LocationType = "google-drive"
	LocationExternal    LocationType = "external-drive"
	LocationOptical     LocationType = "optical-disc"
	LocationS3          LocationType = "s3"
)

// Record is a stored transcript plus its metadata.
// CurrentHash is empty only before the first hash computation; after that it
// reflects the hash of the last-saved file content at LocalPath.
type Record struct {
	ID             string // UUID
	Title          string
	Content        string // Raw transcript text
	SourceURL      string
	SourcePlatform string // Free text, e.g. "claude.ai"
	CreatedAt      time.Time
	ImportedAt     time.Time
	CurrentHash    string // SHA-256 hex, empty until computed
	ExportFormat   ExportFormat
	LocalPath      string
	MirrorPath     string
	OfflinePath    string
}

// AuditEntry is one immutable chain-of-custody line for a record.
// Entries are append-only and ordered by timestamp ascending, with
// insertion order breaking ties.
type AuditEntry struct {
	ID        string // UUID
	RecordID  string // Foreign key to Record
	Seq       int64  // Insertion order, assigned by the database
	Timestamp time.Time
	Action    Action
	Details   string
	Hash      string // Hash value associated with the action
	Location  string // Optional storage location
	Status    EntryStatus
}

// Publication is a proof-of-existence submission of a record's hash
// to an external notarization service.
type Publication struct {
	ID            string // UUID
	RecordID      string // Foreign key to Record
	Service       NotaryService
	PublishedAt   time.Time
	PublicURL     string // Set by URL-returning services (gist, webhook)
	TransactionID string // Set by blockchain-style services
	Status        PublicationStatus
	ErrorMessage  string
}

// StorageLocation is a configured backup destination. Locations are shared
// configuration, not owned by any record.
type StorageLocation struct {
	ID         string // UUID
	Name       string
	Type       LocationType
	Path       string // Directory path, or bucket[/prefix] for s3
	Enabled    bool
	Encrypted  bool // Backup copies are age-encrypted when set
	LastSyncAt *time.Time
	SyncStatus string
}
