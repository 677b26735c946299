package database

import (
	"errors"
	"testing"
	"time"

	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if _, err := db.db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testRecord(id string) *model.Record {
	return &model.Record{
		ID:             id,
		Title:          "Chat about Go generics",
		Content:        "User: explain type parameters\nAssistant: ...",
		SourceURL:      "https://claude.ai/chat/abc",
		SourcePlatform: "claude.ai",
		CreatedAt:      time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC),
		ImportedAt:     time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		ExportFormat:   model.FormatText,
	}
}

func TestSQLiteDatabase_CreateGetRecord(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		db := newTestDB(t)

		want := testRecord("rec-1")
		if err := db.CreateRecord(want); err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}

		got, err := db.GetRecord("rec-1")
		if err != nil {
			t.Fatalf("GetRecord() error = %v", err)
		}
		if got.Title != want.Title {
			t.Errorf("Title = %q, want %q", got.Title, want.Title)
		}
		if got.Content != want.Content {
			t.Errorf("Content = %q, want %q", got.Content, want.Content)
		}
		if got.SourcePlatform != want.SourcePlatform {
			t.Errorf("SourcePlatform = %q, want %q", got.SourcePlatform, want.SourcePlatform)
		}
		if got.ExportFormat != model.FormatText {
			t.Errorf("ExportFormat = %q, want %q", got.ExportFormat, model.FormatText)
		}
		if !got.ImportedAt.Equal(want.ImportedAt) {
			t.Errorf("ImportedAt = %v, want %v", got.ImportedAt, want.ImportedAt)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		db := newTestDB(t)

		_, err := db.GetRecord("no-such-id")
		if !errors.Is(err, custody.ErrRecordNotFound) {
			t.Errorf("GetRecord() error = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.CreateRecord(testRecord("rec-1")); err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}

		err := db.CreateRecord(testRecord("rec-1"))
		var storageErr *custody.StorageError
		if !errors.As(err, &storageErr) {
			t.Errorf("CreateRecord() duplicate error = %v, want StorageError", err)
		}
	})
}

func TestSQLiteDatabase_ListRecords(t *testing.T) {
	db := newTestDB(t)

	older := testRecord("rec-old")
	older.ImportedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testRecord("rec-new")
	newer.ImportedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, r := range []*model.Record{older, newer} {
		if err := db.CreateRecord(r); err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}
	}

	records, err := db.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListRecords() returned %d records, want 2", len(records))
	}
	// Newest import first
	if records[0].ID != "rec-new" || records[1].ID != "rec-old" {
		t.Errorf("order = [%s, %s], want [rec-new, rec-old]", records[0].ID, records[1].ID)
	}
}

func TestSQLiteDatabase_UpdateRecordHash(t *testing.T) {
	t.Run("updates hash", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.CreateRecord(testRecord("rec-1")); err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}
		if err := db.UpdateRecordHash("rec-1", "abc123"); err != nil {
			t.Fatalf("UpdateRecordHash() error = %v", err)
		}

		got, err := db.GetRecord("rec-1")
		if err != nil {
			t.Fatalf("GetRecord() error = %v", err)
		}
		if got.CurrentHash != "abc123" {
			t.Errorf("CurrentHash = %q, want abc123", got.CurrentHash)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		db := newTestDB(t)

		err := db.UpdateRecordHash("no-such-id", "abc123")
		if !errors.Is(err, custody.ErrRecordNotFound) {
			t.Errorf("UpdateRecordHash() error = %v, want ErrRecordNotFound", err)
		}
	})
}

func TestSQLiteDatabase_UpdateRecordPaths(t *testing.T) {
	db := newTestDB(t)

	if err := db.CreateRecord(testRecord("rec-1")); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	err := db.UpdateRecordPaths("rec-1", model.FormatMarkdown, "/t/a.md", "/m/a.md", "")
	if err != nil {
		t.Fatalf("UpdateRecordPaths() error = %v", err)
	}

	got, err := db.GetRecord("rec-1")
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got.ExportFormat != model.FormatMarkdown {
		t.Errorf("ExportFormat = %q, want markdown", got.ExportFormat)
	}
	if got.LocalPath != "/t/a.md" || got.MirrorPath != "/m/a.md" {
		t.Errorf("paths = (%q, %q), want (/t/a.md, /m/a.md)", got.LocalPath, got.MirrorPath)
	}
}

func TestSQLiteDatabase_AppendListEntries(t *testing.T) {
	t.Run("assigns seq and preserves order", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.CreateRecord(testRecord("rec-1")); err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}

		// Two entries share a timestamp; insertion order must hold.
		ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		entries := []*model.AuditEntry{
			{ID: "e1", RecordID: "rec-1", Timestamp: ts, Action: model.ActionImported, Status: model.StatusUnverified},
			{ID: "e2", RecordID: "rec-1", Timestamp: ts, Action: model.ActionHashed, Status: model.StatusUnverified},
			{ID: "e3", RecordID: "rec-1", Timestamp: ts.Add(time.Hour), Action: model.ActionVerified, Status: model.StatusVerified},
		}
		for _, e := range entries {
			if err := db.AppendEntry(e); err != nil {
				t.Fatalf("AppendEntry(%s) error = %v", e.ID, err)
			}
		}
		if entries[0].Seq == 0 {
			t.Error("AppendEntry() did not assign Seq")
		}
		if entries[1].Seq <= entries[0].Seq {
			t.Errorf("Seq not increasing: %d then %d", entries[0].Seq, entries[1].Seq)
		}

		got, err := db.ListEntries("rec-1")
		if err != nil {
			t.Fatalf("ListEntries() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("ListEntries() returned %d entries, want 3", len(got))
		}
		for i, wantID := range []string{"e1", "e2", "e3"} {
			if got[i].ID != wantID {
				t.Errorf("entries[%d].ID = %s, want %s", i, got[i].ID, wantID)
			}
		}
		if got[2].Action != model.ActionVerified || got[2].Status != model.StatusVerified {
			t.Errorf("entries[2] = (%s, %s), want (verified, verified)", got[2].Action, got[2].Status)
		}
	})

	t.Run("scoped to record", func(t *testing.T) {
		db := newTestDB(t)

		for _, id := range []string{"rec-1", "rec-2"} {
			if err := db.CreateRecord(testRecord(id)); err != nil {
				t.Fatalf("CreateRecord() error = %v", err)
			}
		}
		e := &model.AuditEntry{ID: "e1", RecordID: "rec-1", Timestamp: time.Now().UTC(),
			Action: model.ActionImported, Status: model.StatusUnverified}
		if err := db.AppendEntry(e); err != nil {
			t.Fatalf("AppendEntry() error = %v", err)
		}

		got, err := db.ListEntries("rec-2")
		if err != nil {
			t.Fatalf("ListEntries() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ListEntries(rec-2) returned %d entries, want 0", len(got))
		}
	})

	t.Run("rejects entry for unknown record", func(t *testing.T) {
		db := newTestDB(t)

		e := &model.AuditEntry{ID: "e1", RecordID: "ghost", Timestamp: time.Now().UTC(),
			Action: model.ActionImported, Status: model.StatusUnverified}
		if err := db.AppendEntry(e); err == nil {
			t.Error("AppendEntry() with unknown record succeeded, want foreign key error")
		}
	})
}

func TestSQLiteDatabase_Publications(t *testing.T) {
	db := newTestDB(t)

	if err := db.CreateRecord(testRecord("rec-1")); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	pub := &model.Publication{
		ID:          "pub-1",
		RecordID:    "rec-1",
		Service:     model.ServiceGist,
		PublishedAt: time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC),
		PublicURL:   "https://gist.github.com/u/abc",
		Status:      model.PublicationConfirmed,
	}
	if err := db.CreatePublication(pub); err != nil {
		t.Fatalf("CreatePublication() error = %v", err)
	}

	got, err := db.ListPublications("rec-1")
	if err != nil {
		t.Fatalf("ListPublications() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListPublications() returned %d, want 1", len(got))
	}
	if got[0].Service != model.ServiceGist {
		t.Errorf("Service = %q, want github-gist", got[0].Service)
	}
	if got[0].Status != model.PublicationConfirmed {
		t.Errorf("Status = %q, want confirmed", got[0].Status)
	}
	if got[0].PublicURL != pub.PublicURL {
		t.Errorf("PublicURL = %q, want %q", got[0].PublicURL, pub.PublicURL)
	}
}

func TestSQLiteDatabase_DeleteRecordCascades(t *testing.T) {
	db := newTestDB(t)

	if err := db.CreateRecord(testRecord("rec-1")); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	e := &model.AuditEntry{ID: "e1", RecordID: "rec-1", Timestamp: time.Now().UTC(),
		Action: model.ActionImported, Status: model.StatusUnverified}
	if err := db.AppendEntry(e); err != nil {
		t.Fatalf("AppendEntry() error = %v", err)
	}
	pub := &model.Publication{ID: "pub-1", RecordID: "rec-1", Service: model.ServiceGist,
		PublishedAt: time.Now().UTC(), Status: model.PublicationConfirmed}
	if err := db.CreatePublication(pub); err != nil {
		t.Fatalf("CreatePublication() error = %v", err)
	}

	if err := db.DeleteRecord("rec-1"); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}

	entries, err := db.ListEntries("rec-1")
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries survived delete: %d remain", len(entries))
	}

	pubs, err := db.ListPublications("rec-1")
	if err != nil {
		t.Fatalf("ListPublications() error = %v", err)
	}
	if len(pubs) != 0 {
		t.Errorf("publications survived delete: %d remain", len(pubs))
	}

	if err := db.DeleteRecord("rec-1"); !errors.Is(err, custody.ErrRecordNotFound) {
		t.Errorf("second DeleteRecord() error = %v, want ErrRecordNotFound", err)
	}
}

func TestSQLiteDatabase_StorageLocations(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		db := newTestDB(t)

		locs := []*model.StorageLocation{
			{ID: "loc-b", Name: "beta", Type: model.LocationDropbox, Path: "/dropbox", Enabled: true},
			{ID: "loc-a", Name: "alpha", Type: model.LocationLocal, Path: "/backups", Enabled: true, Encrypted: true},
		}
		for _, l := range locs {
			if err := db.CreateLocation(l); err != nil {
				t.Fatalf("CreateLocation(%s) error = %v", l.Name, err)
			}
		}

		got, err := db.ListLocations()
		if err != nil {
			t.Fatalf("ListLocations() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ListLocations() returned %d, want 2", len(got))
		}
		// Ordered by name
		if got[0].Name != "alpha" || got[1].Name != "beta" {
			t.Errorf("order = [%s, %s], want [alpha, beta]", got[0].Name, got[1].Name)
		}
		if !got[0].Encrypted {
			t.Error("alpha location lost its encrypted flag")
		}
		if got[0].LastSyncAt != nil {
			t.Errorf("LastSyncAt = %v before any sync, want nil", got[0].LastSyncAt)
		}
	})

	t.Run("update sync state", func(t *testing.T) {
		db := newTestDB(t)

		loc := &model.StorageLocation{ID: "loc-1", Name: "main", Type: model.LocationLocal, Path: "/backups", Enabled: true}
		if err := db.CreateLocation(loc); err != nil {
			t.Fatalf("CreateLocation() error = %v", err)
		}

		syncedAt := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
		if err := db.UpdateLocationSync("loc-1", syncedAt, "ok"); err != nil {
			t.Fatalf("UpdateLocationSync() error = %v", err)
		}

		got, err := db.ListLocations()
		if err != nil {
			t.Fatalf("ListLocations() error = %v", err)
		}
		if got[0].SyncStatus != "ok" {
			t.Errorf("SyncStatus = %q, want ok", got[0].SyncStatus)
		}
		if got[0].LastSyncAt == nil || !got[0].LastSyncAt.Equal(syncedAt) {
			t.Errorf("LastSyncAt = %v, want %v", got[0].LastSyncAt, syncedAt)
		}
	})
}

func TestSQLiteDatabase_BackupTo(t *testing.T) {
	dir := t.TempDir()
	db, err := NewSQLiteDatabase(dir + "/custody.db")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	defer db.Close()

	if _, err := db.db.Exec(Schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	if err := db.CreateRecord(testRecord("rec-1")); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	dest := dir + "/backup.db"
	if err := db.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	copyDB, err := NewSQLiteDatabase(dest)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer copyDB.Close()

	got, err := copyDB.GetRecord("rec-1")
	if err != nil {
		t.Fatalf("GetRecord() from backup error = %v", err)
	}
	if got.Title != "Chat about Go generics" {
		t.Errorf("backup record title = %q", got.Title)
	}
}
