package custody

import (
	"bytes"
	"fmt"
	"path/filepath"

	"custody-go/internal/model"
)

// Backup copies the record's transcript file to every enabled storage
// location. Locations marked encrypted receive an age-encrypted copy with
// an ".age" suffix. One "backed-up" entry is appended per completed copy.
// Returns the number of copies written.
//
// There is no partial-success reconciliation: the first failing location
// aborts the run after its sync status is recorded.
func (s *Service) Backup(recordID string) (int, error) {
	record, err := s.db.GetRecord(recordID)
	if err != nil {
		return 0, err
	}
	if record.LocalPath == "" {
		return 0, fmt.Errorf("record %s has no saved transcript file", recordID)
	}

	locations, err := s.db.ListLocations()
	if err != nil {
		return 0, fmt.Errorf("listing storage locations: %w", err)
	}

	count := 0
	for _, loc := range locations {
		if !loc.Enabled {
			continue
		}
		if err := s.backupTo(record, loc); err != nil {
			if syncErr := s.db.UpdateLocationSync(loc.ID, s.clock.Now(), "error"); syncErr != nil {
				s.logger.Error("recording sync failure", "location", loc.Name, "error", syncErr)
			}
			return count, fmt.Errorf("backing up to %s: %w", loc.Name, err)
		}

		if err := s.db.UpdateLocationSync(loc.ID, s.clock.Now(), "ok"); err != nil {
			return count, fmt.Errorf("recording sync state: %w", err)
		}

		details := fmt.Sprintf("copy written to %s location %q", loc.Type, loc.Name)
		if err := s.appendEntry(record.ID, model.ActionBackedUp, details, record.CurrentHash, loc.Path, model.StatusUnverified); err != nil {
			return count, err
		}
		count++
	}

	s.logger.Info("backup complete", "record", record.ID, "copies", count)
	return count, nil
}

// backupTo writes one copy of the transcript file to a single location.
func (s *Service) backupTo(record *model.Record, loc *model.StorageLocation) error {
	archive, err := s.archives.For(loc)
	if err != nil {
		return err
	}

	f, err := s.files.Open(record.LocalPath)
	if err != nil {
		return &IOError{Op: "opening transcript for backup", Path: record.LocalPath, Err: err}
	}
	defer f.Close()

	name := filepath.Base(record.LocalPath)

	if loc.Encrypted {
		if s.enc == nil || !s.enc.IsConfigured() {
			return fmt.Errorf("location %q requires encryption but no key pair is configured", loc.Name)
		}
		var sealed bytes.Buffer
		if err := s.enc.Encrypt(f, &sealed); err != nil {
			return fmt.Errorf("encrypting backup copy: %w", err)
		}
		return archive.Put(name+".age", &sealed, int64(sealed.Len()))
	}

	// Archives verify the byte count, so the on-disk size is read fresh.
	size, err := s.files.Stat(record.LocalPath)
	if err != nil {
		return &IOError{Op: "stat transcript for backup", Path: record.LocalPath, Err: err}
	}
	return archive.Put(name, f, size)
}
