package custody

import (
	"fmt"
	"strings"
)

// timeLayout is the timestamp format used throughout custody reports.
// External verifiers parse this output, so the field order and layout
// below must stay stable.
const timeLayout = "2006-01-02 15:04:05 MST"

// Report renders the full chain-of-custody report for a record: a header
// block with record metadata, one stanza per custody entry, one stanza per
// publication, and a generation-time footer. The rendering is a pure
// function over the record and its two lists.
func (s *Service) Report(recordID string) (string, error) {
	record, err := s.db.GetRecord(recordID)
	if err != nil {
		return "", err
	}
	entries, err := s.db.ListEntries(recordID)
	if err != nil {
		return "", fmt.Errorf("listing entries: %w", err)
	}
	publications, err := s.db.ListPublications(recordID)
	if err != nil {
		return "", fmt.Errorf("listing publications: %w", err)
	}

	var b strings.Builder

	b.WriteString("CHAIN OF CUSTODY REPORT\n")
	b.WriteString("=======================\n\n")

	fmt.Fprintf(&b, "Record ID:       %s\n", record.ID)
	fmt.Fprintf(&b, "Title:           %s\n", record.Title)
	fmt.Fprintf(&b, "Source platform: %s\n", record.SourcePlatform)
	if record.SourceURL != "" {
		fmt.Fprintf(&b, "Source URL:      %s\n", record.SourceURL)
	}
	fmt.Fprintf(&b, "Created:         %s\n", record.CreatedAt.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "Imported:        %s\n", record.ImportedAt.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "Current hash:    %s\n", record.CurrentHash)
	fmt.Fprintf(&b, "Export format:   %s\n", record.ExportFormat)
	if record.LocalPath != "" {
		fmt.Fprintf(&b, "Local file:      %s\n", record.LocalPath)
	}
	if record.MirrorPath != "" {
		fmt.Fprintf(&b, "Mirror file:     %s\n", record.MirrorPath)
	}

	b.WriteString("\nCUSTODY HISTORY\n")
	b.WriteString("---------------\n")
	if len(entries) == 0 {
		b.WriteString("(no entries)\n")
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, e.Action)
		fmt.Fprintf(&b, "    Timestamp: %s\n", e.Timestamp.UTC().Format(timeLayout))
		fmt.Fprintf(&b, "    Hash:      %s\n", e.Hash)
		fmt.Fprintf(&b, "    Status:    %s\n", e.Status)
		fmt.Fprintf(&b, "    Details:   %s\n", e.Details)
		if e.Location != "" {
			fmt.Fprintf(&b, "    Location:  %s\n", e.Location)
		}
	}

	b.WriteString("\nPUBLICATIONS\n")
	b.WriteString("------------\n")
	if len(publications) == 0 {
		b.WriteString("(no publications)\n")
	}
	for i, p := range publications {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, p.Service)
		fmt.Fprintf(&b, "    Timestamp: %s\n", p.PublishedAt.UTC().Format(timeLayout))
		fmt.Fprintf(&b, "    Status:    %s\n", p.Status)
		if p.PublicURL != "" {
			fmt.Fprintf(&b, "    URL:       %s\n", p.PublicURL)
		}
		if p.TransactionID != "" {
			fmt.Fprintf(&b, "    TxID:      %s\n", p.TransactionID)
		}
		if p.ErrorMessage != "" {
			fmt.Fprintf(&b, "    Error:     %s\n", p.ErrorMessage)
		}
	}

	fmt.Fprintf(&b, "\nReport generated: %s\n", s.clock.Now().UTC().Format(timeLayout))

	return b.String(), nil
}
