// Package search maintains a Bleve full-text index over stored
// transcripts so records can be found by content, not just title.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	_ "github.com/blevesearch/bleve/v2/search/highlight/highlighter/ansi"

	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// Index wraps a Bleve search index over transcript records.
type Index struct {
	index bleve.Index
}

var _ custody.Indexer = (*Index)(nil)

// indexedRecord is the document shape stored in the index.
type indexedRecord struct {
	ID         string
	Title      string
	Content    string
	Platform   string
	ImportedAt string
}

// Result is a single search hit.
type Result struct {
	ID        string
	Title     string
	Platform  string
	Score     float64
	Fragments map[string][]string // highlighted snippets keyed by field
}

// Open opens the index at path, creating it if it does not exist.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx}, nil
}

// OpenInMemory creates a throwaway index for tests.
func OpenInMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("ID", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Content", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Platform", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Close closes the underlying index.
func (i *Index) Close() error {
	return i.index.Close()
}

// Index adds or updates a record in the index.
func (i *Index) Index(record *model.Record) error {
	return i.index.Index(record.ID, toIndexed(record))
}

// Delete removes a record from the index.
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

// Search runs a query string (quotes, boolean operators, and fuzzy ~
// are supported) and returns up to limit hits with highlights.
func (i *Index) Search(queryStr string, limit int) ([]*Result, error) {
	query := bleve.NewQueryStringQuery(queryStr)

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("ansi")
	req.Fields = []string{"Title", "Platform"}

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []*Result
	for _, hit := range results.Hits {
		r := &Result{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if platform, ok := hit.Fields["Platform"].(string); ok {
			r.Platform = platform
		}
		hits = append(hits, r)
	}

	return hits, nil
}

// Reindex replaces the index contents for the given records in one batch.
func (i *Index) Reindex(records []*model.Record) error {
	batch := i.index.NewBatch()
	for _, record := range records {
		if err := batch.Index(record.ID, toIndexed(record)); err != nil {
			return fmt.Errorf("batch index %s: %w", record.ID, err)
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	return nil
}

// Count returns the number of records in the index.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

func toIndexed(record *model.Record) *indexedRecord {
	return &indexedRecord{
		ID:         record.ID,
		Title:      record.Title,
		Content:    record.Content,
		Platform:   record.SourcePlatform,
		ImportedAt: record.ImportedAt.Format("2006-01-02"),
	}
}
