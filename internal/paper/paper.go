// Package paper defines the core domain types for harvested papers.
package paper

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaperRecord is the unified record stored per DOI.
//
// Optional fields are pointers: nil means the upstream service had no value,
// which is stored as null rather than as an empty string.
type PaperRecord struct {
	// Identity (immutable once the document key is chosen)
	DOI string `json:"doi"`

	// Europe PMC metadata
	Title           *string `json:"title"`
	Author          *string `json:"author"` // Author string as published, e.g. "Smith J, Doe A."
	Abstract        *string `json:"abstract"`
	Affiliation     *string `json:"affiliation"`
	CitationCount   *int    `json:"citation_count"`
	PublicationDate *string `json:"publication_date"` // YYYY-MM-DD

	// Crossref metadata
	Journal    *string  `json:"journal"`
	ISSN       *string  `json:"issn"`
	References []string `json:"references"`

	// Assigned by the store on write
	IngestedAt *time.Time `json:"ingested_at,omitempty"`
}

// JournalInfo is the (ISSN, journal name) pair resolved from a DOI.
type JournalInfo struct {
	ISSN *string `json:"issn"`
	Name *string `json:"journal"`
}

// IsEmpty returns true if neither the ISSN nor the name was resolved.
func (j JournalInfo) IsEmpty() bool {
	return j.ISSN == nil && j.Name == nil
}

// DoiBatch is the ordered list of DOIs published by one journal in a date window.
type DoiBatch struct {
	ISSN      string   `json:"issn"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	DOIs      []string `json:"dois"`
}

// Map returns the batch as an ISSN -> DOIs mapping.
func (b DoiBatch) Map() map[string][]string {
	return map[string][]string{b.ISSN: b.DOIs}
}

// Field names of a stored document.
const (
	FieldDOI        = "doi"
	FieldIngestedAt = "ingested_at"
)

// ToDocument converts a record to a generic document for the store.
// The ingestion timestamp is omitted; the store assigns it.
func ToDocument(rec PaperRecord) (map[string]any, error) {
	if rec.References == nil {
		rec.References = []string{}
	}
	rec.IngestedAt = nil

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record %s: %w", rec.DOI, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", rec.DOI, err)
	}
	delete(doc, FieldIngestedAt)
	return doc, nil
}

// FromDocument converts a stored document back to a record.
func FromDocument(doc map[string]any) (*PaperRecord, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	var rec PaperRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &rec, nil
}

// StringPtr returns a pointer to s, or nil if s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
