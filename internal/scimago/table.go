package scimago

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/instascholar/scholar/internal/outcome"
)

const (
	// TitleColumn holds the journal name.
	TitleColumn = "Title"
	// ISSNColumn is added by AddISSNs.
	ISSNColumn = "ISSN"
)

// Table is a scraped ranking table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of a header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// TitleLookup finds an ISSN for a journal title.
type TitleLookup interface {
	LookupISSN(ctx context.Context, journalTitle string) outcome.Result[string]
}

// AddISSNs appends an ISSN column, looked up per row from the title. Rows
// whose lookup fails or finds nothing get an empty ISSN. It returns the
// number of rows that received one.
func AddISSNs(ctx context.Context, t *Table, lookup TitleLookup, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	titleIdx := t.Column(TitleColumn)
	if titleIdx < 0 {
		return 0, fmt.Errorf("table has no %q column", TitleColumn)
	}

	issnIdx := t.Column(ISSNColumn)
	if issnIdx < 0 {
		t.Headers = append(t.Headers, ISSNColumn)
		issnIdx = len(t.Headers) - 1
	}

	found := 0
	for i, row := range t.Rows {
		for len(row) <= issnIdx {
			row = append(row, "")
		}
		if err := ctx.Err(); err != nil {
			t.Rows[i] = row
			return found, err
		}
		res := lookup.LookupISSN(ctx, row[titleIdx])
		if res.OK() {
			row[issnIdx] = res.Value
			found++
		} else {
			row[issnIdx] = ""
		}
		t.Rows[i] = row
	}
	logger.Info("ISSN lookup finished", "journals", len(t.Rows), "with_issn", found)
	return found, nil
}

// WriteCSV writes the header row followed by all rows.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

// ReadCSV reads a table written by WriteCSV.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}
	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

// Mapping returns ISSN → journal title. Rows without an ISSN are dropped;
// for a repeated ISSN the last row wins.
func Mapping(t *Table) (map[string]string, error) {
	issnIdx, titleIdx := t.Column(ISSNColumn), t.Column(TitleColumn)
	if issnIdx < 0 || titleIdx < 0 {
		return nil, fmt.Errorf("table needs %q and %q columns", ISSNColumn, TitleColumn)
	}
	m := make(map[string]string)
	for _, row := range t.Rows {
		if issnIdx >= len(row) || titleIdx >= len(row) || row[issnIdx] == "" {
			continue
		}
		m[row[issnIdx]] = row[titleIdx]
	}
	return m, nil
}
