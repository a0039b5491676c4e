package scimago

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/instascholar/scholar/internal/outcome"
)

type fakeLookup map[string]string

func (f fakeLookup) LookupISSN(ctx context.Context, title string) outcome.Result[string] {
	if title == "Broken" {
		return outcome.Failed("", errors.New("timeout"))
	}
	issn, ok := f[title]
	if !ok {
		return outcome.Absent[string]("no match")
	}
	return outcome.Found(issn)
}

func sampleTable() *Table {
	return &Table{
		Headers: []string{"Rank", "Title", "Year"},
		Rows: [][]string{
			{"1", "Nature", "2023"},
			{"2", "Unknown Journal", "2023"},
			{"3", "Broken", "2023"},
		},
	}
}

func TestAddISSNs(t *testing.T) {
	table := sampleTable()
	found, err := AddISSNs(context.Background(), table, fakeLookup{"Nature": "0028-0836"}, nil)
	if err != nil {
		t.Fatalf("AddISSNs() error = %v", err)
	}
	if found != 1 {
		t.Errorf("found = %d, want 1", found)
	}
	if table.Headers[3] != ISSNColumn {
		t.Errorf("Headers = %v", table.Headers)
	}
	want := []string{"0028-0836", "", ""}
	for i, row := range table.Rows {
		if row[3] != want[i] {
			t.Errorf("row %d ISSN = %q, want %q", i, row[3], want[i])
		}
	}
}

func TestAddISSNs_RequiresTitle(t *testing.T) {
	table := &Table{Headers: []string{"Rank"}}
	if _, err := AddISSNs(context.Background(), table, fakeLookup{}, nil); err == nil {
		t.Error("AddISSNs() without a Title column should fail")
	}
}

func TestCSVAndMapping(t *testing.T) {
	table := sampleTable()
	if _, err := AddISSNs(context.Background(), table, fakeLookup{"Nature": "0028-0836", "Unknown Journal": "1111-2222"}, nil); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	read, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(read.Rows) != 3 {
		t.Fatalf("rows = %d", len(read.Rows))
	}

	m, err := Mapping(read)
	if err != nil {
		t.Fatalf("Mapping() error = %v", err)
	}
	if len(m) != 2 {
		t.Errorf("mapping = %v, want the two rows with an ISSN", m)
	}
	if m["0028-0836"] != "Nature" {
		t.Errorf("mapping[0028-0836] = %q", m["0028-0836"])
	}
}

func TestMapping_MissingColumns(t *testing.T) {
	if _, err := Mapping(sampleTable()); err == nil {
		t.Error("Mapping() without an ISSN column should fail")
	}
}
