package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/instascholar/scholar/internal/europepmc"
	"github.com/instascholar/scholar/internal/outcome"
	"github.com/instascholar/scholar/internal/paper"
)

type fakeAbstracts struct {
	result *europepmc.Result
	err    error
	panics bool
	calls  int
}

func (f *fakeAbstracts) SearchDOI(ctx context.Context, doi string) (*europepmc.Result, error) {
	f.calls++
	if f.panics {
		var m map[string]int
		m["boom"]++ // nil map write
	}
	return f.result, f.err
}

type fakeJournals struct {
	result outcome.Result[paper.JournalInfo]
	calls  int
}

func (f *fakeJournals) ResolveJournal(ctx context.Context, doi string) outcome.Result[paper.JournalInfo] {
	f.calls++
	return f.result
}

type fakeReferences struct {
	result outcome.Result[[]string]
	calls  int
}

func (f *fakeReferences) FetchReferences(ctx context.Context, doi string) outcome.Result[[]string] {
	f.calls++
	return f.result
}

func sampleHit() *europepmc.Result {
	return &europepmc.Result{
		Title:                "Structure of a viral protein.",
		AuthorString:         "Smith J, Doe A.",
		AbstractText:         "We report the structure.",
		CitedByCount:         "42",
		FirstPublicationDate: "2020-01-15",
	}
}

func TestEnrich_MergesAllSources(t *testing.T) {
	abstracts := &fakeAbstracts{result: sampleHit()}
	journals := &fakeJournals{result: outcome.Found(paper.JournalInfo{
		ISSN: paper.StringPtr("0036-8075"),
		Name: paper.StringPtr("Science"),
	})}
	refs := &fakeReferences{result: outcome.Found([]string{"10.1/a", "10.1/b"})}

	e := New(abstracts, journals, refs)
	got := e.Enrich(context.Background(), "10.1126/SCIENCE.abc")
	if !got.OK() {
		t.Fatalf("Enrich() status = %v, err = %v", got.Status, got.Err)
	}

	rec := got.Value
	if rec.DOI != "10.1126/science.abc" {
		t.Errorf("DOI = %q, want normalized", rec.DOI)
	}
	if paper.Deref(rec.Title) != "Structure of a viral protein." {
		t.Errorf("Title = %q", paper.Deref(rec.Title))
	}
	if rec.Affiliation != nil {
		t.Errorf("Affiliation = %q, want absent", *rec.Affiliation)
	}
	if rec.CitationCount == nil || *rec.CitationCount != 42 {
		t.Errorf("CitationCount = %v, want 42", rec.CitationCount)
	}
	if paper.Deref(rec.ISSN) != "0036-8075" || paper.Deref(rec.Journal) != "Science" {
		t.Errorf("journal = %q/%q", paper.Deref(rec.ISSN), paper.Deref(rec.Journal))
	}
	if len(rec.References) != 2 {
		t.Errorf("References = %v", rec.References)
	}
	if journals.calls != 1 || refs.calls != 1 {
		t.Errorf("journal calls = %d, reference calls = %d, want 1 each", journals.calls, refs.calls)
	}
}

func TestEnrich_NoDataIsAbsent(t *testing.T) {
	journals := &fakeJournals{}
	refs := &fakeReferences{}
	e := New(&fakeAbstracts{}, journals, refs)

	got := e.Enrich(context.Background(), "10.1/missing")
	if !got.IsAbsent() {
		t.Fatalf("Enrich() status = %v, want absent", got.Status)
	}
	if got.Value != nil {
		t.Errorf("Enrich() value = %+v, want nil", got.Value)
	}
	if journals.calls != 0 || refs.calls != 0 {
		t.Error("Crossref should not be called when Europe PMC has no record")
	}
}

func TestEnrich_SearchErrorIsFailed(t *testing.T) {
	errDown := errors.New("connection refused")
	e := New(&fakeAbstracts{err: errDown}, &fakeJournals{}, &fakeReferences{})

	got := e.Enrich(context.Background(), "10.1/x")
	if !got.IsFailed() {
		t.Fatalf("Enrich() status = %v, want failed", got.Status)
	}
	if !errors.Is(got.Err, errDown) {
		t.Errorf("Enrich() err = %v, want wrapping %v", got.Err, errDown)
	}
}

func TestEnrich_PanicIsRecovered(t *testing.T) {
	e := New(&fakeAbstracts{panics: true}, &fakeJournals{}, &fakeReferences{})

	got := e.Enrich(context.Background(), "10.1/x")
	if !got.IsFailed() {
		t.Fatalf("Enrich() status = %v, want failed", got.Status)
	}
	if got.Err == nil {
		t.Error("recovered panic should be reported as an error")
	}
}

func TestEnrich_SoftFailuresLeaveFieldsEmpty(t *testing.T) {
	e := New(
		&fakeAbstracts{result: sampleHit()},
		&fakeJournals{result: outcome.Failed(paper.JournalInfo{}, errors.New("timeout"))},
		&fakeReferences{result: outcome.Failed[[]string](nil, errors.New("timeout"))},
	)

	got := e.Enrich(context.Background(), "10.1/x")
	if !got.OK() {
		t.Fatalf("Enrich() status = %v, want found", got.Status)
	}
	if got.Value.ISSN != nil || got.Value.Journal != nil {
		t.Error("journal fields should be absent after a failed lookup")
	}
	if got.Value.References == nil || len(got.Value.References) != 0 {
		t.Errorf("References = %#v, want empty slice", got.Value.References)
	}
}

func TestRecordFromResult_OptionalFields(t *testing.T) {
	rec := RecordFromResult("10.1/x", &europepmc.Result{
		Title:        "  ",
		CitedByCount: "n/a",
	})
	if rec.Title != nil {
		t.Errorf("blank title should be absent, got %q", *rec.Title)
	}
	if rec.CitationCount != nil {
		t.Errorf("non-numeric citation count should be absent, got %d", *rec.CitationCount)
	}
	if rec.Author != nil || rec.Abstract != nil || rec.PublicationDate != nil {
		t.Error("missing fields should be absent")
	}
}
