package europepmc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const coreResponse = `<?xml version="1.0" encoding="UTF-8"?>
<responseWrapper xmlns:slx="http://www.scholix.org">
  <version>6.9</version>
  <hitCount>1</hitCount>
  <request><queryString>DOI:"10.1126/science.abc1234"</queryString><resultType>core</resultType></request>
  <resultList>
    <result>
      <id>31999999</id>
      <source>MED</source>
      <doi>10.1126/science.abc1234</doi>
      <title>Structure of a viral protein.</title>
      <authorString>Smith J, Doe A.</authorString>
      <authorList><author><fullName>Smith J</fullName><affiliation>Nested affiliation</affiliation></author></authorList>
      <affiliation>Department of Biology, Example University.</affiliation>
      <abstractText>We report the structure.</abstractText>
      <citedByCount>42</citedByCount>
      <firstPublicationDate>2020-01-15</firstPublicationDate>
    </result>
  </resultList>
</responseWrapper>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func TestSearchDOI(t *testing.T) {
	var gotQuery, gotType, gotFormat string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery, gotType, gotFormat = q.Get("query"), q.Get("resultType"), q.Get("format")
		w.Write([]byte(coreResponse))
	})

	res, err := c.SearchDOI(context.Background(), "10.1126/science.abc1234")
	if err != nil {
		t.Fatalf("SearchDOI() error = %v", err)
	}
	if res == nil {
		t.Fatal("SearchDOI() returned nil result")
	}

	if gotQuery != `DOI:"10.1126/science.abc1234"` {
		t.Errorf("query = %q", gotQuery)
	}
	if gotType != "core" || gotFormat != "xml" {
		t.Errorf("resultType = %q, format = %q", gotType, gotFormat)
	}

	if res.Title != "Structure of a viral protein." {
		t.Errorf("Title = %q", res.Title)
	}
	if res.AuthorString != "Smith J, Doe A." {
		t.Errorf("AuthorString = %q", res.AuthorString)
	}
	if res.Affiliation != "Department of Biology, Example University." {
		t.Errorf("Affiliation = %q, want the direct child element", res.Affiliation)
	}
	if res.CitedByCount != "42" || res.FirstPublicationDate != "2020-01-15" {
		t.Errorf("CitedByCount = %q, FirstPublicationDate = %q", res.CitedByCount, res.FirstPublicationDate)
	}
}

func TestSearchDOI_NoResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<responseWrapper><hitCount>0</hitCount><resultList/></responseWrapper>`))
	})

	res, err := c.SearchDOI(context.Background(), "10.1/missing")
	if err != nil {
		t.Fatalf("SearchDOI() error = %v", err)
	}
	if res != nil {
		t.Errorf("SearchDOI() = %+v, want nil", res)
	}
}

func TestSearchDOI_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: 500, body: "boom", wantErr: ErrAPIError},
		{name: "not xml", status: 200, body: `{"json": true}`, wantErr: ErrInvalidResponse},
		{name: "wrong root", status: 200, body: `<html><body>maintenance</body></html>`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.SearchDOI(context.Background(), "10.1/x")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SearchDOI() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
