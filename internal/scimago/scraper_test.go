package scimago

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func rankingPage(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString("<html><body><table><tr><th>Rank</th><th>Title</th></tr>")
	for _, r := range rows {
		fmt.Fprintf(&b, "<tr><td> %s </td><td>%s</td></tr>", r[0], r[1])
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func newTestScraper(t *testing.T, pages map[string]string) (*Scraper, *[]string) {
	t.Helper()
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/journalrank.php" {
			http.NotFound(w, r)
			return
		}
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		if r.URL.Query().Get("total_size") != "50" {
			t.Errorf("total_size = %q", r.URL.Query().Get("total_size"))
		}
		body, ok := pages[page]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewScraper(WithBaseURL(srv.URL), WithPageDelay(0)), &requested
}

func TestScrape_CollectsPagesUntilEmpty(t *testing.T) {
	s, requested := newTestScraper(t, map[string]string{
		"1": rankingPage([2]string{"1", "Nature"}, [2]string{"2", "Science"}),
		"2": rankingPage([2]string{"3", "Cell"}),
		"3": rankingPage(),
	})

	table, err := s.Scrape(context.Background(), 2023, 100)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if got := strings.Join(table.Headers, ","); got != "Rank,Title,Year" {
		t.Errorf("Headers = %s", got)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}
	if table.Rows[0][0] != "1" || table.Rows[2][1] != "Cell" || table.Rows[2][2] != "2023" {
		t.Errorf("rows = %v", table.Rows)
	}
	if len(*requested) != 3 {
		t.Errorf("requested pages %v", *requested)
	}
}

func TestScrape_StopsAtMax(t *testing.T) {
	s, requested := newTestScraper(t, map[string]string{
		"1": rankingPage([2]string{"1", "A"}, [2]string{"2", "B"}),
		"2": rankingPage([2]string{"3", "C"}, [2]string{"4", "D"}),
	})

	table, err := s.Scrape(context.Background(), 2023, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(table.Rows))
	}
	if len(*requested) != 2 {
		t.Errorf("requested pages %v, want 2", *requested)
	}
}

func TestScrape_KeepsRowsBeforeError(t *testing.T) {
	s, _ := newTestScraper(t, map[string]string{
		"1": rankingPage([2]string{"1", "A"}),
	})

	table, err := s.Scrape(context.Background(), 2023, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(table.Rows))
	}
}

func TestScrape_NoTable(t *testing.T) {
	s, _ := newTestScraper(t, map[string]string{
		"1": "<html><body><p>maintenance</p></body></html>",
	})

	_, err := s.Scrape(context.Background(), 2023, 10)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Scrape() error = %v, want ErrNoData", err)
	}
}

func TestScrape_DropsRaggedRows(t *testing.T) {
	s, _ := newTestScraper(t, map[string]string{
		"1": "<table><tr><th>Rank</th><th>Title</th></tr>" +
			"<tr><td>1</td><td>A</td></tr>" +
			"<tr><td>2</td></tr></table>",
		"2": rankingPage(),
	})

	table, err := s.Scrape(context.Background(), 2023, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "A" {
		t.Errorf("rows = %v", table.Rows)
	}
}
