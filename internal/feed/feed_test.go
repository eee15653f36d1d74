package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Notas</title>
  <item>
    <title>Copom mantém a taxa Selic</title>
    <link>https://www.bcb.gov.br/a</link>
    <description>&lt;p&gt;Decisão &lt;b&gt;unânime&lt;/b&gt;&lt;/p&gt;</description>
    <pubDate>Wed, 18 Sep 2024 18:30:00 -0300</pubDate>
  </item>
  <item>
    <title>Relatório de Inflação</title>
    <link>https://www.bcb.gov.br/b</link>
    <description>Publicado</description>
    <pubDate>Thu, 26 Sep 2024 08:00:00 -0300</pubDate>
  </item>
  <item>
    <title>Sem data</title>
    <link>https://www.bcb.gov.br/c</link>
  </item>
</channel>
</rss>`

func newTestReader() *Reader {
	return NewReader(infra.NewClient(infra.Options{Timeout: 5 * time.Second, MaxRetries: -1}))
}

func TestItemsNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rss))
	}))
	defer srv.Close()

	items, err := newTestReader().Items(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Title != "Relatório de Inflação" {
		t.Errorf("first item = %q", items[0].Title)
	}
	if items[1].Summary != "Decisão unânime" {
		t.Errorf("summary = %q", items[1].Summary)
	}
	if !items[2].Published.IsZero() {
		t.Errorf("undated item should sort last, got %v", items[2].Published)
	}
}

func TestFetchLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rss))
	}))
	defer srv.Close()

	recs, err := newTestReader().Fetch(context.Background(), srv.URL, 1)
	if err != nil {
		t.Fatal(err)
	}
	if recs.Len() != 1 {
		t.Fatalf("got %d rows, want 1", recs.Len())
	}
	if got := recs.Rows[0].String("link"); got != "https://www.bcb.gov.br/b" {
		t.Errorf("link = %q", got)
	}
	if got := recs.Rows[0].String("published"); got != "2024-09-26T11:00:00Z" {
		t.Errorf("published = %q", got)
	}
}

func TestFetchInvalidFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("service unavailable"))
	}))
	defer srv.Close()

	_, err := newTestReader().Fetch(context.Background(), srv.URL, 0)
	if !errors.Is(err, models.ErrInvalidPayload) {
		t.Errorf("err = %v, want ErrInvalidPayload", err)
	}
}
