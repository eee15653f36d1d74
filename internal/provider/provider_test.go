package provider

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// mockSource implements SeriesSource for testing.
type mockSource struct {
	BaseSource
	pingErr error
}

func newMockSource(name string, caps ...Capability) *mockSource {
	return &mockSource{BaseSource: NewBaseSource(name, "Mock "+name, "https://example.com", "https://api.example.com", caps...)}
}

func (m *mockSource) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockSource) GetMetadata(ctx context.Context, code string) (models.Metadata, error) {
	return models.Metadata{"code": code}, nil
}

func (m *mockSource) GetSeries(ctx context.Context, opts SeriesOptions, codes ...models.CodeInput) (*models.Table, error) {
	return models.EmptyTable(models.Collect(codes...).Labels()...), nil
}

// metaOnly implements Source but not SeriesSource.
type metaOnly struct{ BaseSource }

func (m *metaOnly) Ping(ctx context.Context) error { return nil }
func (m *metaOnly) GetMetadata(ctx context.Context, code string) (models.Metadata, error) {
	return nil, models.ErrNoResults
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newMockSource("sgs", CapSeries, CapMetadata)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("sgs")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "sgs" {
		t.Errorf("expected name sgs, got %s", got.Info().Name)
	}
	if !got.Info().Supports(CapSeries) || got.Info().Supports(CapNews) {
		t.Errorf("unexpected capabilities: %v", got.Info().Capabilities)
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	if err := NewRegistry().Register(newMockSource("")); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent source")
	}
	if _, ok := err.(*ErrSourceNotFound); !ok {
		t.Errorf("expected ErrSourceNotFound, got %T", err)
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockSource("sidra", CapSeries))
	_ = reg.Register(newMockSource("ipea", CapSeries))

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(list))
	}
	if list[0].Name != "ipea" || list[1].Name != "sidra" {
		t.Errorf("expected [ipea sidra], got [%s %s]", list[0].Name, list[1].Name)
	}
}

func TestRegistrySourcesFor(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockSource("sgs", CapSeries, CapNews))
	_ = reg.Register(newMockSource("ipea", CapSeries))
	_ = reg.Register(newMockSource("ipea", CapSeries))

	if got := reg.SourcesFor(CapSeries); !reflect.DeepEqual(got, []string{"sgs", "ipea"}) {
		t.Errorf("SourcesFor(series) = %v", got)
	}
	if got := reg.SourcesFor(CapNews); !reflect.DeepEqual(got, []string{"sgs"}) {
		t.Errorf("SourcesFor(news) = %v", got)
	}
	if got := reg.SourcesFor(CapCatalog); len(got) != 0 {
		t.Errorf("SourcesFor(catalog) = %v, want none", got)
	}
}

func TestParseCapability(t *testing.T) {
	for _, c := range Capabilities {
		if got, err := ParseCapability(string(c)); err != nil || got != c {
			t.Errorf("ParseCapability(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCapability("streaming"); err == nil {
		t.Error("expected error for unknown capability")
	}
}

func TestRegistrySeriesCapability(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockSource("sgs", CapSeries))
	_ = reg.Register(&metaOnly{BaseSource: NewBaseSource("meta", "", "", "", CapMetadata)})

	ss, err := reg.Series("sgs")
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := ss.GetSeries(context.Background(), SeriesOptions{}, models.Label("Selic", 11))
	if err != nil || !reflect.DeepEqual(tbl.ColumnNames(), []string{"Selic"}) {
		t.Errorf("GetSeries = %v, %v", tbl, err)
	}

	_, err = reg.Series("meta")
	var ns *ErrNotSupported
	if !errors.As(err, &ns) || ns.Capability != CapSeries {
		t.Errorf("err = %v, want ErrNotSupported", err)
	}
	if _, err := reg.News("meta"); err == nil {
		t.Error("expected ErrNotSupported for news")
	}
	if _, err := reg.Searcher("missing"); err == nil {
		t.Error("expected ErrSourceNotFound")
	}
}

func TestRegistryPingAll(t *testing.T) {
	reg := NewRegistry()
	bad := newMockSource("b")
	bad.pingErr = errors.New("down")
	_ = reg.Register(newMockSource("a"))
	_ = reg.Register(bad)

	results := reg.PingAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if !results[0].OK || results[1].OK || results[1].Error != "down" {
		t.Errorf("results = %+v", results)
	}
}

func TestSeriesOptionsValidate(t *testing.T) {
	if err := (SeriesOptions{LastN: -1}).Validate(); err == nil {
		t.Error("expected error for negative last_n")
	}
	if err := (SeriesOptions{Join: "left"}).Validate(); err == nil {
		t.Error("expected error for unknown join")
	}
	if err := (SeriesOptions{LastN: 5, Join: models.JoinInner}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// --- FetchEach Tests ---

func tableFor(code models.SeriesCode, d time.Time, v float64) *models.Table {
	tbl := models.NewTable([]time.Time{d})
	_ = tbl.AddNumeric(code.Label, []float64{v})
	return tbl
}

func TestFetchEachKeepsCodeOrder(t *testing.T) {
	codes := models.Collect(models.Label("a", 1), models.Label("b", 2), models.Label("c", 3))
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	var running, peak atomic.Int32
	tables, err := FetchEach(context.Background(), codes, 1, func(ctx context.Context, code models.SeriesCode) (*models.Table, error) {
		if n := running.Add(1); n > peak.Load() {
			peak.Store(n)
		}
		defer running.Add(-1)
		return tableFor(code, day, 1), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if tables[i].ColumnNames()[0] != want {
			t.Errorf("table %d = %v, want %s", i, tables[i].ColumnNames(), want)
		}
	}
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
}

func TestFetchEachStopsAfterFailure(t *testing.T) {
	codes := models.Collect(models.Bare(1), models.Bare(2), models.Bare(3))
	var calls atomic.Int32
	_, err := FetchEach(context.Background(), codes, 1, func(ctx context.Context, code models.SeriesCode) (*models.Table, error) {
		calls.Add(1)
		if code.Code == "1" {
			return nil, fmt.Errorf("boom: %w", models.ErrTransport)
		}
		return models.EmptyTable(code.Label), nil
	})
	if !errors.Is(err, models.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestFetchEachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	codes := models.Collect(models.Bare(1))
	_, err := FetchEach(ctx, codes, 1, func(ctx context.Context, code models.SeriesCode) (*models.Table, error) {
		t.Error("fetch should not run after cancellation")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFetchAndJoin(t *testing.T) {
	codes := models.Collect(models.Label("x", 1), models.Label("y", 2))
	d1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)

	tbl, err := FetchAndJoin(context.Background(), codes, SeriesOptions{}, 1, func(ctx context.Context, code models.SeriesCode) (*models.Table, error) {
		if code.Label == "x" {
			return tableFor(code, d1, 1), nil
		}
		return tableFor(code, d2, 2), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 || !reflect.DeepEqual(tbl.ColumnNames(), []string{"x", "y"}) {
		t.Errorf("joined table: %d rows, columns %v", tbl.Len(), tbl.ColumnNames())
	}
}
