package ipea

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/phelipetls/seriesbr-sub000/internal/provider"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/odata"
)

func newTestProvider(srv *httptest.Server) *Provider {
	return NewWithConfig(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second, MaxRetries: -1})
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProviderInfo(t *testing.T) {
	info := New().Info()
	if info.Name != "ipea" {
		t.Errorf("expected name ipea, got %s", info.Name)
	}
	if !info.Supports(provider.CapCatalog) || info.Supports(provider.CapNews) {
		t.Errorf("unexpected capabilities %v", info.Capabilities)
	}
}

func TestBuildSeriesURL(t *testing.T) {
	const base = "http://ipeadata2-homologa.ipea.gov.br/api/v1/ValoresSerie(SERCODIGO='BM12_TJOVER12')?$select=VALDATA,VALVALOR"
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"no bounds", Options{}, base},
		{"start only", Options{Start: "2018"}, base + "&$filter=VALDATA ge 2018-01-01T00:00:00Z"},
		{"end only", Options{End: "02/2019"}, base + "&$filter=VALDATA le 2019-02-28T00:00:00Z"},
		{"both", Options{Start: "2018", End: "2018"}, base + "&$filter=VALDATA ge 2018-01-01T00:00:00Z and VALDATA le 2018-12-31T00:00:00Z"},
		{"last n", Options{Start: "2018", LastN: 12}, base + "&$orderby=VALDATA desc&$top=12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSeriesURL("BM12_TJOVER12", tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("BuildSeriesURL() = %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestBuildURLErrors(t *testing.T) {
	for _, code := range []string{"", "BM12 TJOVER12", "x'y"} {
		if _, err := BuildSeriesURL(code, Options{}); !errors.Is(err, models.ErrInvalidCode) {
			t.Errorf("BuildSeriesURL(%q) err = %v, want ErrInvalidCode", code, err)
		}
	}
	if _, err := BuildSeriesURL("PRECOS12_IPCA12", Options{End: "someday"}); !errors.Is(err, models.ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
	if _, err := BuildSearchURL(Query{Terms: []odata.Term{odata.Where("FOO", "x")}}); !errors.Is(err, models.ErrUnknownMetadataField) {
		t.Errorf("err = %v, want ErrUnknownMetadataField", err)
	}
	if _, err := BuildSearchURL(Query{Fields: []string{"BAR"}}); !errors.Is(err, models.ErrUnknownMetadataField) {
		t.Errorf("err = %v, want ErrUnknownMetadataField", err)
	}
}

func TestBuildMetadataURL(t *testing.T) {
	got, err := BuildMetadataURL("PRECOS12_IPCA12")
	if err != nil {
		t.Fatal(err)
	}
	if want := "http://ipeadata2-homologa.ipea.gov.br/api/v1/Metadados('PRECOS12_IPCA12')"; got != want {
		t.Errorf("BuildMetadataURL() = %s, want %s", got, want)
	}
}

func TestBuildSearchURL(t *testing.T) {
	q := Query{
		Names: []string{"SELIC"},
		Terms: []odata.Term{
			odata.Where("PERNOME", "mensal", "trimestral"),
			odata.Where("FNTNOME", "IBGE"),
		},
	}
	got, err := BuildSearchURL(q)
	if err != nil {
		t.Fatal(err)
	}
	want := "http://ipeadata2-homologa.ipea.gov.br/api/v1/Metadados" +
		"?$select=SERCODIGO,SERNOME,PERNOME,UNINOME,FNTNOME" +
		"&$filter=contains(SERNOME,'SELIC') and (contains(PERNOME,'mensal') or contains(PERNOME,'trimestral')) and contains(FNTNOME,'IBGE')"
	if got != want {
		t.Errorf("BuildSearchURL() =\n%s\nwant\n%s", got, want)
	}

	plain, err := BuildSearchURL(Query{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "http://ipeadata2-homologa.ipea.gov.br/api/v1/Metadados?$select=SERCODIGO,SERNOME,PERNOME,UNINOME"; plain != want {
		t.Errorf("BuildSearchURL(empty) = %s", plain)
	}
}

func TestGetSeries(t *testing.T) {
	var gotPath, gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("$filter")
		w.Write([]byte(`{
			"@odata.context": "http://ipeadata2-homologa.ipea.gov.br/api/v1/$metadata#Valores",
			"value": [
				{"SERCODIGO": "BM12_TJOVER12", "VALDATA": "2020-02-01T00:00:00-03:00", "VALVALOR": 4.15},
				{"SERCODIGO": "BM12_TJOVER12", "VALDATA": "2020-01-01T00:00:00-02:00", "VALVALOR": 4.4},
				{"SERCODIGO": "BM12_TJOVER12", "VALDATA": "2020-03-01T00:00:00-03:00", "VALVALOR": null}
			]
		}`))
	}))
	defer srv.Close()

	tbl, err := newTestProvider(srv).GetSeries(context.Background(), Options{Start: "2020"}, models.Label("Selic", "BM12_TJOVER12"))
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/ValoresSerie(SERCODIGO='BM12_TJOVER12')" {
		t.Errorf("path = %q", gotPath)
	}
	if gotFilter != "VALDATA ge 2020-01-01T00:00:00Z" {
		t.Errorf("filter = %q", gotFilter)
	}
	if !reflect.DeepEqual(tbl.ColumnNames(), []string{"Selic"}) {
		t.Fatalf("columns = %v", tbl.ColumnNames())
	}
	wantIndex := []time.Time{day(2020, 1, 1), day(2020, 2, 1), day(2020, 3, 1)}
	if !reflect.DeepEqual(tbl.Index, wantIndex) {
		t.Errorf("index = %v", tbl.Index)
	}
	col, _ := tbl.Column("Selic")
	if col.Values[0] != 4.4 || col.Values[1] != 4.15 || !math.IsNaN(col.Values[2]) {
		t.Errorf("values = %v", col.Values)
	}
}

func TestGetSeriesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": []}`))
	}))
	defer srv.Close()

	tbl, err := newTestProvider(srv).GetSeries(context.Background(), Options{}, models.Bare("NOPE"), models.Bare("ALSO_NOPE"))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 0 || !reflect.DeepEqual(tbl.ColumnNames(), []string{"NOPE", "ALSO_NOPE"}) {
		t.Errorf("got %d rows, columns %v", tbl.Len(), tbl.ColumnNames())
	}
}

func TestSearch(t *testing.T) {
	var gotSelect string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Metadados" {
			http.NotFound(w, r)
			return
		}
		gotSelect = r.URL.Query().Get("$select")
		w.Write([]byte(`{"value": [
			{"SERCODIGO": "BM12_TJOVER12", "SERNOME": "Taxa de juros - Over / Selic", "PERNOME": "Mensal", "UNINOME": "(% a.m.)", "FNTNOME": "Banco Central"}
		]}`))
	}))
	defer srv.Close()

	recs, err := newTestProvider(srv).Search(context.Background(), Query{
		Names: []string{"selic"},
		Terms: []odata.Term{odata.Where("fntnome", "Banco Central")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotSelect != "SERCODIGO,SERNOME,PERNOME,UNINOME,FNTNOME" {
		t.Errorf("$select = %q", gotSelect)
	}
	if !reflect.DeepEqual(recs.Columns, []string{"SERCODIGO", "SERNOME", "PERNOME", "UNINOME", "FNTNOME"}) {
		t.Errorf("columns = %v", recs.Columns)
	}
	if recs.Len() != 1 || recs.Rows[0].String("SERCODIGO") != "BM12_TJOVER12" {
		t.Errorf("rows = %+v", recs.Rows)
	}
}

func TestSearchEscapesFilterValues(t *testing.T) {
	var gotFilter []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query()["$filter"]
		w.Write([]byte(`{"value": [{"SERCODIGO": "X", "SERNOME": "Receitas & despesas"}]}`))
	}))
	defer srv.Close()

	names := []string{"Receitas & despesas", "C#", "100%", "a+b"}
	if _, err := newTestProvider(srv).Search(context.Background(), Query{Names: names}); err != nil {
		t.Fatal(err)
	}
	want, err := odata.BuildFilter(names)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotFilter) != 1 || gotFilter[0] != want {
		t.Errorf("$filter = %q, want %q", gotFilter, want)
	}
	for _, name := range names {
		if !strings.Contains(want, "contains(SERNOME,'"+name+"')") {
			t.Errorf("filter %q has no clause for %q", want, name)
		}
	}
}

func TestSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": []}`))
	}))
	defer srv.Close()

	if _, err := newTestProvider(srv).SearchText(context.Background(), "nada"); !errors.Is(err, models.ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestGetMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Metadados('PRECOS12_IPCA12')":
			w.Write([]byte(`{"@odata.context": "x", "value": [{
				"SERCODIGO": "PRECOS12_IPCA12",
				"SERNOME": "IPCA - geral - índice (dez. 1993 = 100)",
				"SERCOMENTARIO": "<p>O Índice de Preços ao Consumidor Amplo<br>mede a inflação.</p>",
				"SERSTATUS": "A"
			}]}`))
		default:
			w.Write([]byte(`{"value": []}`))
		}
	}))
	defer srv.Close()

	p := newTestProvider(srv)
	meta, err := p.GetMetadata(context.Background(), "PRECOS12_IPCA12")
	if err != nil {
		t.Fatal(err)
	}
	if got := meta.String("SERCOMENTARIO"); got != "O Índice de Preços ao Consumidor Amplo mede a inflação." {
		t.Errorf("SERCOMENTARIO = %q", got)
	}
	if meta.String("SERSTATUS") != "A" {
		t.Errorf("SERSTATUS = %q", meta.String("SERSTATUS"))
	}
	if _, ok := meta["@odata.context"]; ok {
		t.Error("annotations should be dropped")
	}

	if _, err := p.GetMetadata(context.Background(), "MISSING"); !errors.Is(err, models.ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestCatalogListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Temas":
			w.Write([]byte(`{"value": [{"TEMNOME": "Juros", "TEMCODIGO": 8, "TEMCODIGO_PAI": null, "EXTRA": "x"}]}`))
		case "/Paises":
			w.Write([]byte(`{"value": [{"PAINOME": "Brasil", "PAICODIGO": "BRA"}]}`))
		case "/Territorios":
			w.Write([]byte(`{"value": [{"TERNOME": "Acre", "TERCODIGO": "12", "NIVNOME": "Estados"}]}`))
		case "/Fontes":
			w.Write([]byte(`{"value": []}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := newTestProvider(srv)
	ctx := context.Background()

	themes, err := p.ListThemes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(themes.Columns, []string{"TEMCODIGO", "TEMCODIGO_PAI", "TEMNOME", "EXTRA"}) {
		t.Errorf("theme columns = %v", themes.Columns)
	}
	if themes.Rows[0].String("TEMCODIGO") != "8" {
		t.Errorf("TEMCODIGO = %q", themes.Rows[0].String("TEMCODIGO"))
	}

	countries, err := p.ListCountries(ctx)
	if err != nil || !reflect.DeepEqual(countries.Strings(0), []string{"BRA", "Brasil"}) {
		t.Errorf("countries = %v, %v", countries, err)
	}
	territories, err := p.ListTerritories(ctx)
	if err != nil || !reflect.DeepEqual(territories.Strings(0), []string{"12", "Acre", "Estados"}) {
		t.Errorf("territories = %v, %v", territories, err)
	}
	if _, err := p.ListSources(ctx); !errors.Is(err, models.ErrNoResults) {
		t.Errorf("sources err = %v, want ErrNoResults", err)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Paises" || r.URL.Query().Get("$top") != "1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"value": [{"PAICODIGO": "BRA"}]}`))
	}))
	defer srv.Close()

	if err := newTestProvider(srv).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
