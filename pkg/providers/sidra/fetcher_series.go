package sidra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/internal/logger"
	"github.com/phelipetls/seriesbr-sub000/internal/provider"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Keys of the flat view. The first row of a payload maps them to labels.
const (
	keyValue        = "V"
	keyLocation     = "D1C"
	keyPeriod       = "D2C"
	keyVariableName = "D3N"
	keyVariableCode = "D3C"
	maxDimension    = 9
)

// GetSeries fetches every variable of each aggregate for the whole country.
func (p *Provider) GetSeries(ctx context.Context, opts Options, codes ...models.CodeInput) (*models.Table, error) {
	return p.Get(ctx, Request{Options: opts}, codes...)
}

// Get fetches each aggregate narrowed by req. Every aggregate's metadata is
// read first to pick the period format and check the requested locations.
// Results of several aggregates are stacked by date. A labeled aggregate has
// its value column named after the label.
func (p *Provider) Get(ctx context.Context, req Request, codes ...models.CodeInput) (*models.Table, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, fmt.Errorf("sidra: %w", err)
	}
	collected := models.Collect(codes...)
	if len(collected) == 0 {
		return nil, fmt.Errorf("%w: no aggregate given", models.ErrInvalidCode)
	}
	for _, c := range collected {
		if _, err := validateCode(c.Code); err != nil {
			return nil, fmt.Errorf("sidra series %s: %w", c.Code, err)
		}
	}

	ctx = logger.With(ctx, zap.String("source", providerName))
	tables, err := provider.FetchEach(ctx, collected, p.cfg.Concurrency, func(ctx context.Context, code models.SeriesCode) (*models.Table, error) {
		return p.fetchTable(ctx, code, req)
	})
	if err != nil {
		return nil, fmt.Errorf("sidra series %w", err)
	}
	if len(tables) == 1 {
		return tables[0], nil
	}
	return models.Concat(tables...), nil
}

func (p *Provider) fetchTable(ctx context.Context, code models.SeriesCode, req Request) (*models.Table, error) {
	agg, err := p.Aggregate(ctx, code.Code)
	if err != nil {
		return nil, err
	}
	url, err := p.BuildURL(code.Code, agg, req)
	if err != nil {
		return nil, err
	}
	freq, _ := agg.Frequency()

	var rows []map[string]any
	if err := p.client.GetJSON(ctx, url, &rows); err != nil {
		var herr *infra.HTTPError
		if errors.As(err, &herr) && herr.StatusCode == http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w (narrow the request, e.g. fewer periods or locations)", models.ErrOversizedQuery, err)
		}
		return nil, err
	}

	tbl, valueColumn, err := normalize(rows, freq)
	if err != nil {
		return nil, err
	}
	if code.Label != code.Code && valueColumn != "" {
		if err := tbl.RenameColumn(valueColumn, code.Label); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// normalize reshapes the flat view: the first row is the header, the others
// are values. It keeps the value, location code, variable name and code and
// classification names, renamed after the header, and indexes rows by
// period. It also returns the name given to the value column.
func normalize(rows []map[string]any, freq Frequency) (*models.Table, string, error) {
	if len(rows) == 0 {
		return models.NewTable(nil), "", nil
	}
	header, data := rows[0], rows[1:]
	if _, ok := header[keyPeriod]; !ok {
		return nil, "", fmt.Errorf("%w: flat view header has no period column %s", models.ErrInvalidPayload, keyPeriod)
	}

	kept := []string{keyValue, keyLocation, keyVariableName, keyVariableCode}
	for d := 4; d <= maxDimension; d++ {
		kept = append(kept, fmt.Sprintf("D%dN", d))
	}

	tbl := models.NewTable(make([]time.Time, len(data)))
	var columns []string
	for _, key := range kept {
		if _, ok := header[key]; !ok {
			continue
		}
		cells := make([]string, len(data))
		for i, row := range data {
			cells[i] = text(row[key])
		}
		if err := tbl.AddText(key, cells); err != nil {
			return nil, "", err
		}
		columns = append(columns, key)
	}

	periods := make([]string, len(data))
	for i, row := range data {
		periods[i] = text(row[keyPeriod])
	}
	if err := tbl.AddText(keyPeriod, periods); err != nil {
		return nil, "", err
	}
	if err := tbl.SetIndex(keyPeriod, freq.Parse); err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
	}
	if _, ok := tbl.Column(keyValue); ok {
		if err := tbl.ToNumeric(keyValue); err != nil {
			return nil, "", err
		}
	}

	valueColumn := ""
	seen := make(map[string]bool)
	for _, key := range columns {
		name := text(header[key])
		if name == "" || seen[name] {
			name = key
		}
		seen[name] = true
		if err := tbl.RenameColumn(key, name); err != nil {
			return nil, "", err
		}
		if key == keyValue {
			valueColumn = name
		}
	}
	tbl.SortIndex()
	return tbl, valueColumn, nil
}
