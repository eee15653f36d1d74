package ipea

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phelipetls/seriesbr-sub000/internal/logger"
	"github.com/phelipetls/seriesbr-sub000/internal/provider"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// GetSeries fetches every code and joins the series on their dates. Each
// column is named after its label, or after the code when unlabeled. A code
// without values yields an empty column.
func (p *Provider) GetSeries(ctx context.Context, opts Options, codes ...models.CodeInput) (*models.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("ipea: %w", err)
	}
	collected := models.Collect(codes...)
	if len(collected) == 0 {
		return nil, fmt.Errorf("%w: no series codes given", models.ErrInvalidCode)
	}

	urls := make(map[string]string, len(collected))
	for _, c := range collected {
		url, err := seriesURL(p.cfg.BaseURL, c.Code, opts)
		if err != nil {
			return nil, fmt.Errorf("ipea series %s: %w", c.Code, err)
		}
		urls[c.Label] = url
	}

	ctx = logger.With(ctx, zap.String("source", providerName))
	tbl, err := provider.FetchAndJoin(ctx, collected, opts, p.cfg.Concurrency, func(ctx context.Context, code models.SeriesCode) (*models.Table, error) {
		var resp response
		if err := p.client.GetJSON(ctx, urls[code.Label], &resp); err != nil {
			return nil, err
		}
		return normalize(resp.Value, code.Label)
	})
	if err != nil {
		return nil, fmt.Errorf("ipea series %w", err)
	}
	return tbl, nil
}

// normalize turns ValoresSerie entities into a table indexed by VALDATA with
// a single numeric column called label.
func normalize(rows []map[string]any, label string) (*models.Table, error) {
	if len(rows) == 0 {
		return models.EmptyTable(label), nil
	}
	if _, ok := rows[0][fieldDate]; !ok {
		return models.EmptyTable(label), nil
	}

	dates := make([]string, len(rows))
	values := make([]string, len(rows))
	for i, row := range rows {
		dates[i] = text(row[fieldDate])
		values[i] = text(row[fieldValue])
	}

	tbl := models.NewTable(make([]time.Time, len(rows)))
	if err := tbl.AddText(fieldDate, dates); err != nil {
		return nil, err
	}
	if err := tbl.AddText(fieldValue, values); err != nil {
		return nil, err
	}
	if err := tbl.SetIndex(fieldDate, parseDate); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
	}
	if err := tbl.ToNumeric(fieldValue); err != nil {
		return nil, err
	}
	if err := tbl.RenameColumn(fieldValue, label); err != nil {
		return nil, err
	}
	tbl.SortIndex()
	return tbl, nil
}

// parseDate reads VALDATA after dropping its UTC offset, so
// "2020-01-01T00:00:00-03:00" becomes 2020-01-01.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	const layout = "2006-01-02T15:04:05"
	if len(s) > len(layout) {
		s = s[:len(layout)]
	}
	return time.Parse(layout, s)
}
