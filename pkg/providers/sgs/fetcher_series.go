package sgs

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

const (
	colDate  = "data"
	colValue = "valor"
)

// GetSeries fetches every code and joins the series on their dates. Each
// column is named after its label, or after the code when unlabeled.
func (p *Provider) GetSeries(ctx context.Context, opts Options, codes ...models.CodeInput) (*models.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("sgs: %w", err)
	}
	collected := models.Collect(codes...)
	if len(collected) == 0 {
		return nil, fmt.Errorf("%w: no series codes given", models.ErrInvalidCode)
	}

	// Build every URL before the first request so bad input fails fast.
	urls := make(map[string]string, len(collected))
	for _, c := range collected {
		url, err := p.BuildURL(c.Code, opts)
		if err != nil {
			return nil, fmt.Errorf("sgs series %s: %w", c.Code, err)
		}
		urls[c.Label] = url
	}

	ctx = logger.With(ctx, zap.String("source", providerName))
	tbl, err := provider.FetchAndJoin(ctx, collected, opts, p.cfg.Concurrency, func(ctx context.Context, code models.SeriesCode) (*models.Table, error) {
		return p.fetchSeries(ctx, urls[code.Label], code.Label)
	})
	if err != nil {
		return nil, fmt.Errorf("sgs series %w", err)
	}
	return tbl, nil
}

func (p *Provider) fetchSeries(ctx context.Context, url, label string) (*models.Table, error) {
	var obs []observation
	if err := p.client.GetJSON(ctx, url, &obs); err != nil {
		return nil, err
	}
	return normalize(obs, label)
}

// normalize turns the {data, valor} records into a table indexed by date
// with a single numeric column called label.
func normalize(obs []observation, label string) (*models.Table, error) {
	dates := make([]string, len(obs))
	values := make([]string, len(obs))
	for i, o := range obs {
		dates[i] = o.Data
		values[i] = text(o.Valor)
	}

	tbl := models.NewTable(make([]time.Time, len(obs)))
	if err := tbl.AddText(colDate, dates); err != nil {
		return nil, err
	}
	if err := tbl.AddText(colValue, values); err != nil {
		return nil, err
	}
	if err := tbl.SetIndex(colDate, parseDate); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
	}
	if err := tbl.ToNumeric(colValue); err != nil {
		return nil, err
	}
	if err := tbl.RenameColumn(colValue, label); err != nil {
		return nil, err
	}
	tbl.SortIndex()
	return tbl, nil
}

// parseDate reads the day-first dates of the series payload.
func parseDate(s string) (time.Time, error) {
	return time.Parse("02/01/2006", strings.TrimSpace(s))
}
