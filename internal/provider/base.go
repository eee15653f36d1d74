package provider

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/phelipetls/seriesbr-sub000/internal/logger"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// BaseSource provides common functionality for source implementations.
// Embed this in concrete sources to simplify implementation.
type BaseSource struct {
	info SourceInfo
}

// NewBaseSource creates a base source.
func NewBaseSource(name, description, website, baseURL string, caps ...Capability) BaseSource {
	return BaseSource{
		info: SourceInfo{
			Name:         name,
			Description:  description,
			Website:      website,
			BaseURL:      baseURL,
			Capabilities: caps,
		},
	}
}

func (b *BaseSource) Info() SourceInfo { return b.info }

// FetchFunc fetches the table of a single series.
type FetchFunc func(ctx context.Context, code models.SeriesCode) (*models.Table, error)

// FetchEach runs fetch for every code and returns the tables in code order.
// At most limit fetches run at once; a limit below 1 means one at a time.
// The first failure cancels the fetches that have not started yet.
func FetchEach(ctx context.Context, codes models.Codes, limit int, fetch FetchFunc) ([]*models.Table, error) {
	if limit < 1 {
		limit = 1
	}
	tables := make([]*models.Table, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, code := range codes {
		// Stop scheduling once a fetch failed or the caller gave up.
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tbl, err := fetch(gctx, code)
			if err != nil {
				return fmt.Errorf("%s: %w", code.Code, err)
			}
			logger.Debugf(gctx, "fetched %s as %q: %d rows", code.Code, code.Label, tbl.Len())
			tables[i] = tbl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// FetchAndJoin fetches every code with FetchEach and joins the tables along
// the column axis using opts.Join.
func FetchAndJoin(ctx context.Context, codes models.Codes, opts SeriesOptions, limit int, fetch FetchFunc) (*models.Table, error) {
	how, err := models.ParseJoinKind(string(opts.Join))
	if err != nil {
		return nil, err
	}
	tables, err := FetchEach(ctx, codes, limit, fetch)
	if err != nil {
		return nil, err
	}
	return models.Join(how, tables...), nil
}
