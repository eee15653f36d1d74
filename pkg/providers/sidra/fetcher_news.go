package sidra

import (
	"context"
	"fmt"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// News returns the latest IBGE news agency releases, newest first.
func (p *Provider) News(ctx context.Context, limit int) (*models.Records, error) {
	recs, err := p.feeds.Fetch(ctx, p.cfg.FeedURL, limit)
	if err != nil {
		return nil, fmt.Errorf("sidra news: %w", err)
	}
	return recs, nil
}
