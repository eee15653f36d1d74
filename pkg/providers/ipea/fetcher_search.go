package ipea

import (
	"context"
	"fmt"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/odata"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Search queries the series metadata. Columns follow the $select order.
func (p *Provider) Search(ctx context.Context, q Query) (*models.Records, error) {
	url, err := searchURL(p.cfg.BaseURL, q)
	if err != nil {
		return nil, err
	}
	var resp response
	if err := p.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("ipea search: %w", err)
	}
	if len(resp.Value) == 0 {
		return nil, fmt.Errorf("ipea search: %w", models.ErrNoResults)
	}
	return toRecords(resp.Value).Project(q.columns()...), nil
}

// SearchText searches series names for terms.
func (p *Provider) SearchText(ctx context.Context, terms ...string) (*models.Records, error) {
	return p.Search(ctx, Query{Names: terms})
}

// GetMetadata returns the metadata of series code with SERCOMENTARIO as
// plain text.
func (p *Provider) GetMetadata(ctx context.Context, code string) (models.Metadata, error) {
	url, err := metadataURL(p.cfg.BaseURL, code)
	if err != nil {
		return nil, err
	}
	var resp response
	if err := p.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("ipea metadata %s: %w", code, err)
	}
	if len(resp.Value) == 0 {
		return nil, fmt.Errorf("ipea metadata %s: %w", code, models.ErrNoResults)
	}

	meta := make(models.Metadata, len(resp.Value[0]))
	for k, v := range resp.Value[0] {
		if strings.HasPrefix(k, "@odata") {
			continue
		}
		meta[k] = v
	}
	if comment, ok := meta[odata.FieldComment].(string); ok {
		meta[odata.FieldComment] = utils.CleanHTML(comment)
	}
	return meta, nil
}
