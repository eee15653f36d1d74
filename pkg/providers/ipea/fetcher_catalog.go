package ipea

import (
	"context"
	"fmt"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// ListThemes lists the themes series are filed under (TEMCODIGO).
func (p *Provider) ListThemes(ctx context.Context) (*models.Records, error) {
	return p.listEntity(ctx, "Temas", "TEMCODIGO", "TEMCODIGO_PAI", "TEMNOME")
}

// ListCountries lists the countries series refer to (PAICODIGO).
func (p *Provider) ListCountries(ctx context.Context) (*models.Records, error) {
	return p.listEntity(ctx, "Paises", "PAICODIGO", "PAINOME")
}

// ListTerritories lists the Brazilian territorial units regional series are
// broken down by.
func (p *Provider) ListTerritories(ctx context.Context) (*models.Records, error) {
	return p.listEntity(ctx, "Territorios", "TERCODIGO", "TERNOME", "NIVNOME")
}

// ListSources lists the institutions that publish the series (FNTNOME).
func (p *Provider) ListSources(ctx context.Context) (*models.Records, error) {
	return p.listEntity(ctx, "Fontes", "FNTSIGLA", "FNTNOME", "FNTURL")
}

func (p *Provider) listEntity(ctx context.Context, entity string, columns ...string) (*models.Records, error) {
	var resp response
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/"+entity, &resp); err != nil {
		return nil, fmt.Errorf("ipea %s: %w", entity, err)
	}
	if len(resp.Value) == 0 {
		return nil, fmt.Errorf("ipea %s: %w", entity, models.ErrNoResults)
	}
	return toRecords(resp.Value, columns...), nil
}
