package sidra

import (
	"context"
	"fmt"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// ListStates lists the federative units (N3).
func (p *Provider) ListStates(ctx context.Context) (*models.Records, error) {
	return p.listLocalities(ctx, "estados")
}

// ListCities lists the municipalities (N6).
func (p *Provider) ListCities(ctx context.Context) (*models.Records, error) {
	return p.listLocalities(ctx, "municipios")
}

// ListMacroregions lists the five macroregions (N2).
func (p *Provider) ListMacroregions(ctx context.Context) (*models.Records, error) {
	return p.listLocalities(ctx, "regioes")
}

// ListMicroregions lists the microregions (N9).
func (p *Provider) ListMicroregions(ctx context.Context) (*models.Records, error) {
	return p.listLocalities(ctx, "microrregioes")
}

// ListMesoregions lists the mesoregions (N7).
func (p *Provider) ListMesoregions(ctx context.Context) (*models.Records, error) {
	return p.listLocalities(ctx, "mesorregioes")
}

// listLocalities reads a localities collection into {id, sigla, nome}
// records; sigla is only present for states and macroregions.
func (p *Provider) listLocalities(ctx context.Context, kind string) (*models.Records, error) {
	var items []map[string]any
	if err := p.client.GetJSON(ctx, p.cfg.LocalitiesURL+"/"+kind, &items); err != nil {
		return nil, fmt.Errorf("sidra localities %s: %w", kind, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("sidra localities %s: %w", kind, models.ErrNoResults)
	}

	columns := []string{"id", "nome"}
	if _, ok := items[0]["sigla"]; ok {
		columns = []string{"id", "sigla", "nome"}
	}
	out := models.NewRecords(columns...)
	for _, it := range items {
		rec := make(models.Record, len(columns))
		for _, c := range columns {
			rec[c] = text(it[c])
		}
		out.Append(rec)
	}
	return out, nil
}
