package sidra

import (
	"context"
	"fmt"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Aggregate fetches the metadata of table.
func (p *Provider) Aggregate(ctx context.Context, table string) (*Aggregate, error) {
	table, err := validateCode(table)
	if err != nil {
		return nil, err
	}
	var agg Aggregate
	if err := p.client.GetJSON(ctx, fmt.Sprintf("%s/%s/metadados", p.cfg.BaseURL, table), &agg); err != nil {
		return nil, fmt.Errorf("sidra metadata %s: %w", table, err)
	}
	if agg.ID == "" && agg.Name == "" {
		return nil, fmt.Errorf("sidra metadata %s: %w", table, models.ErrNoResults)
	}
	return &agg, nil
}

// GetMetadata returns the description of table as a key→value map.
func (p *Provider) GetMetadata(ctx context.Context, table string) (models.Metadata, error) {
	agg, err := p.Aggregate(ctx, table)
	if err != nil {
		return nil, err
	}
	return agg.Metadata(), nil
}

// ListVariables lists the variables measured by table.
func (p *Provider) ListVariables(ctx context.Context, table string) (*models.Records, error) {
	agg, err := p.Aggregate(ctx, table)
	if err != nil {
		return nil, err
	}
	out := models.NewRecords("id", "nome", "unidade")
	for _, v := range agg.Variables {
		out.Append(models.Record{"id": v.ID.String(), "nome": v.Name, "unidade": v.Unit})
	}
	return out, nil
}

// ListClassifications lists the classifications of table, one row per
// category.
func (p *Provider) ListClassifications(ctx context.Context, table string) (*models.Records, error) {
	agg, err := p.Aggregate(ctx, table)
	if err != nil {
		return nil, err
	}
	out := models.NewRecords("id", "nome", "categoria_id", "categoria", "nivel")
	for _, c := range agg.Classifications {
		for _, cat := range c.Categories {
			out.Append(models.Record{
				"id":           c.ID.String(),
				"nome":         c.Name,
				"categoria_id": cat.ID.String(),
				"categoria":    cat.Name,
				"nivel":        cat.Level,
			})
		}
	}
	return out, nil
}

// ListPeriods returns the frequency and the first and last periods of table.
func (p *Provider) ListPeriods(ctx context.Context, table string) (*models.Records, error) {
	agg, err := p.Aggregate(ctx, table)
	if err != nil {
		return nil, err
	}
	out := models.NewRecords("frequencia", "inicio", "fim")
	out.Append(models.Record{
		"frequencia": agg.Periodicity.Frequency,
		"inicio":     agg.Periodicity.Start.String(),
		"fim":        agg.Periodicity.End.String(),
	})
	return out, nil
}

// ListLocations lists the territorial levels table is published at, with
// the level name used in requests. Levels requests cannot target have an
// empty name.
func (p *Provider) ListLocations(ctx context.Context, table string) (*models.Records, error) {
	agg, err := p.Aggregate(ctx, table)
	if err != nil {
		return nil, err
	}
	out := models.NewRecords("codigo", "nivel")
	for _, code := range agg.Levels.Administrative {
		level, _ := LevelOf(code)
		out.Append(models.Record{"codigo": code, "nivel": string(level)})
	}
	return out, nil
}
