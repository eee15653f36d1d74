package sidra

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Search fields.
const (
	WhereName   = "nome"
	WhereSurvey = "pesquisa"
)

// CatalogColumns are the columns of ListAggregates and Search results.
var CatalogColumns = []string{"pesquisa_id", "pesquisa", "agregado_id", "agregado"}

// ListAggregates lists every aggregate with the survey it belongs to.
func (p *Provider) ListAggregates(ctx context.Context) (*models.Records, error) {
	var surveys []survey
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL, &surveys); err != nil {
		return nil, fmt.Errorf("sidra catalog: %w", err)
	}
	out := models.NewRecords(CatalogColumns...)
	for _, s := range surveys {
		for _, a := range s.Aggregates {
			out.Append(models.Record{
				"pesquisa_id": string(s.ID),
				"pesquisa":    s.Name,
				"agregado_id": string(a.ID),
				"agregado":    a.Name,
			})
		}
	}
	return out, nil
}

// Search lists the aggregates whose name (where = "nome") or survey name
// (where = "pesquisa") contains every term, ignoring case.
func (p *Provider) Search(ctx context.Context, where string, terms ...string) (*models.Records, error) {
	var column string
	switch strings.ToLower(strings.TrimSpace(where)) {
	case "", WhereName:
		column = "agregado"
	case WhereSurvey:
		column = "pesquisa"
	default:
		return nil, fmt.Errorf("sidra search: where must be %q or %q, got %q", WhereName, WhereSurvey, where)
	}

	catalog, err := p.ListAggregates(ctx)
	if err != nil {
		return nil, err
	}
	out := models.NewRecords(CatalogColumns...)
	for _, row := range catalog.Rows {
		if containsAll(row.String(column), terms) {
			out.Append(row)
		}
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("sidra search %q: %w", strings.Join(terms, " "), models.ErrNoResults)
	}
	return out, nil
}

// SearchText searches aggregate names for terms.
func (p *Provider) SearchText(ctx context.Context, terms ...string) (*models.Records, error) {
	return p.Search(ctx, WhereName, terms...)
}

func containsAll(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if !strings.Contains(s, strings.ToLower(strings.TrimSpace(t))) {
			return false
		}
	}
	return true
}

// Latest returns the most recent value of every variable of table for the
// whole country.
func (p *Provider) Latest(ctx context.Context, table string) (*models.Records, error) {
	table, err := validateCode(table)
	if err != nil {
		return nil, err
	}
	var vars []latestVariable
	url := fmt.Sprintf("%s/%s/variaveis/all?localidades=BR", p.cfg.BaseURL, table)
	if err := p.client.GetJSON(ctx, url, &vars); err != nil {
		return nil, fmt.Errorf("sidra latest %s: %w", table, err)
	}

	out := models.NewRecords("variavel_id", "variavel", "unidade", "localidade", "periodo", "valor")
	for _, v := range vars {
		for _, r := range v.Results {
			for _, s := range r.Series {
				periods := make([]string, 0, len(s.Values))
				for period := range s.Values {
					periods = append(periods, period)
				}
				sort.Strings(periods)
				for _, period := range periods {
					out.Append(models.Record{
						"variavel_id": string(v.ID),
						"variavel":    v.Name,
						"unidade":     v.Unit,
						"localidade":  s.Location.Name,
						"periodo":     period,
						"valor":       s.Values[period],
					})
				}
			}
		}
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("sidra latest %s: %w", table, models.ErrNoResults)
	}
	return out, nil
}
