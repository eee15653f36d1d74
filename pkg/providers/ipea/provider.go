// Package ipea implements the Ipeadata source, an OData v4 API that serves
// series values, series metadata and the catalogs behind them (themes,
// countries, territories and sources).
//
// No API key required.
// Docs: http://www.ipeadata.gov.br/api/
package ipea

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/internal/provider"
)

const (
	providerName = "ipea"

	// DefaultBaseURL is the OData service root.
	DefaultBaseURL = "http://ipeadata2-homologa.ipea.gov.br/api/v1"
)

// Options are the date-window options of GetSeries.
type Options = provider.SeriesOptions

// Config configures a Provider. Empty fields take defaults.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	RetryWait   time.Duration
	RateLimit   float64 // requests per second; 0 means unlimited
	Concurrency int     // parallel series fetches; 0 means one at a time
	UserAgent   string
	HTTPClient  *http.Client
}

// Provider is the IPEA source.
type Provider struct {
	provider.BaseSource
	cfg    Config
	client *infra.Client
}

var (
	_ provider.SeriesSource = (*Provider)(nil)
	_ provider.TextSearcher = (*Provider)(nil)
)

// New creates an IPEA provider with the default configuration.
func New() *Provider {
	return NewWithConfig(Config{})
}

// NewWithConfig creates an IPEA provider, filling empty fields of cfg with
// defaults.
func NewWithConfig(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Provider{
		BaseSource: provider.NewBaseSource(
			providerName,
			"Ipeadata - Instituto de Pesquisa Econômica Aplicada",
			"http://www.ipeadata.gov.br",
			cfg.BaseURL,
			provider.CapSeries, provider.CapMetadata, provider.CapSearch, provider.CapCatalog,
		),
		cfg: cfg,
		client: infra.NewClient(infra.Options{
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryWait:  cfg.RetryWait,
			RateLimit:  cfg.RateLimit,
			UserAgent:  cfg.UserAgent,
			HTTPClient: cfg.HTTPClient,
		}),
	}
}

// Ping checks connectivity by reading one country from the catalog.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.Get(ctx, p.cfg.BaseURL+"/Paises?$top=1", "application/json"); err != nil {
		return fmt.Errorf("ipea ping: %w", err)
	}
	return nil
}
