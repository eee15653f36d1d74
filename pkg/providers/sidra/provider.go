// Package sidra implements the IBGE aggregates source (SIDRA). Each
// aggregate is a table with its own frequency, variables, classifications
// and territorial levels; requests are checked against that metadata before
// values are fetched.
//
// No API key required.
// Docs: https://servicodados.ibge.gov.br/api/docs/agregados?versao=3
package sidra

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phelipetls/seriesbr-sub000/internal/feed"
	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/internal/provider"
)

const (
	providerName = "sidra"

	// DefaultBaseURL is the root of the aggregates API.
	DefaultBaseURL = "https://servicodados.ibge.gov.br/api/v3/agregados"
	// DefaultLocalitiesURL is the root of the localities API.
	DefaultLocalitiesURL = "https://servicodados.ibge.gov.br/api/v1/localidades"
	// DefaultFeedURL is the IBGE news agency feed.
	DefaultFeedURL = "https://agenciadenoticias.ibge.gov.br/agencia-noticias.feed?type=rss"

	pingTable = "1419"
)

// Options are the date-window options of a request.
type Options = provider.SeriesOptions

// Config configures a Provider. Empty fields take defaults.
type Config struct {
	BaseURL       string
	LocalitiesURL string
	FeedURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryWait     time.Duration
	RateLimit     float64 // requests per second; 0 means unlimited
	Concurrency   int     // parallel aggregate fetches; 0 means one at a time
	UserAgent     string
	HTTPClient    *http.Client
}

// Provider is the SIDRA source.
type Provider struct {
	provider.BaseSource
	cfg    Config
	client *infra.Client
	feeds  *feed.Reader
}

var (
	_ provider.SeriesSource = (*Provider)(nil)
	_ provider.TextSearcher = (*Provider)(nil)
	_ provider.NewsSource   = (*Provider)(nil)
)

// New creates a SIDRA provider with the default configuration.
func New() *Provider {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a SIDRA provider, filling empty fields of cfg with
// defaults.
func NewWithConfig(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LocalitiesURL == "" {
		cfg.LocalitiesURL = DefaultLocalitiesURL
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.LocalitiesURL = strings.TrimRight(cfg.LocalitiesURL, "/")
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	client := infra.NewClient(infra.Options{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryWait:  cfg.RetryWait,
		RateLimit:  cfg.RateLimit,
		UserAgent:  cfg.UserAgent,
		HTTPClient: cfg.HTTPClient,
	})
	return &Provider{
		BaseSource: provider.NewBaseSource(
			providerName,
			"IBGE - Sistema IBGE de Recuperação Automática (agregados)",
			"https://sidra.ibge.gov.br",
			cfg.BaseURL,
			provider.CapSeries, provider.CapMetadata, provider.CapSearch, provider.CapCatalog, provider.CapNews,
		),
		cfg:    cfg,
		client: client,
		feeds:  feed.NewReader(client),
	}
}

// BuildURL returns the values URL of an aggregate against the configured host.
func (p *Provider) BuildURL(table string, agg *Aggregate, req Request) (string, error) {
	return buildURL(p.cfg.BaseURL, table, agg, req)
}

// Ping checks connectivity by reading the metadata of the IPCA aggregate.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.Get(ctx, p.cfg.BaseURL+"/"+pingTable+"/metadados", "application/json"); err != nil {
		return fmt.Errorf("sidra ping: %w", err)
	}
	return nil
}
