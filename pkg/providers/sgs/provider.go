// Package sgs implements the Central Bank of Brazil time-series source (SGS).
// Series are addressed by numeric codes and served as JSON by the BCB data
// API; series discovery goes through the BCB open-data CKAN portal.
//
// No API key required.
// Docs: https://dadosabertos.bcb.gov.br/dataset/sgs
package sgs

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/phelipetls/seriesbr-sub000/internal/feed"
	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/internal/provider"
)

const (
	providerName = "sgs"

	// DefaultBaseURL is the root of the series endpoint.
	DefaultBaseURL = "https://api.bcb.gov.br/dados/serie"
	// DefaultSearchURL is the CKAN package_search action of the open-data portal.
	DefaultSearchURL = "https://dadosabertos.bcb.gov.br/api/3/action/package_search"
	// DefaultFeedURL is the BCB press release feed.
	DefaultFeedURL = "https://www.bcb.gov.br/api/feed/sitebcb/sitefeeds/notasImprensa"

	pingCode = "11"
)

// Options are the date-window options of GetSeries.
type Options = provider.SeriesOptions

// Config configures a Provider. Empty fields take defaults.
type Config struct {
	BaseURL     string
	SearchURL   string
	FeedURL     string
	Timeout     time.Duration
	MaxRetries  int
	RetryWait   time.Duration
	RateLimit   float64 // requests per second; 0 means unlimited
	Concurrency int     // parallel series fetches; 0 means one at a time
	UserAgent   string
	HTTPClient  *http.Client
}

// Provider is the SGS source.
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

// New creates an SGS provider with the default configuration.
func New() *Provider {
	return NewWithConfig(Config{})
}

// NewWithConfig creates an SGS provider, filling empty fields of cfg with
// defaults.
func NewWithConfig(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
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
			"Banco Central do Brasil - Sistema Gerenciador de Séries Temporais",
			"https://www3.bcb.gov.br/sgspub",
			cfg.BaseURL,
			provider.CapSeries, provider.CapMetadata, provider.CapSearch, provider.CapNews,
		),
		cfg:    cfg,
		client: client,
		feeds:  feed.NewReader(client),
	}
}

// Ping checks connectivity by fetching the last observation of the Selic
// series.
func (p *Provider) Ping(ctx context.Context) error {
	url, err := p.BuildURL(pingCode, Options{LastN: 1})
	if err != nil {
		return err
	}
	if _, err := p.client.Get(ctx, url, "application/json"); err != nil {
		return fmt.Errorf("sgs ping: %w", err)
	}
	return nil
}
