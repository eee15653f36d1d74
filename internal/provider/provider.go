// Package provider defines the contract shared by the SGS, IPEA and SIDRA
// sources and a registry that routes requests to them by name.
package provider

import (
	"context"
	"fmt"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Capability names one family of operations a source supports.
type Capability string

const (
	CapSeries   Capability = "series"
	CapMetadata Capability = "metadata"
	CapSearch   Capability = "search"
	CapCatalog  Capability = "catalog"
	CapNews     Capability = "news"
)

// Capabilities lists every capability, in display order.
var Capabilities = []Capability{CapSeries, CapMetadata, CapSearch, CapCatalog, CapNews}

// ParseCapability validates a capability name.
func ParseCapability(s string) (Capability, error) {
	for _, c := range Capabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// SourceInfo holds metadata about a registered source.
type SourceInfo struct {
	Name         string       `json:"name"`        // e.g., "sgs", "ipea"
	Description  string       `json:"description"` // human-readable description
	Website      string       `json:"website"`
	BaseURL      string       `json:"base_url"` // API host in use
	Capabilities []Capability `json:"capabilities"`
}

// Supports reports whether the source advertises c.
func (i SourceInfo) Supports(c Capability) bool {
	for _, have := range i.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Source is the interface every data source implements.
type Source interface {
	// Info returns metadata about this source.
	Info() SourceInfo

	// Ping verifies the source's API is reachable.
	Ping(ctx context.Context) error

	// GetMetadata returns the description of one series or aggregate.
	GetMetadata(ctx context.Context, code string) (models.Metadata, error)
}

// SeriesOptions are the date-window options common to every series request.
type SeriesOptions struct {
	Start string          `json:"start,omitempty"` // user date expression; empty means 1900-01-01
	End   string          `json:"end,omitempty"`   // user date expression; empty means today
	LastN int             `json:"last_n,omitempty"`
	Join  models.JoinKind `json:"join,omitempty"` // how per-code tables are combined; empty means outer
}

// Validate checks the options without parsing the dates.
func (o SeriesOptions) Validate() error {
	if o.LastN < 0 {
		return fmt.Errorf("last_n must be positive, got %d", o.LastN)
	}
	if _, err := models.ParseJoinKind(string(o.Join)); err != nil {
		return err
	}
	return nil
}

// SeriesSource is a source that returns date-indexed tables for a list of codes.
type SeriesSource interface {
	Source
	GetSeries(ctx context.Context, opts SeriesOptions, codes ...models.CodeInput) (*models.Table, error)
}

// TextSearcher is a source that can be searched with free-text terms alone.
type TextSearcher interface {
	Source
	SearchText(ctx context.Context, terms ...string) (*models.Records, error)
}

// NewsSource is a source that publishes a news feed.
type NewsSource interface {
	Source
	News(ctx context.Context, limit int) (*models.Records, error)
}

// ErrSourceNotFound is returned when a requested source is not registered.
type ErrSourceNotFound struct {
	Name string
}

func (e *ErrSourceNotFound) Error() string {
	return fmt.Sprintf("source %q not found", e.Name)
}

// ErrNotSupported is returned when a source lacks a capability.
type ErrNotSupported struct {
	Source     string
	Capability Capability
}

func (e *ErrNotSupported) Error() string {
	return fmt.Sprintf("source %q does not support %s", e.Source, e.Capability)
}
