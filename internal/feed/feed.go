// Package feed reads the RSS and Atom news feeds published by the Central
// Bank and IBGE.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Columns of the records returned by Fetch.
var Columns = []string{"published", "title", "link", "summary"}

// Item is one feed entry.
type Item struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary"`
	Published time.Time `json:"published"`
}

// Reader fetches feeds through the shared HTTP client.
type Reader struct {
	client *infra.Client
	parser *gofeed.Parser
}

// NewReader creates a feed reader.
func NewReader(client *infra.Client) *Reader {
	return &Reader{client: client, parser: gofeed.NewParser()}
}

// Items fetches url and returns its entries, newest first. A positive limit
// caps the number of entries.
func (r *Reader) Items(ctx context.Context, url string, limit int) ([]Item, error) {
	body, err := r.client.Get(ctx, url, "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	if err != nil {
		return nil, err
	}
	parsed, err := r.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed %s: %v", models.ErrInvalidPayload, url, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		item := Item{
			Title:   utils.CleanHTML(it.Title),
			Link:    it.Link,
			Summary: utils.CleanHTML(it.Description),
		}
		switch {
		case it.PublishedParsed != nil:
			item.Published = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.Published = *it.UpdatedParsed
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Fetch is Items rendered as records with the Columns layout.
func (r *Reader) Fetch(ctx context.Context, url string, limit int) (*models.Records, error) {
	items, err := r.Items(ctx, url, limit)
	if err != nil {
		return nil, err
	}
	out := models.NewRecords(Columns...)
	for _, it := range items {
		published := ""
		if !it.Published.IsZero() {
			published = it.Published.UTC().Format(time.RFC3339)
		}
		out.Append(models.Record{
			"published": published,
			"title":     it.Title,
			"link":      it.Link,
			"summary":   it.Summary,
		})
	}
	return out, nil
}
