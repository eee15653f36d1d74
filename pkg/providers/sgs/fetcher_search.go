package sgs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Search queries the open-data portal for series matching terms and returns
// one row per dataset with the SearchColumns layout.
func (p *Provider) Search(ctx context.Context, opts SearchOptions, terms ...string) (*models.Records, error) {
	url := BuildSearchURL(p.cfg.SearchURL, opts, terms...)
	results, err := p.packageSearch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("sgs search: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("sgs search %q: %w", strings.Join(terms, " "), models.ErrNoResults)
	}

	out := models.NewRecords(SearchColumns...)
	for _, pkg := range results {
		rec := make(models.Record, len(SearchColumns))
		for _, c := range SearchColumns {
			rec[c] = text(lookup(pkg, c))
		}
		out.Append(rec)
	}
	return out, nil
}

// SearchText is Search with the default page.
func (p *Provider) SearchText(ctx context.Context, terms ...string) (*models.Records, error) {
	return p.Search(ctx, SearchOptions{}, terms...)
}

// GetMetadata returns the open-data description of series code.
func (p *Provider) GetMetadata(ctx context.Context, code string) (models.Metadata, error) {
	url, err := BuildMetadataURL(p.cfg.SearchURL, code)
	if err != nil {
		return nil, err
	}
	results, err := p.packageSearch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("sgs metadata %s: %w", code, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("sgs metadata %s: %w", code, models.ErrNoResults)
	}
	return flatten(results[0]), nil
}

func (p *Provider) packageSearch(ctx context.Context, url string) ([]map[string]any, error) {
	var resp ckanResponse
	if err := p.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := "request not successful"
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidPayload, msg)
	}
	return resp.Result.Results, nil
}

// lookup reads key from a dataset, falling back to its "extras" key/value
// list where the portal keeps SGS-specific attributes.
func lookup(pkg map[string]any, key string) any {
	if v, ok := pkg[key]; ok && v != nil {
		return v
	}
	extras, _ := pkg["extras"].([]any)
	for _, e := range extras {
		kv, _ := e.(map[string]any)
		if text(kv["key"]) == key {
			return kv["value"]
		}
	}
	return nil
}

// flatten keeps the scalar attributes of a dataset, merges its extras and
// renders notes as plain text.
func flatten(pkg map[string]any) models.Metadata {
	meta := make(models.Metadata, len(pkg))
	for k, v := range pkg {
		switch v.(type) {
		case string, bool, fmt.Stringer:
			meta[k] = v
		}
	}
	extras, _ := pkg["extras"].([]any)
	for _, e := range extras {
		kv, _ := e.(map[string]any)
		if key := text(kv["key"]); key != "" {
			meta[key] = kv["value"]
		}
	}
	if org, ok := pkg["organization"].(map[string]any); ok {
		meta["organization"] = text(org["title"])
	}
	if tags, ok := pkg["tags"].([]any); ok && len(tags) > 0 {
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			if tag, ok := t.(map[string]any); ok {
				names = append(names, text(tag["name"]))
			}
		}
		sort.Strings(names)
		meta["tags"] = strings.Join(names, ", ")
	}
	if notes, ok := meta["notes"].(string); ok {
		meta["notes"] = utils.CleanHTML(notes)
	}
	return meta
}
