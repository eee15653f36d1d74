package sgs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// BuildURL returns the series URL for code against the default host.
func BuildURL(code string, opts Options) (string, error) {
	return buildURL(DefaultBaseURL, code, opts)
}

// BuildURL returns the series URL for code against the configured host.
func (p *Provider) BuildURL(code string, opts Options) (string, error) {
	return buildURL(p.cfg.BaseURL, code, opts)
}

// buildURL composes either the last-N form
//
//	{base}/bcdata.sgs.{code}/dados/ultimos/{n}?format=json
//
// or the date-bounded form
//
//	{base}/bcdata.sgs.{code}/dados?format=json&dataInicial=DD/MM/YYYY&dataFinal=DD/MM/YYYY
func buildURL(base, code string, opts Options) (string, error) {
	code, err := validateCode(code)
	if err != nil {
		return "", err
	}
	if opts.LastN < 0 {
		return "", fmt.Errorf("sgs: last_n must be positive, got %d", opts.LastN)
	}

	url := fmt.Sprintf("%s/bcdata.sgs.%s/dados", strings.TrimRight(base, "/"), code)
	if opts.LastN > 0 {
		return fmt.Sprintf("%s/ultimos/%d?format=json", url, opts.LastN), nil
	}

	start, end, err := utils.ParseRange(opts.Start, opts.End)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?format=json&dataInicial=%s&dataFinal=%s", url, utils.FormatSGS(start), utils.FormatSGS(end)), nil
}

// validateCode accepts integer-like codes and returns them trimmed.
func validateCode(code string) (string, error) {
	c := strings.TrimSpace(code)
	if c == "" {
		return "", fmt.Errorf("%w: sgs code is empty", models.ErrInvalidCode)
	}
	if _, err := strconv.ParseUint(c, 10, 64); err != nil {
		return "", fmt.Errorf("%w: sgs codes are numeric, got %q", models.ErrInvalidCode, code)
	}
	return c, nil
}

// BuildSearchURL returns the CKAN search URL for terms. The first term is the
// query; the remaining ones become a filter query, separated by "+".
func BuildSearchURL(searchURL string, opts SearchOptions, terms ...string) string {
	opts = opts.withDefaults()
	q := ""
	if len(terms) > 0 {
		q = infra.QueryValue(terms[0])
	}
	url := fmt.Sprintf("%s?q=%s&rows=%d&start=%d&sort=score desc", searchURL, q, opts.Rows, opts.Start)
	if len(terms) > 1 {
		fq := make([]string, len(terms)-1)
		for i, t := range terms[1:] {
			fq[i] = infra.QueryValue(t)
		}
		url += "&fq=" + strings.Join(fq, "+")
	}
	return url
}

// BuildMetadataURL returns the CKAN URL that finds the dataset describing code.
func BuildMetadataURL(searchURL, code string) (string, error) {
	code, err := validateCode(code)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?fq=codigo_sgs:%s", searchURL, code), nil
}
