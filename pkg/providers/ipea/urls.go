package ipea

import (
	"fmt"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/internal/infra"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/odata"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Value fields of the ValoresSerie entity.
const (
	fieldDate  = "VALDATA"
	fieldValue = "VALVALOR"
)

// BuildSeriesURL returns the values URL of code against the default host.
func BuildSeriesURL(code string, opts Options) (string, error) {
	return seriesURL(DefaultBaseURL, code, opts)
}

// BuildMetadataURL returns the metadata URL of code against the default host.
func BuildMetadataURL(code string) (string, error) {
	return metadataURL(DefaultBaseURL, code)
}

// BuildSearchURL returns the metadata search URL of q against the default host.
func BuildSearchURL(q Query) (string, error) {
	return searchURL(DefaultBaseURL, q)
}

// seriesURL composes
//
//	{base}/ValoresSerie(SERCODIGO='{code}')?$select=VALDATA,VALVALOR[&$filter=VALDATA ge {start} and VALDATA le {end}]
//
// A bound is only emitted when the caller set it. LastN replaces the date
// bounds with the newest n values.
func seriesURL(base, code string, opts Options) (string, error) {
	code, err := validateCode(code)
	if err != nil {
		return "", err
	}
	if opts.LastN < 0 {
		return "", fmt.Errorf("ipea: last_n must be positive, got %d", opts.LastN)
	}

	url := fmt.Sprintf("%s/ValoresSerie(SERCODIGO='%s')?%s=%s,%s", base, code, odata.QuerySelect, fieldDate, fieldValue)
	if opts.LastN > 0 {
		return fmt.Sprintf("%s&$orderby=%s desc&$top=%d", url, fieldDate, opts.LastN), nil
	}

	var bounds []string
	if strings.TrimSpace(opts.Start) != "" {
		start, err := utils.ParseDate(opts.Start, utils.RoleStart)
		if err != nil {
			return "", err
		}
		bounds = append(bounds, fmt.Sprintf("%s ge %s", fieldDate, utils.FormatIPEA(start)))
	}
	if strings.TrimSpace(opts.End) != "" {
		end, err := utils.ParseDate(opts.End, utils.RoleEnd)
		if err != nil {
			return "", err
		}
		bounds = append(bounds, fmt.Sprintf("%s le %s", fieldDate, utils.FormatIPEA(end)))
	}
	if len(bounds) > 0 {
		url += fmt.Sprintf("&%s=%s", odata.QueryFilter, strings.Join(bounds, " and "))
	}
	return url, nil
}

// metadataURL composes {base}/Metadados('{code}').
func metadataURL(base, code string) (string, error) {
	code, err := validateCode(code)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/Metadados('%s')", base, code), nil
}

// searchURL composes {base}/Metadados?$select=...[&$filter=...].
func searchURL(base string, q Query) (string, error) {
	sel, err := q.selectFields()
	if err != nil {
		return "", err
	}
	filter, err := odata.BuildFilter(q.Names, q.Terms...)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/Metadados?%s=%s", base, odata.QuerySelect, sel)
	if filter != "" {
		url += fmt.Sprintf("&%s=%s", odata.QueryFilter, infra.QueryValue(filter))
	}
	return url, nil
}

// validateCode accepts the alphanumeric series codes used by Ipeadata, such
// as BM12_TJOVER12 or PRECOS12_IPCA12.
func validateCode(code string) (string, error) {
	c := strings.TrimSpace(code)
	if c == "" {
		return "", fmt.Errorf("%w: ipea code is empty", models.ErrInvalidCode)
	}
	for _, r := range c {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return "", fmt.Errorf("%w: ipea code %q has character %q", models.ErrInvalidCode, code, r)
		}
	}
	return c, nil
}
