package sidra

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Request narrows a SIDRA query. The embedded Options give the date window;
// the zero values of the other fields select every variable, the whole
// country and no classification.
type Request struct {
	Options
	Variables       []int
	Locations       Locations
	Classifications Classifications
}

// Classification selects categories of one classification. No categories
// means all of them.
type Classification struct {
	ID         int
	Categories []int
}

// String renders the classification as {id}[c1,c2] or {id}[all].
func (c Classification) String() string {
	if len(c.Categories) == 0 {
		return fmt.Sprintf("%d[all]", c.ID)
	}
	parts := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		parts[i] = strconv.Itoa(cat)
	}
	return fmt.Sprintf("%d[%s]", c.ID, strings.Join(parts, ","))
}

// Classifications is an ordered list of classification selections.
type Classifications []Classification

// String renders the value of the classificacao parameter.
func (cs Classifications) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, "|")
}

// ParseClassification reads the command-line form of a classification:
// "315" for all categories, "315=7169,7170" for some, "315=all".
func ParseClassification(s string) (Classification, error) {
	idText, list, _ := strings.Cut(strings.TrimSpace(s), "=")
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return Classification{}, fmt.Errorf("classification %q: id must be an integer", s)
	}
	list = strings.TrimSpace(list)
	if list == "" || strings.EqualFold(list, "all") {
		return Classification{ID: id}, nil
	}
	cats, err := parseInts(list)
	if err != nil {
		return Classification{}, fmt.Errorf("classification %q: %w", s, err)
	}
	return Classification{ID: id, Categories: cats}, nil
}

// Periods renders the periodos path segment: /periodos/-{n} for the last n
// periods, otherwise /periodos/{start}-{end} in the aggregate's period codes.
func Periods(freq Frequency, opts Options) (string, error) {
	if opts.LastN < 0 {
		return "", fmt.Errorf("sidra: last_n must be positive, got %d", opts.LastN)
	}
	if opts.LastN > 0 {
		return fmt.Sprintf("/periodos/-%d", opts.LastN), nil
	}
	start, end, err := utils.ParseRange(opts.Start, opts.End)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/periodos/%s-%s", freq.Format(start), freq.Format(end)), nil
}

// VariablesSegment renders the variaveis path segment. No variables selects
// all of them.
func VariablesSegment(vars []int) string {
	if len(vars) == 0 {
		return "/variaveis"
	}
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = strconv.Itoa(v)
	}
	return "/variaveis/" + strings.Join(parts, "|")
}

// ClassificationsSegment renders the classificacao query parameter, or
// nothing when cs is empty.
func ClassificationsSegment(cs Classifications) string {
	if len(cs) == 0 {
		return ""
	}
	return "&classificacao=" + cs.String()
}

// BuildURL returns the values URL of an aggregate against the default host.
func BuildURL(table string, agg *Aggregate, req Request) (string, error) {
	return buildURL(DefaultBaseURL, table, agg, req)
}

// buildURL composes
//
//	{base}/{table}{periods}{variables}?&localidades=...[&classificacao=...]&view=flat
//
// using the frequency and territorial levels declared by agg.
func buildURL(base, table string, agg *Aggregate, req Request) (string, error) {
	table, err := validateCode(table)
	if err != nil {
		return "", err
	}
	freq, err := agg.Frequency()
	if err != nil {
		return "", err
	}
	if err := req.Locations.Validate(agg.Levels.Administrative); err != nil {
		return "", err
	}
	periods, err := Periods(freq, req.Options)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s%s%s?%s%s&view=flat",
		strings.TrimRight(base, "/"), table, periods, VariablesSegment(req.Variables),
		LocationsSegment(req.Locations), ClassificationsSegment(req.Classifications)), nil
}

// validateCode accepts numeric aggregate ids.
func validateCode(code string) (string, error) {
	c := strings.TrimSpace(code)
	if _, err := strconv.ParseUint(c, 10, 64); err != nil {
		return "", fmt.Errorf("%w: sidra aggregates are numeric, got %q", models.ErrInvalidCode, code)
	}
	return c, nil
}
