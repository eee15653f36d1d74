package sgs

import (
	"encoding/json"
	"fmt"
)

// observation is one element of the series payload.
// Example: {"data":"02/01/2020","valor":"4.25"}
type observation struct {
	Data  string `json:"data"`
	Valor any    `json:"valor"`
}

// ckanResponse is the envelope of the CKAN package_search action.
type ckanResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SearchOptions pages through CKAN search results.
type SearchOptions struct {
	Rows  int // page size; 0 means 10
	Start int // offset of the first result
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Rows <= 0 {
		o.Rows = 10
	}
	if o.Start < 0 {
		o.Start = 0
	}
	return o
}

// SearchColumns are the columns of Search results.
var SearchColumns = []string{"codigo_sgs", "title", "periodicidade", "unidade_medida"}

// text renders a decoded JSON scalar as a string.
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
