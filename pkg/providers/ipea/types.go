package ipea

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/odata"
)

// Query is a metadata search.
type Query struct {
	Names  []string     // free-text terms matched against SERNOME
	Terms  []odata.Term // one $filter clause per term
	Fields []string     // extra $select fields
}

// selectFields renders $select: the default fields, then the fields of the
// filter terms, then the extra fields.
func (q Query) selectFields() (string, error) {
	return odata.BuildSelect(append(odata.TermFields(q.Terms), q.Fields...)...)
}

// columns lists the fields selected by q in $select order.
func (q Query) columns() []string {
	sel, err := q.selectFields()
	if err != nil {
		return odata.DefaultSelect
	}
	return strings.Split(sel, ",")
}

// response is the OData collection envelope.
// Example: {"@odata.context": "...", "value": [{"VALDATA": "...", "VALVALOR": 4.5}]}
type response struct {
	Context string           `json:"@odata.context"`
	Value   []map[string]any `json:"value"`
}

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

// toRecords renders OData entities as records. Columns follow preferred for
// the fields that exist, then the remaining fields in name order. Annotation
// keys are dropped.
func toRecords(rows []map[string]any, preferred ...string) *models.Records {
	present := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			if !strings.HasPrefix(k, "@odata") {
				present[k] = true
			}
		}
	}

	var columns []string
	for _, c := range preferred {
		if present[c] {
			columns = append(columns, c)
			delete(present, c)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	columns = append(columns, rest...)

	out := models.NewRecords(columns...)
	for _, row := range rows {
		rec := make(models.Record, len(columns))
		for _, c := range columns {
			rec[c] = row[c]
		}
		out.Append(rec)
	}
	return out
}
