// Package odata builds the $select and $filter query options understood by
// the IPEA OData v4 API.
package odata

import "strings"

// Query options.
const (
	QuerySelect = "$select"
	QueryFilter = "$filter"
)

// Annotations found in IPEA responses.
const (
	ODataContext = "@odata.context"
	ODataValue   = "value"
)

// Operator is the comparison applied to a metadata field.
type Operator string

const (
	OpContains Operator = "contains"
	OpEq       Operator = "eq"
)

// Connector joins the values of a multi-valued term.
type Connector string

const (
	Or  Connector = "or"
	And Connector = "and"
)

// Metadata fields of the Metadados entity.
const (
	FieldCode        = "SERCODIGO"
	FieldName        = "SERNOME"
	FieldPeriod      = "PERNOME"
	FieldUnit        = "UNINOME"
	FieldBase        = "BASNOME"
	FieldTheme       = "TEMCODIGO"
	FieldCountry     = "PAICODIGO"
	FieldComment     = "SERCOMENTARIO"
	FieldSource      = "FNTNOME"
	FieldSourceAbbr  = "FNTSIGLA"
	FieldSourceURL   = "FNTURL"
	FieldMultiplier  = "MULNOME"
	FieldLastUpdated = "SERATUALIZACAO"
	FieldStatus      = "SERSTATUS"
	FieldNumeric     = "SERNUMERICA"
)

type fieldSpec struct {
	name string
	op   Operator
}

// catalog is the closed set of filterable fields. Codes, flags and statuses
// compare with eq; everything else is a substring match.
var catalog = []fieldSpec{
	{FieldCode, OpEq},
	{FieldName, OpContains},
	{FieldPeriod, OpContains},
	{FieldUnit, OpContains},
	{FieldBase, OpContains},
	{FieldTheme, OpEq},
	{FieldCountry, OpEq},
	{FieldComment, OpContains},
	{FieldSource, OpContains},
	{FieldSourceAbbr, OpContains},
	{FieldSourceURL, OpContains},
	{FieldMultiplier, OpContains},
	{FieldLastUpdated, OpContains},
	{FieldStatus, OpEq},
	{FieldNumeric, OpEq},
}

var catalogIndex = func() map[string]Operator {
	m := make(map[string]Operator, len(catalog))
	for _, f := range catalog {
		m[f.name] = f.op
	}
	return m
}()

// DefaultSelect is always part of $select.
var DefaultSelect = []string{FieldCode, FieldName, FieldPeriod, FieldUnit}

// Fields returns the recognized metadata fields in catalog order.
func Fields() []string {
	names := make([]string, len(catalog))
	for i, f := range catalog {
		names[i] = f.name
	}
	return names
}

// OperatorFor returns the operator used for field. Lookups are case-insensitive.
func OperatorFor(field string) (Operator, bool) {
	op, ok := catalogIndex[strings.ToUpper(field)]
	return op, ok
}

// IsField reports whether field is in the metadata catalog.
func IsField(field string) bool {
	_, ok := OperatorFor(field)
	return ok
}
