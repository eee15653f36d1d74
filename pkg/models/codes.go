package models

import (
	"fmt"
	"strings"
)

// SeriesCode is one requested series: the remote code and the column label
// it is reported under.
type SeriesCode struct {
	Label string `json:"label" yaml:"label"`
	Code  string `json:"code"  yaml:"code"`
}

// CodeInput is what callers pass to GetSeries: either a bare code or a set of
// labeled codes. Collect folds any mix of them into Codes.
type CodeInput interface {
	seriesCodes() []SeriesCode
}

func (c SeriesCode) seriesCodes() []SeriesCode { return []SeriesCode{c} }

// Labeled is an ordered label→code mapping.
type Labeled []SeriesCode

func (l Labeled) seriesCodes() []SeriesCode { return l }

// CodeValue is the set of Go types accepted as a series code.
type CodeValue interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~string
}

// Bare is a code whose label is the code itself.
func Bare[T CodeValue](code T) SeriesCode {
	s := fmt.Sprint(code)
	return SeriesCode{Label: s, Code: s}
}

// Label pairs a code with the column label it should be reported under.
func Label[T CodeValue](label string, code T) SeriesCode {
	return SeriesCode{Label: label, Code: fmt.Sprint(code)}
}

// Codes is the canonical ordered label→code mapping.
type Codes []SeriesCode

// Collect folds inputs into Codes in argument order. Labeled inputs expand in
// place. A repeated label keeps its first position and takes the later code.
func Collect(inputs ...CodeInput) Codes {
	var out Codes
	index := make(map[string]int)
	for _, in := range inputs {
		if in == nil {
			continue
		}
		for _, c := range in.seriesCodes() {
			if c.Label == "" {
				c.Label = c.Code
			}
			if i, ok := index[c.Label]; ok {
				out[i].Code = c.Code
				continue
			}
			index[c.Label] = len(out)
			out = append(out, c)
		}
	}
	return out
}

// Labels returns the labels in order.
func (c Codes) Labels() []string {
	labels := make([]string, len(c))
	for i, sc := range c {
		labels[i] = sc.Label
	}
	return labels
}

// Get returns the code for label.
func (c Codes) Get(label string) (string, bool) {
	for _, sc := range c {
		if sc.Label == label {
			return sc.Code, true
		}
	}
	return "", false
}

// ParseCodeInput reads the command-line form of a code: "label=code" yields a
// labeled code and anything else a bare one.
func ParseCodeInput(s string) SeriesCode {
	s = strings.TrimSpace(s)
	if label, code, ok := strings.Cut(s, "="); ok && label != "" && code != "" {
		return Label(strings.TrimSpace(label), strings.TrimSpace(code))
	}
	return Bare(s)
}

// ParseCodeInputs applies ParseCodeInput to every argument.
func ParseCodeInputs(args []string) []CodeInput {
	inputs := make([]CodeInput, 0, len(args))
	for _, a := range args {
		if strings.TrimSpace(a) == "" {
			continue
		}
		inputs = append(inputs, ParseCodeInput(a))
	}
	return inputs
}
