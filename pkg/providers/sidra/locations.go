package sidra

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Level is a territorial level a SIDRA request can be broken down by.
type Level string

const (
	Brazil         Level = "brazil"
	Macroregions   Level = "macroregions"
	States         Level = "states"
	Mesoregions    Level = "mesoregions"
	Microregions   Level = "microregions"
	Municipalities Level = "municipalities"
)

// levelCodes maps levels to the territorial codes used by the API.
var levelCodes = map[Level]string{
	Brazil:         "N1",
	Macroregions:   "N2",
	States:         "N3",
	Municipalities: "N6",
	Mesoregions:    "N7",
	Microregions:   "N9",
}

// Levels returns the supported levels in API code order.
func Levels() []Level {
	return []Level{Brazil, Macroregions, States, Municipalities, Mesoregions, Microregions}
}

// Code returns the API code of the level, such as N3 for states.
func (l Level) Code() (string, bool) {
	code, ok := levelCodes[l]
	return code, ok
}

// LevelOf returns the level whose API code is code.
func LevelOf(code string) (Level, bool) {
	for l, c := range levelCodes {
		if c == code {
			return l, true
		}
	}
	return "", false
}

// Location selects the units of one territorial level. All selects every
// unit; otherwise Codes lists the units. A location with neither is absent.
type Location struct {
	Level Level
	All   bool
	Codes []int
}

// AllOf selects every unit of level.
func AllOf(level Level) Location {
	return Location{Level: level, All: true}
}

// In selects the listed units of level.
func In(level Level, codes ...int) Location {
	return Location{Level: level, Codes: codes}
}

func (l Location) present() bool {
	return l.All || len(l.Codes) > 0
}

// String renders the location: BR for Brazil, N3 for every state,
// N3[2,3,4] for some states.
func (l Location) String() string {
	if l.Level == Brazil {
		return "BR"
	}
	code, _ := l.Level.Code()
	if len(l.Codes) == 0 {
		return code
	}
	parts := make([]string, len(l.Codes))
	for i, c := range l.Codes {
		parts[i] = strconv.Itoa(c)
	}
	return code + "[" + strings.Join(parts, ",") + "]"
}

// Locations is an ordered list of territorial selections.
type Locations []Location

// String renders the value of the localidades parameter. Absent locations are
// skipped; when none is left the whole country is selected.
func (ls Locations) String() string {
	var parts []string
	for _, l := range ls {
		if l.present() {
			parts = append(parts, l.String())
		}
	}
	if len(parts) == 0 {
		return "BR"
	}
	return strings.Join(parts, "|")
}

// Validate checks every present location against the territorial levels an
// aggregate publishes.
func (ls Locations) Validate(allowed []string) error {
	for _, l := range ls {
		if !l.present() {
			continue
		}
		code, ok := l.Level.Code()
		if !ok {
			return fmt.Errorf("%w: unknown territorial level %q", models.ErrDisallowedLocation, l.Level)
		}
		if !slices.Contains(allowed, code) {
			return fmt.Errorf("%w: %s (%s) not in %s", models.ErrDisallowedLocation, l.Level, code, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// LocationsSegment renders the localidades query parameter.
func LocationsSegment(ls Locations) string {
	return "&localidades=" + ls.String()
}

// ParseLocation reads the command-line form of a location: "states" or
// "states=all" for every state, "states=33,35" for some of them.
func ParseLocation(s string) (Location, error) {
	name, list, hasList := strings.Cut(strings.TrimSpace(s), "=")
	level := Level(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := level.Code(); !ok {
		return Location{}, fmt.Errorf("%w: unknown territorial level %q", models.ErrDisallowedLocation, name)
	}
	list = strings.TrimSpace(list)
	if !hasList || list == "" || strings.EqualFold(list, "all") || strings.EqualFold(list, "true") {
		return AllOf(level), nil
	}
	codes, err := parseInts(list)
	if err != nil {
		return Location{}, fmt.Errorf("location %q: %w", s, err)
	}
	return In(level, codes...), nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", f)
		}
		out = append(out, n)
	}
	return out, nil
}
