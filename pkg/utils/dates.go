package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// Role selects how a partial date is anchored.
type Role int

const (
	// RoleStart anchors partial dates to the first day they cover.
	RoleStart Role = iota
	// RoleEnd anchors partial dates to the last day they cover.
	RoleEnd
)

func (r Role) String() string {
	if r == RoleEnd {
		return "end"
	}
	return "start"
}

type precision int

const (
	precDay precision = iota
	precMonth
	precYear
)

type datePattern struct {
	layout string
	prec   precision
}

// datePatterns is tried in order; the first layout that parses wins.
// Month names match case-insensitively ("oct2018", "January/2018").
var datePatterns = []datePattern{
	// day/month/year
	{"02/01/2006", precDay},
	{"2/1/2006", precDay},
	{"02-01-2006", precDay},
	{"2-1-2006", precDay},
	{"02012006", precDay},

	// month/year
	{"01/2006", precMonth},
	{"1/2006", precMonth},
	{"01-2006", precMonth},
	{"1-2006", precMonth},
	{"012006", precMonth},

	// year
	{"2006", precYear},

	// abbreviated month/year
	{"Jan/2006", precMonth},
	{"Jan-2006", precMonth},
	{"Jan2006", precMonth},

	// full month name/year
	{"January/2006", precMonth},
	{"January-2006", precMonth},
	{"January2006", precMonth},

	// ISO forms, which is what the APIs hand back
	{"2006-01-02", precDay},
	{"2006-01", precMonth},
	{"2006-01-02T15:04:05Z07:00", precDay},
	{"2006-01-02T15:04:05", precDay},
}

// ParseDate parses a user date expression and anchors missing components
// according to role. Year-only inputs become January 1 or December 31;
// month-year inputs become the first or last day of that month. The result
// is always a UTC midnight.
func ParseDate(s string, role Role) (time.Time, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", models.ErrInvalidDate)
	}

	for _, p := range datePatterns {
		t, err := time.Parse(p.layout, value)
		if err != nil {
			continue
		}
		return anchor(DateOnly(t), p.prec, role), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q matches no known format", models.ErrInvalidDate, s)
}

func anchor(t time.Time, prec precision, role Role) time.Time {
	if role == RoleStart {
		// time.Parse already fills missing day and month with 1.
		return t
	}
	switch prec {
	case precYear:
		return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	case precMonth:
		return LastDayOfMonth(t)
	default:
		return t
	}
}

// DefaultStart is the start sentinel used when no start date is given.
var DefaultStart = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseStart parses s in the start role. An empty string yields DefaultStart.
func ParseStart(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultStart, nil
	}
	return ParseDate(s, RoleStart)
}

// ParseEnd parses s in the end role. An empty string yields Today.
func ParseEnd(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return Today(), nil
	}
	return ParseDate(s, RoleEnd)
}

// ParseRange parses both endpoints of a date window.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	from, err := ParseStart(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseEnd(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// FormatSGS renders t the way the Central Bank API expects (DD/MM/YYYY).
func FormatSGS(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatIPEA renders t as an ISO-8601 midnight with a zero UTC offset.
func FormatIPEA(t time.Time) string {
	return t.Format("2006-01-02") + "T00:00:00Z"
}

// FormatMonthly renders t as YYYYMM.
func FormatMonthly(t time.Time) string {
	return t.Format("200601")
}

// FormatYearly renders t as YYYY.
func FormatYearly(t time.Time) string {
	return FormatMonthly(t)[:4]
}

// FormatQuarterly renders t as YYYY0Q.
func FormatQuarterly(t time.Time) string {
	return fmt.Sprintf("%04d%02d", t.Year(), QuarterOf(int(t.Month())))
}
