package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		role Role
		want time.Time
	}{
		// full dates keep their day in both roles
		{"15/03/2019", RoleStart, date(2019, 3, 15)},
		{"15/03/2019", RoleEnd, date(2019, 3, 15)},
		{"15-03-2019", RoleStart, date(2019, 3, 15)},
		{"15032019", RoleEnd, date(2019, 3, 15)},
		{"5/3/2019", RoleStart, date(2019, 3, 5)},

		// month-year
		{"03/2019", RoleStart, date(2019, 3, 1)},
		{"03/2019", RoleEnd, date(2019, 3, 31)},
		{"02-2017", RoleStart, date(2017, 2, 1)},
		{"02-2020", RoleEnd, date(2020, 2, 29)},
		{"042019", RoleEnd, date(2019, 4, 30)},

		// year only
		{"2018", RoleStart, date(2018, 1, 1)},
		{"2018", RoleEnd, date(2018, 12, 31)},

		// month words
		{"oct2018", RoleStart, date(2018, 10, 1)},
		{"oct2018", RoleEnd, date(2018, 10, 31)},
		{"january2018", RoleEnd, date(2018, 1, 31)},
		{"Feb/2019", RoleEnd, date(2019, 2, 28)},
		{"nov-2019", RoleStart, date(2019, 11, 1)},

		// ISO forms
		{"2018-12-31T00:00:00Z", RoleStart, date(2018, 12, 31)},
		{"2018-06", RoleEnd, date(2018, 6, 30)},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in, tt.role)
		if err != nil {
			t.Errorf("ParseDate(%q, %s) error: %v", tt.in, tt.role, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q, %s) = %v, want %v", tt.in, tt.role, got, tt.want)
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "32/01/2019", "13/2019", "2019/13/01", "20180101"} {
		_, err := ParseDate(in, RoleStart)
		if !errors.Is(err, models.ErrInvalidDate) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", in, err)
		}
	}
}

func TestParseStartEndDefaults(t *testing.T) {
	restore := SetClock(func() time.Time {
		return time.Date(2024, 5, 17, 15, 0, 0, 0, time.UTC)
	})
	defer restore()

	start, err := ParseStart("")
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(DefaultStart) {
		t.Errorf("ParseStart(\"\") = %v, want %v", start, DefaultStart)
	}

	end, err := ParseEnd("")
	if err != nil {
		t.Fatal(err)
	}
	if !end.Equal(date(2024, 5, 17)) {
		t.Errorf("ParseEnd(\"\") = %v, want 2024-05-17", end)
	}
}

func TestParseEndCanonicalForms(t *testing.T) {
	end, err := ParseEnd("2018")
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"sgs", FormatSGS(end), "31/12/2018"},
		{"sidra monthly", FormatMonthly(end), "201812"},
		{"sidra yearly", FormatYearly(end), "2018"},
		{"sidra quarterly", FormatQuarterly(end), "201804"},
		{"ipea", FormatIPEA(end), "2018-12-31T00:00:00Z"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	days := []time.Time{
		date(1900, 1, 1),
		date(2016, 2, 29),
		date(2019, 7, 15),
		date(2023, 12, 31),
	}
	for _, d := range days {
		for _, s := range []string{FormatSGS(d), FormatIPEA(d)} {
			got, err := ParseDate(s, RoleStart)
			if err != nil {
				t.Errorf("ParseDate(%q): %v", s, err)
				continue
			}
			if !got.Equal(d) {
				t.Errorf("ParseDate(%q) = %v, want %v", s, got, d)
			}
		}
	}
}

func TestFormatQuarterly(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{date(2017, 2, 1), "201701"},
		{date(2017, 6, 30), "201702"},
		{date(2019, 7, 1), "201903"},
		{date(2019, 11, 20), "201904"},
	}
	for _, tt := range tests {
		if got := FormatQuarterly(tt.in); got != tt.want {
			t.Errorf("FormatQuarterly(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
