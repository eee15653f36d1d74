package utils

import (
	"sync"
	"time"
)

// BRT is the Brasília time location (UTC-3). Every source publishes its
// calendar in this zone, so "today" is taken from it.
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		BRT = time.FixedZone("BRT", -3*60*60)
	}
}

var (
	clockMu sync.RWMutex
	clock   = time.Now
)

// SetClock replaces the wall clock used by NowBRT and Today and returns a
// function that restores the previous one. Intended for tests.
func SetClock(now func() time.Time) (restore func()) {
	clockMu.Lock()
	prev := clock
	clock = now
	clockMu.Unlock()
	return func() {
		clockMu.Lock()
		clock = prev
		clockMu.Unlock()
	}
}

// NowBRT returns the current time in Brasília.
func NowBRT() time.Time {
	clockMu.RLock()
	now := clock
	clockMu.RUnlock()
	return now().In(BRT)
}

// Today returns the current Brasília calendar date as a UTC midnight, the
// same shape ParseDate produces.
func Today() time.Time {
	return DateOnly(NowBRT())
}

// DateOnly drops the clock and zone from t, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the last calendar day of t's month: move to the
// 28th, add four days, then step back by the new day-of-month.
func LastDayOfMonth(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), 28, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 4)
	return next.AddDate(0, 0, -next.Day())
}

// MonthToQuarter maps a month in 1..12 to the last month of its quarter
// (3, 6, 9 or 12).
func MonthToQuarter(month int) int {
	return ((month + 2) / 3) * 3
}

// QuarterOf returns the quarter number (1..4) that contains month.
func QuarterOf(month int) int {
	return MonthToQuarter(month) / 3
}

// QuarterStart returns the first day of the given quarter.
func QuarterStart(year, quarter int) time.Time {
	return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}
