package model

import (
	"fmt"
	"time"
)

// Range is an accepted historical data range token.
type Range string

const (
	Range1D  Range = "1d"
	Range5D  Range = "5d"
	Range1M  Range = "1mo"
	Range3M  Range = "3mo"
	Range6M  Range = "6mo"
	RangeYTD Range = "ytd"
	Range1Y  Range = "1y"
	Range5Y  Range = "5y"
	RangeMax Range = "max"
)

var ranges = map[Range]struct{}{
	Range1D: {}, Range5D: {}, Range1M: {}, Range3M: {}, Range6M: {},
	RangeYTD: {}, Range1Y: {}, Range5Y: {}, RangeMax: {},
}

// ParseRange validates a range token.
func ParseRange(s string) (Range, error) {
	r := Range(s)
	if _, ok := ranges[r]; !ok {
		return "", fmt.Errorf("invalid range %q", s)
	}
	return r, nil
}

// Interval is an accepted bar interval token.
type Interval string

const (
	Interval1Min  Interval = "1m"
	Interval5Min  Interval = "5m"
	Interval15Min Interval = "15m"
	Interval30Min Interval = "30m"
	Interval1H    Interval = "1h"
	Interval1D    Interval = "1d"
	Interval1W    Interval = "1wk"
	Interval1M    Interval = "1mo"
)

var intervals = map[Interval]struct{}{
	Interval1Min: {}, Interval5Min: {}, Interval15Min: {}, Interval30Min: {},
	Interval1H: {}, Interval1D: {}, Interval1W: {}, Interval1M: {},
}

// ParseInterval validates an interval token.
func ParseInterval(s string) (Interval, error) {
	i := Interval(s)
	if _, ok := intervals[i]; !ok {
		return "", fmt.Errorf("invalid interval %q", s)
	}
	return i, nil
}

// Intraday reports whether the interval is finer than one day.
func (i Interval) Intraday() bool {
	switch i {
	case Interval1Min, Interval5Min, Interval15Min, Interval30Min, Interval1H:
		return true
	}
	return false
}

// BarTime canonicalizes a bar timestamp for the interval. Intraday bars
// keep their full time; daily and coarser bars truncate to midnight UTC
// so the same session maps to the same timestamp whichever provider
// served it.
func (i Interval) BarTime(t time.Time) time.Time {
	if i.Intraday() {
		return t
	}
	return t.Truncate(24 * time.Hour)
}

// MoverKind selects a market movers list.
type MoverKind string

const (
	MoverGainers MoverKind = "gainers"
	MoverLosers  MoverKind = "losers"
	MoverActives MoverKind = "actives"
)

// ParseMoverKind validates a movers list kind.
func ParseMoverKind(s string) (MoverKind, error) {
	switch k := MoverKind(s); k {
	case MoverGainers, MoverLosers, MoverActives:
		return k, nil
	}
	return "", fmt.Errorf("invalid movers kind %q", s)
}

// MoverLimits are the list sizes the upstream endpoints accept.
var MoverLimits = []int{25, 50, 100}

// ValidMoverLimit reports whether limit is one of the accepted sizes.
func ValidMoverLimit(limit int) bool {
	for _, l := range MoverLimits {
		if limit == l {
			return true
		}
	}
	return false
}

// StatementKind identifies a financial statement.
type StatementKind string

const (
	StatementIncome   StatementKind = "income"
	StatementBalance  StatementKind = "balance"
	StatementCashflow StatementKind = "cashflow"
)

// ParseStatementKind validates a statement kind.
func ParseStatementKind(s string) (StatementKind, error) {
	switch k := StatementKind(s); k {
	case StatementIncome, StatementBalance, StatementCashflow:
		return k, nil
	}
	return "", fmt.Errorf("invalid statement kind %q", s)
}

// Frequency is a statement reporting frequency.
type Frequency string

const (
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// ParseFrequency validates a statement frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case FrequencyQuarterly, FrequencyAnnual:
		return f, nil
	}
	return "", fmt.Errorf("invalid frequency %q", s)
}

// Quarter is a fiscal quarter tag.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// ParseQuarter validates a quarter tag.
func ParseQuarter(s string) (Quarter, error) {
	switch q := Quarter(s); q {
	case Q1, Q2, Q3, Q4:
		return q, nil
	}
	return "", fmt.Errorf("invalid quarter %q", s)
}

// Number returns the quarter as 1..4.
func (q Quarter) Number() int {
	switch q {
	case Q1:
		return 1
	case Q2:
		return 2
	case Q3:
		return 3
	case Q4:
		return 4
	}
	return 0
}
