package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// missingSentinels are the placeholder tokens providers emit for cells
// they did not report. They normalize to an explicit missing value,
// never to zero.
var missingSentinels = map[string]struct{}{
	"": {}, "-": {}, "--": {}, "—": {}, "None": {}, "none": {}, "N/A": {}, "n/a": {},
}

// IsMissing reports whether a raw string is a missing-value placeholder.
func IsMissing(s string) bool {
	_, ok := missingSentinels[strings.TrimSpace(s)]
	return ok
}

// magnitudes for abbreviated market caps like "2.5T" or "890.42B".
var magnitudes = map[byte]int32{'K': 3, 'M': 6, 'B': 9, 'T': 12}

// ParseDecimal parses a numeric string as providers format them:
// optional leading "+", optional "%" suffix, optional thousands commas,
// optional K/M/B/T magnitude suffix.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty numeric string")
	}
	var shift int32
	if exp, ok := magnitudes[s[len(s)-1]&^0x20]; ok && len(s) > 1 {
		shift = exp
		s = s[:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Shift(shift), nil
}

// ParseOptionalDecimal parses like ParseDecimal but maps missing-value
// placeholders to nil instead of an error.
func ParseOptionalDecimal(s string) (*decimal.Decimal, error) {
	if IsMissing(s) {
		return nil, nil
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseCell parses one financial statement cell. Placeholder sentinels
// become an invalid NullDecimal; anything else must parse as a number.
func ParseCell(s string) (decimal.NullDecimal, error) {
	if IsMissing(s) {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// CellFromFloat wraps a possibly absent float value as a statement cell.
func CellFromFloat(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
}

// DecimalPtr adapts a float pointer to a decimal pointer.
func DecimalPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

// ParseEpoch interprets an epoch value that may be seconds or
// milliseconds. Zero or negative values return the zero time.
func ParseEpoch(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	if v > 1_000_000_000_000 { // ms
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

// barTimeFormats are the timestamp layouts providers use for historical
// bar keys, tried in order.
var barTimeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseBarTime parses a historical bar timestamp string into UTC.
func ParseBarTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range barTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// NormalizeSymbol upcases a requested symbol for canonical output.
// The raw string is still sent to providers verbatim.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SortBarsAscending orders bars by timestamp, oldest first. Providers
// that emit newest-first sequences get reversed here so "latest bar"
// logic downstream can rely on the last element.
func SortBarsAscending(bars []HistoricalBar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
}
