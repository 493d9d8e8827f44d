package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdata/internal/model"
)

func TestParseDecimal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"145.32", "145.32"},
		{"+0.69%", "0.69"},
		{"-4.28%", "-4.28"},
		{"1,234,567.89", "1234567.89"},
		{"2.5T", "2500000000000"},
		{"890.42B", "890420000000"},
		{"52.3M", "52300000"},
		{"12.5K", "12500"},
		{"3.1b", "3100000000"},
	}
	for _, tc := range cases {
		got, err := model.ParseDecimal(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got.String(), tc.in)
	}
}

func TestParseDecimal_Rejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "N/A", "abc", "12..3"} {
		_, err := model.ParseDecimal(in)
		require.Error(t, err, in)
	}
}

func TestParseOptionalDecimal_MissingSentinels(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "-", "—", "None", "N/A"} {
		got, err := model.ParseOptionalDecimal(in)
		require.NoError(t, err, in)
		require.Nil(t, got, in)
	}

	got, err := model.ParseOptionalDecimal("2.5T")
	require.NoError(t, err)
	require.Equal(t, "2500000000000", got.String())
}

func TestParseCell(t *testing.T) {
	t.Parallel()

	// A sentinel is a missing cell, not zero.
	cell, err := model.ParseCell("None")
	require.NoError(t, err)
	require.False(t, cell.Valid)

	cell, err = model.ParseCell("0")
	require.NoError(t, err)
	require.True(t, cell.Valid)
	require.True(t, cell.Decimal.IsZero())

	_, err = model.ParseCell("garbage")
	require.Error(t, err)
}

func TestParseEpoch(t *testing.T) {
	t.Parallel()

	// Seconds and milliseconds are told apart by magnitude.
	require.Equal(t, time.Date(2024, 5, 3, 13, 20, 0, 0, time.UTC), model.ParseEpoch(1714742400))
	require.Equal(t, time.Date(2024, 5, 3, 13, 20, 0, 0, time.UTC), model.ParseEpoch(1714742400000))
	require.True(t, model.ParseEpoch(0).IsZero())
	require.True(t, model.ParseEpoch(-5).IsZero())
}

func TestParseBarTime(t *testing.T) {
	t.Parallel()

	cases := []string{
		"2024-05-03T13:20:00Z",
		"2024-05-03 13:20:00",
		"2024-05-03T13:20:00",
	}
	for _, in := range cases {
		got, err := model.ParseBarTime(in)
		require.NoError(t, err, in)
		require.Equal(t, time.Date(2024, 5, 3, 13, 20, 0, 0, time.UTC), got, in)
	}

	day, err := model.ParseBarTime("2024-05-03")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), day)

	_, err = model.ParseBarTime("May 3rd 2024")
	require.Error(t, err)
}

func TestNormalizeSymbol(t *testing.T) {
	t.Parallel()

	require.Equal(t, "AAPL", model.NormalizeSymbol("  aapl "))
	require.Equal(t, "BRK.B", model.NormalizeSymbol("brk.b"))
	require.Equal(t, "", model.NormalizeSymbol("   "))
}

func TestSortBarsAscending(t *testing.T) {
	t.Parallel()

	bars := []model.HistoricalBar{
		{Timestamp: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
	}

	model.SortBarsAscending(bars)

	require.Equal(t, 1, bars[0].Timestamp.Day())
	require.Equal(t, 2, bars[1].Timestamp.Day())
	require.Equal(t, 3, bars[2].Timestamp.Day())
}
