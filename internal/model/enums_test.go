package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdata/internal/model"
)

func TestParseRange(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"1d", "5d", "1mo", "3mo", "6mo", "ytd", "1y", "5y", "max"} {
		got, err := model.ParseRange(in)
		require.NoError(t, err, in)
		require.Equal(t, model.Range(in), got)
	}

	_, err := model.ParseRange("2w")
	require.Error(t, err)
}

func TestParseInterval(t *testing.T) {
	t.Parallel()

	got, err := model.ParseInterval("1wk")
	require.NoError(t, err)
	require.Equal(t, model.Interval1W, got)

	_, err = model.ParseInterval("2h")
	require.Error(t, err)
}

func TestIntervalIntraday(t *testing.T) {
	t.Parallel()

	require.True(t, model.Interval1Min.Intraday())
	require.True(t, model.Interval1H.Intraday())
	require.False(t, model.Interval1D.Intraday())
	require.False(t, model.Interval1M.Intraday())
}

func TestIntervalBarTime(t *testing.T) {
	t.Parallel()

	sessionOpen := time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC)

	// Intraday bars keep the full time.
	require.Equal(t, sessionOpen, model.Interval1H.BarTime(sessionOpen))
	require.Equal(t, sessionOpen, model.Interval5Min.BarTime(sessionOpen))

	// Daily and coarser bars land on midnight UTC.
	midnight := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, midnight, model.Interval1D.BarTime(sessionOpen))
	require.Equal(t, midnight, model.Interval1W.BarTime(sessionOpen))
	require.Equal(t, midnight, model.Interval1M.BarTime(sessionOpen))
}

func TestValidMoverLimit(t *testing.T) {
	t.Parallel()

	require.True(t, model.ValidMoverLimit(25))
	require.True(t, model.ValidMoverLimit(50))
	require.True(t, model.ValidMoverLimit(100))
	require.False(t, model.ValidMoverLimit(30))
	require.False(t, model.ValidMoverLimit(0))
}

func TestParseQuarter(t *testing.T) {
	t.Parallel()

	q, err := model.ParseQuarter("Q3")
	require.NoError(t, err)
	require.Equal(t, 3, q.Number())

	_, err = model.ParseQuarter("Q7")
	require.Error(t, err)
}

func TestParseStatementKindAndFrequency(t *testing.T) {
	t.Parallel()

	kind, err := model.ParseStatementKind("cashflow")
	require.NoError(t, err)
	require.Equal(t, model.StatementCashflow, kind)

	_, err = model.ParseStatementKind("equity")
	require.Error(t, err)

	freq, err := model.ParseFrequency("quarterly")
	require.NoError(t, err)
	require.Equal(t, model.FrequencyQuarterly, freq)

	_, err = model.ParseFrequency("monthly")
	require.Error(t, err)
}
