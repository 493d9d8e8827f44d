package financequery_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"marketdata/internal/model"
	"marketdata/internal/provider"
	"marketdata/internal/provider/financequery"
)

// jsonResponse wraps v into a 200 response body.
func jsonResponse(t *testing.T, v any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(v))
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(buffer),
	}
}

func newAdapter(httpClient *MockDoer) *financequery.Adapter {
	return financequery.NewAdapter(financequery.NewClient(financequery.WithHTTPClient(httpClient)))
}

func TestAdapterGetQuote(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method with one detailed quote row.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, []map[string]any{{
				"symbol":        "aapl",
				"name":          "Apple Inc.",
				"price":         "145.00",
				"change":        "+1.00",
				"percentChange": "+0.69%",
				"marketCap":     "2.5T",
				"open":          "144.20",
				"high":          "146.10",
				"low":           "143.90",
				"volume":        int64(53_000_000),
			}}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch the quote.
	quote, err := adapter.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	// Assert: display strings become canonical numerics.
	require.Equal(t, "AAPL", quote.Symbol)
	require.Equal(t, "145", quote.Price.String())
	require.NotNil(t, quote.Change)
	require.Equal(t, "1", quote.Change.String())
	require.NotNil(t, quote.ChangePercent)
	require.Equal(t, "0.69", quote.ChangePercent.String())
	require.NotNil(t, quote.MarketCap)
	require.Equal(t, "2500000000000", quote.MarketCap.String())
	require.NotNil(t, quote.Volume)
	require.EqualValues(t, 53_000_000, *quote.Volume)
	require.Equal(t, "financequery", quote.Provider)
}

func TestAdapterGetQuote_EmptyPayload(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method with an empty list.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, []map[string]any{}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch the quote.
	_, err := adapter.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)

	// Assert: a structurally valid but empty payload is a format error.
	require.Equal(t, provider.KindFormat, provider.KindOf(err))
}

func TestAdapterGetHistorical_SortsAscending(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method; map iteration order is random, the
	// adapter must sort regardless.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/historical", req.URL.Path)
			require.Equal(t, "1mo", req.URL.Query().Get("range"))
			require.Equal(t, "1d", req.URL.Query().Get("interval"))

			return jsonResponse(t, map[string]any{
				"2024-01-03": map[string]any{"open": 3.0, "high": 3.5, "low": 2.9, "close": 3.2, "volume": 30},
				"2024-01-01": map[string]any{"open": 1.0, "high": 1.5, "low": 0.9, "close": 1.2, "volume": 10},
				"2024-01-02": map[string]any{"open": 2.0, "high": 2.5, "low": 1.9, "close": 2.2, "volume": 20},
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch bars.
	bars, err := adapter.GetHistorical(context.Background(), "AAPL", model.Range1M, model.Interval1D)
	require.NoError(t, err)

	// Assert: bars come out oldest first.
	require.Len(t, bars, 3)
	require.True(t, bars[0].Timestamp.Before(bars[1].Timestamp))
	require.True(t, bars[1].Timestamp.Before(bars[2].Timestamp))
	require.Equal(t, "1.2", bars[0].Close.String())
	require.Equal(t, "3.2", bars[2].Close.String())
}

func TestAdapterGetMarketMovers(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/gainers", req.URL.Path)
			require.Equal(t, "25", req.URL.Query().Get("limit"))

			return jsonResponse(t, []map[string]any{
				{"symbol": "NVDA", "name": "NVIDIA", "price": "131.26", "change": "+5.55", "percentChange": "+4.42%"},
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch gainers.
	movers, err := adapter.GetMarketMovers(context.Background(), model.MoverGainers, 25)
	require.NoError(t, err)

	// Assert: percent strings are parsed.
	require.Len(t, movers, 1)
	require.Equal(t, "NVDA", movers[0].Symbol)
	require.Equal(t, "4.42", movers[0].ChangePercent.String())
}

func TestAdapterGetMarketMovers_TrimsOverDelivery(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method with more rows than the requested
	// list size.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			rows := make([]map[string]any, 0, 30)
			for i := 0; i < 30; i++ {
				rows = append(rows, map[string]any{
					"symbol":        fmt.Sprintf("SYM%02d", i),
					"name":          fmt.Sprintf("Company %d", i),
					"price":         "10.00",
					"change":        "+0.10",
					"percentChange": "+1.00%",
				})
			}
			return jsonResponse(t, rows), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch gainers with a limit of 25.
	movers, err := adapter.GetMarketMovers(context.Background(), model.MoverGainers, 25)
	require.NoError(t, err)

	// Assert: the list is trimmed to the limit, keeping upstream order.
	require.Len(t, movers, 25)
	require.Equal(t, "SYM00", movers[0].Symbol)
	require.Equal(t, "SYM24", movers[24].Symbol)
}

func TestAdapterGetHistorical_Idempotent(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method to serve the same map-shaped payload
	// twice; map iteration order differs between decodes.
	payload := map[string]any{
		"2024-01-03": map[string]any{"open": 3.0, "high": 3.5, "low": 2.9, "close": 3.2, "volume": 30},
		"2024-01-01": map[string]any{"open": 1.0, "high": 1.5, "low": 0.9, "close": 1.2, "volume": 10},
		"2024-01-02": map[string]any{"open": 2.0, "high": 2.5, "low": 1.9, "close": 2.2, "volume": 20},
	}
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, payload), nil
		}).
		Times(2)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: map the same payload twice.
	first, err := adapter.GetHistorical(context.Background(), "AAPL", model.Range1M, model.Interval1D)
	require.NoError(t, err)
	second, err := adapter.GetHistorical(context.Background(), "AAPL", model.Range1M, model.Interval1D)
	require.NoError(t, err)

	// Assert: both mappings are identical.
	require.Equal(t, first, second)
}

func TestAdapterGetNews_KeepsPublishedTimeVerbatim(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, []map[string]any{
				{"title": "Apple unveils", "link": "https://example.com/a", "source": "Reuters", "time": "3 hours ago"},
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch news.
	articles, err := adapter.GetNews(context.Background(), "AAPL")
	require.NoError(t, err)

	// Assert: the relative display time survives untouched.
	require.Len(t, articles, 1)
	require.Equal(t, "3 hours ago", articles[0].PublishedTime)
}

func TestAdapterGetSectorPerformance_AllSectors(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/sectors", req.URL.Path)

			return jsonResponse(t, []map[string]any{{
				"sector":          "Technology",
				"dayReturn":       "+0.97%",
				"ytdReturn":       "+14.80%",
				"yearReturn":      "+32.46%",
				"threeYearReturn": "+66.92%",
				"fiveYearReturn":  "+179.83%",
			}}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch all sectors.
	sectors, err := adapter.GetSectorPerformance(context.Background(), "")
	require.NoError(t, err)

	// Assert: returns are comparable decimals, not display strings.
	require.Len(t, sectors, 1)
	require.Equal(t, "Technology", sectors[0].Sector)
	require.Equal(t, "14.8", sectors[0].YTDReturn.String())
	require.Equal(t, "179.83", sectors[0].FiveYearReturn.String())
}

func TestAdapterGetSectorPerformance_SingleSymbol(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/sectors/symbol/AAPL", req.URL.Path)

			return jsonResponse(t, map[string]any{
				"sector":          "Technology",
				"dayReturn":       "-0.10%",
				"ytdReturn":       "+14.80%",
				"yearReturn":      "+32.46%",
				"threeYearReturn": "+66.92%",
				"fiveYearReturn":  "+179.83%",
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch the symbol's sector.
	sectors, err := adapter.GetSectorPerformance(context.Background(), "AAPL")
	require.NoError(t, err)

	// Assert: one sector, negative return preserved.
	require.Len(t, sectors, 1)
	require.Equal(t, "-0.1", sectors[0].DayReturn.String())
}

func TestAdapterGetMarketHours(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/hours", req.URL.Path)

			return jsonResponse(t, map[string]any{
				"status": "Closed", "reason": "Weekend", "timestamp": "May 18, 17:06 PM EDT",
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch market hours.
	hours, err := adapter.GetMarketHours(context.Background())
	require.NoError(t, err)

	// Assert: status strings pass through verbatim.
	require.Equal(t, "Closed", hours.Status)
	require.Equal(t, "Weekend", hours.Reason)
}
