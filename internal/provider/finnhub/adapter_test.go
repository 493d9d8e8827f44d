package finnhub_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"marketdata/internal/model"
	"marketdata/internal/provider"
	"marketdata/internal/provider/finnhub"
)

func jsonResponse(t *testing.T, v any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(v))
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(buffer),
	}
}

func newAdapter(httpClient *MockDoer) *finnhub.Adapter {
	return finnhub.NewAdapter(finnhub.NewClient("test-key", finnhub.WithHTTPClient(httpClient)))
}

func TestAdapterGetQuote(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method; the key must ride in the header.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/quote", req.URL.Path)
			require.Equal(t, "AAPL", req.URL.Query().Get("symbol"))
			require.Equal(t, "test-key", req.Header.Get("X-Finnhub-Token"))
			require.Empty(t, req.URL.Query().Get("token"))

			return jsonResponse(t, map[string]any{
				"c": 145.0, "d": 1.0, "dp": 0.69, "h": 146.1, "l": 143.9,
				"o": 144.2, "pc": 144.0, "t": 1714742400,
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch the quote.
	quote, err := adapter.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	// Assert: fields map onto the canonical quote.
	require.Equal(t, "AAPL", quote.Symbol)
	require.Equal(t, "145", quote.Price.String())
	require.NotNil(t, quote.PreviousClose)
	require.Equal(t, "144", quote.PreviousClose.String())
	require.Equal(t, "finnhub", quote.Provider)
}

func TestAdapterGetQuote_UnknownSymbol(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method; unknown symbols answer all zeros.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, map[string]any{
				"c": 0, "d": 0, "dp": 0, "h": 0, "l": 0, "o": 0, "pc": 0, "t": 0,
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch the quote.
	_, err := adapter.GetQuote(context.Background(), "NOPE")
	require.Error(t, err)

	// Assert: the zero payload must not pass as a real quote.
	require.Equal(t, provider.KindFormat, provider.KindOf(err))
}

func TestAdapterGetCompanyProfile_ScalesMarketCap(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method; market cap arrives in millions.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/stock/profile2", req.URL.Path)

			return jsonResponse(t, map[string]any{
				"country": "US", "currency": "USD", "exchange": "NASDAQ NMS - GLOBAL MARKET",
				"finnhubIndustry": "Technology", "marketCapitalization": 2500000.0,
				"name": "Apple Inc", "ticker": "AAPL", "weburl": "https://www.apple.com/",
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch the profile.
	profile, err := adapter.GetCompanyProfile(context.Background(), "AAPL")
	require.NoError(t, err)

	// Assert: 2.5M millions becomes 2.5T.
	require.NotNil(t, profile.MarketCap)
	require.Equal(t, "2500000000000", profile.MarketCap.String())
	require.Equal(t, "Apple Inc", profile.Name)
	require.Equal(t, "US", profile.Country)
}

func TestAdapterGetNews(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: stub the Do method; date bounds must be present.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/company-news", req.URL.Path)
			require.NotEmpty(t, req.URL.Query().Get("from"))
			require.NotEmpty(t, req.URL.Query().Get("to"))

			return jsonResponse(t, []map[string]any{
				{
					"datetime": 1714742400, "headline": "Apple beats estimates",
					"source": "Reuters", "summary": "Strong quarter.",
					"url": "https://example.com/a", "image": "https://example.com/a.png",
				},
				{"datetime": 1714742500, "headline": "", "url": ""},
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch news.
	articles, err := adapter.GetNews(context.Background(), "AAPL")
	require.NoError(t, err)

	// Assert: the hollow row is skipped, epoch becomes RFC3339.
	require.Len(t, articles, 1)
	require.Equal(t, "Apple beats estimates", articles[0].Title)
	require.Equal(t, "2024-05-03T13:20:00Z", articles[0].PublishedTime)
	require.Equal(t, "finnhub", articles[0].Provider)
}

func TestAdapterGetEarningsTranscript(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: first call lists transcripts, second fetches by id.
	gomock.InOrder(
		httpClient.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				require.Equal(t, "/stock/transcripts/list", req.URL.Path)
				require.Equal(t, "AAPL", req.URL.Query().Get("symbol"))

				return jsonResponse(t, map[string]any{
					"symbol": "AAPL",
					"transcripts": []map[string]any{
						{"id": "AAPL_Q1_2024", "year": 2024, "quarter": 1},
						{"id": "AAPL_Q4_2023", "year": 2023, "quarter": 4},
					},
				}), nil
			}),
		httpClient.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				require.Equal(t, "/stock/transcripts", req.URL.Path)
				require.Equal(t, "AAPL_Q1_2024", req.URL.Query().Get("id"))

				return jsonResponse(t, map[string]any{
					"id": "AAPL_Q1_2024", "symbol": "AAPL", "year": 2024, "quarter": 1,
					"participant": []map[string]any{
						{"name": "Tim Cook", "role": "CEO"},
					},
					"transcript": []map[string]any{
						{"name": "Operator", "speech": []string{"Good afternoon."}},
						{"name": "Tim Cook", "speech": []string{"Thank you.", "Revenue grew."}},
					},
				}), nil
			}),
	)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: fetch the transcript.
	transcript, err := adapter.GetEarningsTranscript(context.Background(), "AAPL", model.Q1, 2024)
	require.NoError(t, err)

	// Assert: speeches flatten speaker-prefixed in order.
	require.Equal(t, "AAPL", transcript.Symbol)
	require.Equal(t, model.Q1, transcript.Quarter)
	require.Equal(t, 2024, transcript.Year)
	require.Contains(t, transcript.Transcript, "Operator: Good afternoon.")
	require.Contains(t, transcript.Transcript, "Tim Cook: Revenue grew.")
	require.Equal(t, []string{"Tim Cook (CEO)"}, transcript.Participants)
}

func TestAdapterGetEarningsTranscript_NotListed(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockDoer(ctrl)

	// Assert: the list has no match; no second call happens.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, map[string]any{
				"symbol":      "AAPL",
				"transcripts": []map[string]any{{"id": "AAPL_Q4_2023", "year": 2023, "quarter": 4}},
			}), nil
		}).
		Times(1)

	// Arrange: build the adapter.
	adapter := newAdapter(httpClient)

	// Act: ask for a quarter that is not listed.
	_, err := adapter.GetEarningsTranscript(context.Background(), "AAPL", model.Q2, 2024)
	require.Error(t, err)
	require.Equal(t, provider.KindFormat, provider.KindOf(err))
}
