package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jknam3036-svg/smart-news-engine/internal/result"
)

func testTwelveData(handler http.HandlerFunc) (*TwelveData, *httptest.Server) {
	srv := httptest.NewServer(handler)
	td := NewTwelveData("test-key")
	td.baseURL = srv.URL
	return td, srv
}

func TestGetQuote(t *testing.T) {
	td, srv := testTwelveData(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"AAPL","name":"Apple Inc","close":"189.30","percent_change":"1.2"}`))
	})
	defer srv.Close()

	res := td.GetQuote(context.Background(), "AAPL")
	require.True(t, res.IsSuccess(), "err: %v", res.Err)
	assert.Equal(t, "AAPL", res.Data.Symbol)
	assert.Equal(t, "189.30", res.Data.Close)
}

func TestGetQuoteNoKey(t *testing.T) {
	td := NewTwelveData("")
	res := td.GetQuote(context.Background(), "AAPL")
	require.False(t, res.IsSuccess())
	assert.Equal(t, result.APIKeyInvalid, res.Err.Code)
}

func TestStatusTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   result.Code
	}{
		{"rate limited", 429, result.RateLimitExceeded},
		{"bad key", 401, result.APIKeyInvalid},
		{"forbidden", 403, result.APIKeyInvalid},
		{"unknown symbol", 404, result.InvalidSymbol},
		{"server error", 500, result.NetworkError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			td, srv := testTwelveData(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"message":"error"}`))
			})
			defer srv.Close()

			res := td.GetQuote(context.Background(), "ZZZZ")
			require.False(t, res.IsSuccess())
			assert.Equal(t, tc.want, res.Err.Code)
		})
	}
}

func TestEmptyBodyIsNetworkError(t *testing.T) {
	td, srv := testTwelveData(func(w http.ResponseWriter, r *http.Request) {
		// 200 with nothing in it
	})
	defer srv.Close()

	res := td.GetQuote(context.Background(), "AAPL")
	require.False(t, res.IsSuccess())
	assert.Equal(t, result.NetworkError, res.Err.Code)
}

func TestUnreachableIsNetworkError(t *testing.T) {
	td := NewTwelveData("test-key")
	td.baseURL = "http://127.0.0.1:1" // nothing listens here

	res := td.GetQuote(context.Background(), "AAPL")
	require.False(t, res.IsSuccess())
	assert.Equal(t, result.NetworkError, res.Err.Code)
}

func TestEmbeddedBodyErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want result.Code
	}{
		{
			"rate limit in 200 body",
			`{"code":429,"message":"You have run out of API credits for the current minute","status":"error"}`,
			result.RateLimitExceeded,
		},
		{
			"invalid symbol in 200 body",
			`{"code":400,"message":"symbol is invalid or not found","status":"error"}`,
			result.InvalidSymbol,
		},
		{
			"bad api key in 200 body",
			`{"code":401,"message":"api key is incorrect","status":"error"}`,
			result.APIKeyInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			td, srv := testTwelveData(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			defer srv.Close()

			res := td.GetQuote(context.Background(), "AAPL")
			require.False(t, res.IsSuccess())
			assert.Equal(t, tc.want, res.Err.Code)
		})
	}
}

func TestGetTimeSeries(t *testing.T) {
	td, srv := testTwelveData(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/time_series", r.URL.Path)
		assert.Equal(t, "1day", r.URL.Query().Get("interval"))
		w.Write([]byte(`{
			"meta": {"symbol": "AAPL", "interval": "1day"},
			"values": [
				{"datetime": "2024-03-01", "open": "180", "close": "182", "volume": "100"},
				{"datetime": "2024-02-29", "open": "178", "close": "180", "volume": "90"}
			]
		}`))
	})
	defer srv.Close()

	res := td.GetTimeSeries(context.Background(), "AAPL", "1day")
	require.True(t, res.IsSuccess(), "err: %v", res.Err)
	assert.Equal(t, "AAPL", res.Data.Symbol)
	assert.Len(t, res.Data.Values, 2)
}

func TestGetTimeSeriesMalformedJSON(t *testing.T) {
	td, srv := testTwelveData(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": {`))
	})
	defer srv.Close()

	res := td.GetTimeSeries(context.Background(), "AAPL", "1day")
	require.False(t, res.IsSuccess())
	assert.Equal(t, result.ParseError, res.Err.Code)
}
