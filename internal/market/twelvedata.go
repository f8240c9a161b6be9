// Package market provides the market/economic data clients that feed
// display-layer charts. Both clients honor the shared result taxonomy:
// they never leak raw transport errors.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jknam3036-svg/smart-news-engine/internal/result"
)

const defaultTwelveDataURL = "https://api.twelvedata.com"

// Quote is a single symbol snapshot from TwelveData.
type Quote struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Currency      string `json:"currency"`
	Open          string `json:"open"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
}

// SeriesPoint is one bar of a time series.
type SeriesPoint struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

// Series is an ordered time series for a symbol.
type Series struct {
	Symbol   string        `json:"symbol"`
	Interval string        `json:"interval"`
	Values   []SeriesPoint `json:"values"`
}

// TwelveData is the quote/time-series client.
type TwelveData struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTwelveData creates a client with a bounded request timeout.
func NewTwelveData(apiKey string) *TwelveData {
	return &TwelveData{
		apiKey:  apiKey,
		baseURL: defaultTwelveDataURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// GetQuote fetches the latest quote for a symbol.
func (t *TwelveData) GetQuote(ctx context.Context, symbol string) result.Result[Quote] {
	if t.apiKey == "" {
		return result.Fail[Quote](result.Errorf(result.APIKeyInvalid, "twelvedata api key not configured"))
	}
	url := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s", t.baseURL, symbol, t.apiKey)

	body, rerr := t.fetch(ctx, url, symbol)
	if rerr != nil {
		return result.Fail[Quote](rerr)
	}

	var quote Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return result.Fail[Quote](&result.Error{
			Code:    result.ParseError,
			Message: "decode quote response",
			Details: err.Error(),
		})
	}
	return result.Ok(quote)
}

// GetTimeSeries fetches bars for a symbol at the given interval (e.g. "1day").
func (t *TwelveData) GetTimeSeries(ctx context.Context, symbol, interval string) result.Result[Series] {
	if t.apiKey == "" {
		return result.Fail[Series](result.Errorf(result.APIKeyInvalid, "twelvedata api key not configured"))
	}
	url := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&apikey=%s", t.baseURL, symbol, interval, t.apiKey)

	body, rerr := t.fetch(ctx, url, symbol)
	if rerr != nil {
		return result.Fail[Series](rerr)
	}

	var raw struct {
		Meta struct {
			Symbol   string `json:"symbol"`
			Interval string `json:"interval"`
		} `json:"meta"`
		Values []SeriesPoint `json:"values"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return result.Fail[Series](&result.Error{
			Code:    result.ParseError,
			Message: "decode time series response",
			Details: err.Error(),
		})
	}
	return result.Ok(Series{Symbol: raw.Meta.Symbol, Interval: raw.Meta.Interval, Values: raw.Values})
}

// fetch performs the request and classifies transport/status/body-level
// failures. TwelveData reports some errors inside a 200 body as
// {"code": ..., "message": ...}, so the body is sniffed too.
func (t *TwelveData) fetch(ctx context.Context, url, symbol string) ([]byte, *result.Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &result.Error{Code: result.Unknown, Message: "create request", Details: err.Error()}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &result.Error{Code: result.NetworkError, Message: "request failed", Details: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &result.Error{Code: result.NetworkError, Message: "read response", Details: err.Error()}
	}
	if len(body) == 0 {
		return nil, result.Errorf(result.NetworkError, "empty response body for %s", symbol)
	}

	if resp.StatusCode != http.StatusOK {
		code := result.FromStatus(resp.StatusCode)
		return nil, &result.Error{
			Code:    code,
			Message: fmt.Sprintf("http %d for %s", resp.StatusCode, symbol),
			Details: string(body),
		}
	}

	if apiErr := sniffBodyError(body, symbol); apiErr != nil {
		return nil, apiErr
	}
	return body, nil
}

// sniffBodyError detects provider errors embedded in 200 responses.
func sniffBodyError(body []byte, symbol string) *result.Error {
	s := string(body)
	if !strings.Contains(s, `"code"`) || !strings.Contains(s, `"message"`) {
		return nil
	}
	var apiErr struct {
		Status  string `json:"status"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return nil
	}

	lower := strings.ToLower(apiErr.Message)
	code := result.Unknown
	switch {
	case strings.Contains(lower, "limit"):
		code = result.RateLimitExceeded
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "not found"):
		code = result.InvalidSymbol
	case strings.Contains(lower, "api key"):
		code = result.APIKeyInvalid
	}
	return &result.Error{
		Code:    code,
		Message: fmt.Sprintf("provider error for %s: %s", symbol, apiErr.Message),
		Details: s,
	}
}
