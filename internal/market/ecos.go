package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jknam3036-svg/smart-news-engine/internal/result"
)

const defaultEcosURL = "https://ecos.bok.or.kr/api/StatisticSearch"

// Well-known ECOS statistic codes.
const (
	StatInterestRate = "817Y002" // daily interest rates
	StatExchangeRate = "731Y001" // daily FX rates
	StatBaseRate     = "722Y001" // monthly base rate

	ItemTreasury10Y = "010210000"
	ItemTreasury3Y  = "010200001"
	ItemCD91D       = "010502000"
	ItemCallRate    = "010101000"

	ItemUSDKRW = "0000001"
	ItemJPYKRW = "0000002"
	ItemEURKRW = "0000003"

	ItemBaseRate = "0101000"
)

// RatePoint is one observation in a statistic series.
type RatePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Ecos fetches rate/FX statistic series from the Bank of Korea ECOS API.
type Ecos struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewEcos creates a client with a bounded request timeout.
func NewEcos(apiKey string) *Ecos {
	return &Ecos{
		apiKey:  apiKey,
		baseURL: defaultEcosURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
}

// GetRateSeries fetches observations for a statistic/item pair. The
// lookback window depends on the cycle: daily pulls 10 days, monthly a
// year, quarterly two years.
func (e *Ecos) GetRateSeries(ctx context.Context, statCode, itemCode, cycle string) result.Result[[]RatePoint] {
	if e.apiKey == "" {
		return result.Fail[[]RatePoint](result.Errorf(result.APIKeyInvalid, "ecos api key not configured"))
	}

	end := e.now()
	var start time.Time
	var format string
	switch cycle {
	case "M":
		start = end.AddDate(-1, 0, 0)
		format = "200601"
	case "Q":
		start = end.AddDate(-2, 0, 0)
		format = "200601"
	default:
		cycle = "D"
		start = end.AddDate(0, 0, -10)
		format = "20060102"
	}

	// URL shape: KEY/json/kr/START_ROW/END_ROW/STAT_CODE/CYCLE/START/END/ITEM_CODE
	url := fmt.Sprintf("%s/%s/json/kr/1/100/%s/%s/%s/%s/%s",
		e.baseURL, e.apiKey, statCode, cycle,
		start.Format(format), end.Format(format), itemCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result.Fail[[]RatePoint](&result.Error{Code: result.Unknown, Message: "create request", Details: err.Error()})
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return result.Fail[[]RatePoint](&result.Error{Code: result.NetworkError, Message: "request failed", Details: err.Error()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Fail[[]RatePoint](&result.Error{Code: result.NetworkError, Message: "read response", Details: err.Error()})
	}
	if len(body) == 0 {
		return result.Fail[[]RatePoint](result.Errorf(result.NetworkError, "empty response body for %s/%s", statCode, itemCode))
	}
	if resp.StatusCode != http.StatusOK {
		return result.Fail[[]RatePoint](&result.Error{
			Code:    result.FromStatus(resp.StatusCode),
			Message: fmt.Sprintf("http %d for %s/%s", resp.StatusCode, statCode, itemCode),
			Details: string(body),
		})
	}

	var wrapper struct {
		StatisticSearch struct {
			Row []struct {
				Time      string `json:"TIME"`
				DataValue string `json:"DATA_VALUE"`
			} `json:"row"`
		} `json:"StatisticSearch"`
		Result struct {
			Code    string `json:"CODE"`
			Message string `json:"MESSAGE"`
		} `json:"RESULT"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return result.Fail[[]RatePoint](&result.Error{
			Code:    result.ParseError,
			Message: "decode ecos response",
			Details: err.Error(),
		})
	}

	// ECOS reports errors as a RESULT envelope with a 200 status.
	if wrapper.Result.Code != "" {
		code := result.Unknown
		switch wrapper.Result.Code {
		case "INFO-100": // invalid key
			code = result.APIKeyInvalid
		case "INFO-200": // no data for the requested codes
			code = result.InvalidSymbol
		}
		return result.Fail[[]RatePoint](&result.Error{
			Code:    code,
			Message: fmt.Sprintf("ecos %s: %s", wrapper.Result.Code, wrapper.Result.Message),
		})
	}

	points := make([]RatePoint, 0, len(wrapper.StatisticSearch.Row))
	for _, row := range wrapper.StatisticSearch.Row {
		v, err := strconv.ParseFloat(row.DataValue, 64)
		if err != nil {
			continue // sparse series carry empty values
		}
		points = append(points, RatePoint{Time: row.Time, Value: v})
	}
	if len(points) == 0 {
		return result.Fail[[]RatePoint](result.Errorf(result.ParseError, "no parseable observations for %s/%s", statCode, itemCode))
	}
	return result.Ok(points)
}
