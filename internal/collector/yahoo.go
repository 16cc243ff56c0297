// Package collector fetches intraday bars from Yahoo Finance and persists
// them for pattern scanning.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"cupscan/internal/errors"
	"cupscan/internal/models"
)

// DefaultBaseURL is the public Yahoo Finance chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches OHLCV bars from the Yahoo Finance chart API.
type YahooClient struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooClient creates a Yahoo Finance client with the given per-request
// timeout.
func NewYahooClient(timeout time.Duration) *YahooClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooClient{
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// FetchBars retrieves bars for a symbol at the given interval over the
// given range, e.g. ("AAPL", "5m", "3d"). Null bars from halts and
// holidays are skipped and the result is sorted by timestamp.
func (c *YahooClient) FetchBars(ctx context.Context, symbol, interval, rng string) ([]models.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.BaseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo rejects requests without a browser-like agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, errors.NewFetchError("yahoo", symbol, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetchError("yahoo", symbol, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetchError("yahoo", symbol, resp.StatusCode,
			fmt.Errorf("unexpected status: %s", string(body)))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, errors.NewFetchError("yahoo", symbol, resp.StatusCode, err)
	}
	if chart.Chart.Error != nil {
		return nil, errors.NewFetchError("yahoo", symbol, resp.StatusCode,
			fmt.Errorf("api error: %s", chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, errors.NewDataError("bars", symbol, "no data returned", errors.ErrNoData)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errors.NewDataError("bars", symbol, "no quote data returned", errors.ErrNoData)
	}

	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		// Quote arrays can run short of the timestamp list.
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, models.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     cl,
			Volume:    int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
