package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"SVMonit/internal/model"
	"SVMonit/internal/transport"
)

// DefaultCoinGeckoURL is the public CoinGecko API root.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoFetcher implements Fetcher using the CoinGecko market_chart endpoint.
type CoinGeckoFetcher struct {
	BaseURL    string
	APIKey     string
	CoinID     string
	VsCurrency string
	Client     *http.Client
}

// NewCoinGeckoFetcher creates a fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, apiKey, coinID, vsCurrency, proxyURL string) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGeckoFetcher{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		CoinID:     coinID,
		VsCurrency: vsCurrency,
		Client:     transport.NewHTTPClient(proxyURL, 30*time.Second),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// marketChart is the response of /coins/{id}/market_chart. Prices are
// [epoch-millis, price] pairs.
type marketChart struct {
	Prices *[][]any `json:"prices"`
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (f *CoinGeckoFetcher) FetchPriceHistory(ctx context.Context, days int) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("vs_currency", f.VsCurrency)
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")
	u := fmt.Sprintf("%s/coins/%s/market_chart?%s", f.BaseURL, url.PathEscape(f.CoinID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("coingecko decode: %w", err)
	}
	if chart.Prices == nil {
		return nil, fmt.Errorf("coingecko: unexpected response: %s", string(body))
	}

	points := make([]model.PricePoint, 0, len(*chart.Prices))
	for i, pair := range *chart.Prices {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: coingecko price entry %d has %d fields", model.ErrInvalidSeries, i, len(pair))
		}
		ts, ok := toFloat(pair[0])
		if !ok {
			return nil, fmt.Errorf("%w: coingecko timestamp at entry %d is not numeric", model.ErrInvalidSeries, i)
		}
		price, ok := toFloat(pair[1])
		if !ok {
			return nil, fmt.Errorf("%w: coingecko price at entry %d is not numeric", model.ErrInvalidSeries, i)
		}
		points = append(points, model.PricePoint{Date: time.UnixMilli(int64(ts)).UTC(), Price: price})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("coingecko: no data returned")
	}
	// The daily feed ends with a live quote that can share a day with the last close.
	return dailyClose(points), nil
}
