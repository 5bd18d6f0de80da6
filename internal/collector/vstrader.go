package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"SVMonit/internal/model"
	"SVMonit/internal/transport"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API, taking the
// close of each daily bar as the day's price.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Symbol  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, symbol, proxyURL string) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Symbol:  symbol,
		Client:  transport.NewHTTPClient(proxyURL, 30*time.Second),
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

func (f *VsTraderFetcher) FetchPriceHistory(ctx context.Context, days int) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, f.Symbol, days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var bars []vsBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	points := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		points[i] = model.PricePoint{Date: time.Unix(b.Timestamp, 0).UTC(), Price: b.Close}
	}
	return dailyClose(points), nil
}
