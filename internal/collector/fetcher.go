package collector

import (
	"context"
	"sort"

	"SVMonit/internal/model"
)

// Fetcher retrieves a daily price history for the configured asset.
// Implementations return points in strictly increasing date order, one per day.
type Fetcher interface {
	FetchPriceHistory(ctx context.Context, days int) ([]model.PricePoint, error)
	Name() string
}

// dailyClose sorts points chronologically and keeps the last quote of each UTC day.
func dailyClose(points []model.PricePoint) []model.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		p.Date = model.Day(p.Date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
