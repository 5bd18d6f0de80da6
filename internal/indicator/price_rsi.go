package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"

	"SVMonit/internal/model"
)

// neutralRSI fills the points before the first full RSI period.
const neutralRSI = 50.0

// PriceRSISource wraps another source and replaces its rsi series with the
// realised Wilder RSI of the price history.
type PriceRSISource struct {
	Base   IndicatorSource
	Period int
}

func (p *PriceRSISource) Name() string {
	return fmt.Sprintf("%s+price-rsi(%d)", p.Base.Name(), p.Period)
}

func (p *PriceRSISource) Indicators(dates []time.Time, prices []float64) (map[string][]float64, error) {
	if p.Period <= 0 {
		return nil, fmt.Errorf("rsi period must be positive, got %d", p.Period)
	}
	ind, err := p.Base.Indicators(dates, prices)
	if err != nil {
		return nil, err
	}
	ind[model.SeriesRSI] = RealisedRSI(prices, p.Period)
	return ind, nil
}

// RealisedRSI returns the Wilder RSI of prices aligned index-for-index with
// the input. Points without a full period of history, and points where
// prices have not moved at all (0/0), hold the neutral 50.
func RealisedRSI(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = neutralRSI
	}
	if len(prices) <= period {
		return out
	}
	rsi := momentum.NewRsiWithPeriod[float64](period)
	values := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(prices)))
	offset := len(prices) - len(values)
	if offset < 0 {
		offset = 0
		values = values[len(values)-len(prices):]
	}
	for i, v := range values {
		if !math.IsNaN(v) {
			out[offset+i] = v
		}
	}
	return out
}
