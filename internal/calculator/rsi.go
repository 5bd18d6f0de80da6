package calculator

import (
	"errors"

	"SVMonit/internal/indicator"
)

// CalculateRSI returns the latest Wilder RSI over the given period.
// Requires at least period+1 values. Returns 50.0 if data is insufficient.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return 50.0, nil // default when data insufficient
	}
	rsi := indicator.RealisedRSI(closes, period)
	return rsi[len(rsi)-1], nil
}
