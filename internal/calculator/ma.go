package calculator

import "errors"

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// TrailingSMA averages up to period trailing values, shrinking the period to
// the available data. It returns the period actually used.
func TrailingSMA(values []float64, period int) (float64, int, error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	if period > len(values) {
		period = len(values)
	}
	sma, err := CalculateSMA(values, period)
	return sma, period, err
}
