package calculator

import (
	"errors"
	"math"
)

// CalculateRange returns the high and low of values.
func CalculateRange(values []float64) (high, low float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, v := range values {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return high, low, nil
}

// CalculatePosition returns where current sits within [low, high] (0.0~1.0).
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// CalculateChangePct returns the percentage change from first to last.
func CalculateChangePct(first, last float64) (float64, error) {
	if first == 0 {
		return 0, errors.New("first value is zero")
	}
	return (last - first) / first * 100, nil
}
