package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSeries    = errors.New("invalid series")
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownInterval  = errors.New("unknown interval")
	ErrModelFit         = errors.New("model fit failed")
	ErrInvalidSteps     = errors.New("invalid forecast steps")
)

// IntervalError reports a selection token outside the supported vocabulary.
type IntervalError struct {
	Token string
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownInterval, e.Token)
}

func (e *IntervalError) Unwrap() error { return ErrUnknownInterval }

// FitError reports a forecast model that could not be fitted.
type FitError struct {
	Observations int
	Order        Order
	Err          error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("%v: ARIMA(%d,%d,%d) on %d observations: %v",
		ErrModelFit, e.Order.P, e.Order.D, e.Order.Q, e.Observations, e.Err)
}

func (e *FitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrModelFit}
	}
	return []error{ErrModelFit, e.Err}
}
