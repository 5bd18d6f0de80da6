// Package calculator computes descriptive statistics over a selected window.
package calculator

import (
	"errors"

	"github.com/sirupsen/logrus"

	"SVMonit/internal/model"
	"SVMonit/internal/series"
)

const (
	SummarySMAPeriod = 20
	SummaryRSIPeriod = 14
)

// Summarize computes the window summary of the price series in view along
// with the latest value of every other series. Statistics that cannot be
// computed fall back to neutral values and are logged.
func Summarize(view *series.View, logger *logrus.Logger) (*model.WindowSummary, error) {
	prices, ok := view.Series(model.SeriesPrice)
	if !ok || len(prices) == 0 {
		return nil, errors.New("view has no prices")
	}
	last := prices[len(prices)-1]
	s := &model.WindowSummary{
		From:       view.First(),
		To:         view.Last(),
		Points:     len(prices),
		First:      prices[0],
		Last:       last,
		Indicators: make(map[string]float64),
	}

	s.High, s.Low, _ = CalculateRange(prices)

	if pct, err := CalculateChangePct(s.First, last); err != nil {
		logger.WithError(err).Warn("window change calculation failed")
	} else {
		s.ChangePct = pct
	}

	if sma, period, err := TrailingSMA(prices, SummarySMAPeriod); err != nil {
		logger.WithError(err).Warn("window SMA calculation failed, using last price")
		s.SMA = last
	} else {
		s.SMA, s.SMAPeriod = sma, period
	}

	// RSI needs history before a short window starts, so it runs on the
	// store prices up to the window's end.
	all := view.Store().Prices()
	if rsi, err := CalculateRSI(all[:view.Start()+view.Len()], SummaryRSIPeriod); err != nil {
		logger.WithError(err).Warn("RSI calculation failed, defaulting to 50")
		s.RSI = 50
	} else {
		s.RSI = rsi
	}

	if pos, err := CalculatePosition(last, s.High, s.Low); err != nil {
		logger.WithError(err).Warn("window position calculation failed")
		s.Position = 0.5
	} else {
		s.Position = pos
	}

	for _, name := range view.Names() {
		if name == model.SeriesPrice {
			continue
		}
		if v, ok := view.Latest(name); ok {
			s.Indicators[name] = v
		}
	}
	return s, nil
}
