package model

import "time"

// WindowSummary holds descriptive statistics of the price inside a selected window.
type WindowSummary struct {
	From      time.Time
	To        time.Time
	Points    int
	First     float64
	Last      float64
	High      float64
	Low       float64
	ChangePct float64
	SMA       float64
	SMAPeriod int
	RSI       float64
	Position  float64 // 0.0 ~ 1.0 within [Low, High]

	// Latest indicator values at To, keyed by series name.
	Indicators map[string]float64
}
