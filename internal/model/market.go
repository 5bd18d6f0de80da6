package model

import "time"

// Series names carried by a store.
const (
	SeriesPrice       = "price"
	SeriesMVRV        = "mvrv"
	SeriesSTHMVRV     = "sth_mvrv"
	SeriesLTHMVRV     = "lth_mvrv"
	SeriesLTHSTHRatio = "lth_sth_ratio"
	SeriesRSI         = "rsi"
)

// PricePoint is a single daily observation from the ingestion source.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayFromMillis converts an epoch-millisecond timestamp to its UTC calendar day.
func DayFromMillis(ms int64) time.Time {
	return Day(time.UnixMilli(ms))
}
