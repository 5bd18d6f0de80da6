package recorder

import "SVMonit/internal/model"

// Recorder keeps the most recent ingested price history per source so the
// pipeline can start when the upstream API is unavailable.
type Recorder interface {
	RecordPrices(source string, points []model.PricePoint) error
	LoadPrices(source string) ([]model.PricePoint, error)
	Close() error
}
