package recorder

import "SVMonit/internal/model"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPrices(_ string, _ []model.PricePoint) error { return nil }
func (n *NoopRecorder) LoadPrices(_ string) ([]model.PricePoint, error)   { return nil, nil }
func (n *NoopRecorder) Close() error                                      { return nil }
