package indicator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"SVMonit/internal/model"
)

// FormulaSet parameterises the synthetic on-chain placeholders. Phases run
// linearly from 0 to the given span across the index range.
type FormulaSet struct {
	Name string `yaml:"name"`

	MVRVBase     float64 `yaml:"mvrv_base"`
	MVRVSpan     float64 `yaml:"mvrv_span"`
	MVRVNoise    float64 `yaml:"mvrv_noise"`
	CohortOffset float64 `yaml:"cohort_offset"`
	RatioBase    float64 `yaml:"ratio_base"`
	RatioSpan    float64 `yaml:"ratio_span"`
	RatioNoise   float64 `yaml:"ratio_noise"`
	RSIBase      float64 `yaml:"rsi_base"`
	RSIAmplitude float64 `yaml:"rsi_amplitude"`
	RSISpan      float64 `yaml:"rsi_span"`
}

// DefaultFormula is the canonical formula set: rsi covers one full sine period.
var DefaultFormula = FormulaSet{
	Name:         "default",
	MVRVBase:     2,
	MVRVSpan:     20,
	MVRVNoise:    0.1,
	CohortOffset: 0.3,
	RatioBase:    5,
	RatioSpan:    15,
	RatioNoise:   0.2,
	RSIBase:      50,
	RSIAmplitude: 10,
	RSISpan:      2 * math.Pi,
}

// LiveFormula matches the live dashboard, whose rsi phase runs to 12.56.
var LiveFormula = func() FormulaSet {
	f := DefaultFormula
	f.Name = "live"
	f.RSISpan = 12.56
	return f
}()

// FormulaByName resolves a preset formula set.
func FormulaByName(name string) (FormulaSet, error) {
	switch name {
	case "", DefaultFormula.Name:
		return DefaultFormula, nil
	case LiveFormula.Name:
		return LiveFormula, nil
	default:
		return FormulaSet{}, fmt.Errorf("unknown indicator formula %q", name)
	}
}

// SyntheticSource generates placeholder on-chain indicators from closed-form
// signals plus Gaussian noise drawn from Rand.
type SyntheticSource struct {
	Formula FormulaSet
	Rand    *rand.Rand
}

// NewSyntheticSource creates a source with a deterministic random stream for
// the given seed. A zero seed draws a fresh one.
func NewSyntheticSource(formula FormulaSet, seed uint64) *SyntheticSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &SyntheticSource{
		Formula: formula,
		Rand:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SyntheticSource) Name() string { return "synthetic/" + s.Formula.Name }

// Indicators fills mvrv, its cohort variants, the lth/sth ratio and rsi.
// All mvrv noise is drawn before any ratio noise.
func (s *SyntheticSource) Indicators(dates []time.Time, _ []float64) (map[string][]float64, error) {
	n := len(dates)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d points", model.ErrInsufficientData, n)
	}
	f := s.Formula
	r := s.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	mvrvPhase := linspace(f.MVRVSpan, n)
	ratioPhase := linspace(f.RatioSpan, n)
	rsiPhase := linspace(f.RSISpan, n)

	mvrv := make([]float64, n)
	sth := make([]float64, n)
	lth := make([]float64, n)
	ratio := make([]float64, n)
	rsi := make([]float64, n)

	for i := range mvrv {
		mvrv[i] = f.MVRVBase + math.Sin(mvrvPhase[i]) + r.NormFloat64()*f.MVRVNoise
		sth[i] = mvrv[i] - f.CohortOffset
		lth[i] = mvrv[i] + f.CohortOffset
	}
	for i := range ratio {
		ratio[i] = f.RatioBase + math.Cos(ratioPhase[i]) + r.NormFloat64()*f.RatioNoise
	}
	for i := range rsi {
		rsi[i] = f.RSIBase + f.RSIAmplitude*math.Sin(rsiPhase[i])
	}

	return map[string][]float64{
		model.SeriesMVRV:        mvrv,
		model.SeriesSTHMVRV:     sth,
		model.SeriesLTHMVRV:     lth,
		model.SeriesLTHSTHRatio: ratio,
		model.SeriesRSI:         rsi,
	}, nil
}

// linspace returns n evenly spaced values from 0 to span inclusive.
func linspace(span float64, n int) []float64 {
	out := make([]float64, n)
	step := span / float64(n-1)
	for i := range out {
		out[i] = step * float64(i)
	}
	out[n-1] = span
	return out
}
