package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"SVMonit/internal/model"
)

// ARIMA fits a seasonal-free ARIMA(p,d,q) model without constant by
// conditional sum of squares. Exact maximum likelihood (the statsmodels
// default) conditions on different start-up residuals, so coefficients and
// forecasts differ numerically from a statsmodels fit of the same series.
type ARIMA struct {
	Order model.Order

	// MaxEvaluations bounds the objective evaluations of the optimiser.
	// Zero means defaultMaxEvaluations.
	MaxEvaluations int
}

const defaultMaxEvaluations = 20000

// Model is a fitted ARIMA model ready to project forward.
type Model struct {
	Order        model.Order
	AR           []float64
	MA           []float64
	Sigma2       float64
	Observations int

	diffed []float64 // series after d differences
	resid  []float64 // in-sample innovations of diffed
	tails  []float64 // last value of each differencing level
}

// Fit estimates the model on y. Fitting is deterministic.
func (a ARIMA) Fit(y []float64) (*Model, error) {
	o := a.Order
	fail := func(err error) (*Model, error) {
		return nil, &model.FitError{Observations: len(y), Order: o, Err: err}
	}
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fail(errors.New("negative order"))
	}
	if len(y) < MinObservations {
		return fail(fmt.Errorf("need at least %d observations", MinObservations))
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fail(fmt.Errorf("non-finite value at index %d", i))
		}
	}

	w, tails := difference(y, o.D)
	if len(w)-o.P < o.P+o.Q+1 {
		return fail(fmt.Errorf("%d differenced observations are too few", len(w)))
	}

	scale := stat.StdDev(w, nil)
	if !(scale > 0) {
		scale = math.Max(floats.Norm(w, 1)/float64(len(w)), 1)
	}
	objective := func(x []float64) float64 {
		phi, theta := a.unpack(x)
		_, sse := css(w, phi, theta)
		return sse / (float64(len(w)-o.P) * scale * scale)
	}

	x := a.startParams(w)
	if o.P+o.Q > 0 {
		if f0 := objective(x); math.IsNaN(f0) || math.IsInf(f0, 0) {
			x = make([]float64, o.P+o.Q)
		}
		settings := &optimize.Settings{
			FuncEvaluations: a.maxEvaluations(),
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Relative:   1e-9,
				Iterations: 50,
			},
		}
		res, err := optimize.Minimize(optimize.Problem{Func: objective}, x, settings, &optimize.NelderMead{SimplexSize: 0.5})
		if res == nil {
			return fail(err)
		}
		switch res.Status {
		case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
			optimize.StepConvergence, optimize.FunctionThreshold:
		default:
			if err == nil {
				err = fmt.Errorf("optimizer did not converge: %v", res.Status)
			}
			return fail(err)
		}
		if math.IsNaN(res.F) || math.IsInf(res.F, 0) {
			return fail(errors.New("objective is not finite at the optimum"))
		}
		x = res.X
	}

	phi, theta := a.unpack(x)
	resid, sse := css(w, phi, theta)
	sigma2 := sse / float64(len(w)-o.P)
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return fail(errors.New("innovation variance is not finite"))
	}
	return &Model{
		Order:        o,
		AR:           phi,
		MA:           theta,
		Sigma2:       sigma2,
		Observations: len(y),
		diffed:       w,
		resid:        resid,
		tails:        tails,
	}, nil
}

// Predict returns point forecasts for the next steps observations.
// Future innovations are zero.
func (m *Model) Predict(steps int) []float64 {
	if steps <= 0 {
		return nil
	}
	n := len(m.diffed)
	hist := make([]float64, n, n+steps)
	copy(hist, m.diffed)
	for h := 0; h < steps; h++ {
		t := len(hist)
		var pred float64
		for i, a := range m.AR {
			pred += a * hist[t-1-i]
		}
		for j, b := range m.MA {
			if k := t - 1 - j; k >= 0 && k < n {
				pred += b * m.resid[k]
			}
		}
		hist = append(hist, pred)
	}
	return integrate(hist[n:], m.tails)
}

func (a ARIMA) maxEvaluations() int {
	if a.MaxEvaluations > 0 {
		return a.MaxEvaluations
	}
	return defaultMaxEvaluations
}

func (a ARIMA) unpack(x []float64) (phi, theta []float64) {
	return constrainStationary(x[:a.Order.P]), constrainInvertible(x[a.Order.P:])
}

// startParams derives unconstrained starting values from Hannan-Rissanen
// estimates, falling back to zeros for any part that is not usable.
func (a ARIMA) startParams(w []float64) []float64 {
	p, q := a.Order.P, a.Order.Q
	x := make([]float64, p+q)
	phi, theta, ok := hannanRissanen(w, p, q)
	if !ok {
		return x
	}
	if xp, ok := unconstrainStationary(phi); ok {
		copy(x[:p], xp)
	}
	if xq, ok := unconstrainInvertible(theta); ok {
		copy(x[p:], xq)
	}
	return x
}

// css returns the conditional residuals of w under the given coefficients,
// with pre-sample innovations set to zero, and their sum of squares from
// index len(phi) on.
func css(w, phi, theta []float64) ([]float64, float64) {
	p := len(phi)
	e := make([]float64, len(w))
	var sse float64
	for t := p; t < len(w); t++ {
		pred := 0.0
		for i, a := range phi {
			pred += a * w[t-1-i]
		}
		for j, b := range theta {
			if k := t - 1 - j; k >= 0 {
				pred += b * e[k]
			}
		}
		e[t] = w[t] - pred
		sse += e[t] * e[t]
	}
	return e, sse
}

// hannanRissanen estimates ARMA(p,q) coefficients by regressing w on its own
// lags and on the residuals of a long autoregression.
func hannanRissanen(w []float64, p, q int) (phi, theta []float64, ok bool) {
	m := len(w)
	if p+q == 0 {
		return nil, nil, true
	}
	ehat := make([]float64, m)
	k := 0
	if q > 0 {
		k = max(p+q, int(math.Ceil(2*math.Log(float64(m)))))
		if m-k < 2*k {
			k = m / 3
		}
		if k < 1 {
			return nil, nil, false
		}
		long, ok := lagRegression(w, k, nil, 0, k)
		if !ok {
			return nil, nil, false
		}
		for t := k; t < m; t++ {
			pred := 0.0
			for i, a := range long {
				pred += a * w[t-1-i]
			}
			ehat[t] = w[t] - pred
		}
	}
	start := max(p, k+q)
	beta, ok := lagRegression(w, p, ehat, q, start)
	if !ok {
		return nil, nil, false
	}
	return beta[:p], beta[p:], true
}

// lagRegression solves the least-squares regression of w[t] on
// w[t-1..t-p] and e[t-1..t-q] for t >= start.
func lagRegression(w []float64, p int, e []float64, q, start int) ([]float64, bool) {
	rows, cols := len(w)-start, p+q
	if cols == 0 || rows <= cols {
		return nil, false
	}
	A := mat.NewDense(rows, cols, nil)
	b := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		t := start + r
		for i := 0; i < p; i++ {
			A.Set(r, i, w[t-1-i])
		}
		for j := 0; j < q; j++ {
			A.Set(r, p+j, e[t-1-j])
		}
		b.SetVec(r, w[t])
	}
	var beta mat.VecDense
	if err := beta.SolveVec(A, b); err != nil {
		return nil, false
	}
	out := make([]float64, cols)
	for i := range out {
		out[i] = beta.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, false
		}
	}
	return out, true
}

// difference applies d first differences to y and returns the result with
// the last value of every intermediate level, outermost first.
func difference(y []float64, d int) ([]float64, []float64) {
	cur := append([]float64(nil), y...)
	tails := make([]float64, d)
	for k := 0; k < d; k++ {
		tails[k] = cur[len(cur)-1]
		next := make([]float64, len(cur)-1)
		for i := range next {
			next[i] = cur[i+1] - cur[i]
		}
		cur = next
	}
	return cur, tails
}

// integrate undoes difference for values that continue the differenced series.
func integrate(fc, tails []float64) []float64 {
	out := append([]float64(nil), fc...)
	for k := len(tails) - 1; k >= 0; k-- {
		acc := tails[k]
		for i := range out {
			acc += out[i]
			out[i] = acc
		}
	}
	return out
}
