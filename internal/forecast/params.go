package forecast

import "math"

// constrainStationary maps unconstrained reals to the coefficients of a
// stationary autoregressive polynomial 1 - a1 z - ... - ap z^p. Each input is
// squashed into a partial autocorrelation in (-1, 1) and expanded with the
// Durbin-Levinson recursion.
func constrainStationary(x []float64) []float64 {
	p := len(x)
	coef := make([]float64, p)
	prev := make([]float64, p)
	for k := 0; k < p; k++ {
		r := x[k] / math.Sqrt(1+x[k]*x[k])
		copy(prev, coef[:k])
		for j := 0; j < k; j++ {
			coef[j] = prev[j] - r*prev[k-1-j]
		}
		coef[k] = r
	}
	return coef
}

// unconstrainStationary inverts constrainStationary. It reports false when
// coef does not describe a stationary polynomial.
func unconstrainStationary(coef []float64) ([]float64, bool) {
	p := len(coef)
	cur := append([]float64(nil), coef...)
	x := make([]float64, p)
	for k := p - 1; k >= 0; k-- {
		r := cur[k]
		if math.IsNaN(r) || math.Abs(r) >= 1 {
			return nil, false
		}
		x[k] = r / math.Sqrt(1-r*r)
		prev := make([]float64, k)
		for j := 0; j < k; j++ {
			prev[j] = (cur[j] + r*cur[k-1-j]) / (1 - r*r)
		}
		cur = prev
	}
	return x, true
}

// Moving-average coefficients use the same transform on the negated
// polynomial, which keeps 1 + b1 z + ... + bq z^q invertible.
func constrainInvertible(x []float64) []float64 {
	return negate(constrainStationary(x))
}

func unconstrainInvertible(coef []float64) ([]float64, bool) {
	return unconstrainStationary(negate(coef))
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}
