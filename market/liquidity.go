package market

import "math"

// minKappa is the positive floor for the decay parameter; values at or below
// zero would blow up the spread formula downstream.
const minKappa = 1e-6

// KappaEstimator models the fill-intensity decay lambda(delta) = A*exp(-k*delta):
// resting orders execute faster the closer they sit to the fair price.
// It either holds kappa at the configured initial value or re-fits it from
// observed depth each tick.
type KappaEstimator struct {
	initial     float64
	depthLevels int
	refit       bool
}

// NewKappaEstimator creates an estimator. When refit is false Estimate always
// returns the initial value.
func NewKappaEstimator(initial float64, depthLevels int, refit bool) *KappaEstimator {
	if initial < minKappa {
		initial = minKappa
	}
	if depthLevels <= 0 {
		depthLevels = 1
	}
	return &KappaEstimator{initial: initial, depthLevels: depthLevels, refit: refit}
}

// Estimate returns the current kappa, always strictly positive.
func (k *KappaEstimator) Estimate(snap Snapshot) float64 {
	if !k.refit || !snap.Valid() {
		return k.initial
	}

	mid := snap.Mid()
	if mid <= 0 {
		return k.initial
	}

	// Log-linear fit of level quantity against distance from mid:
	// ln(q) = ln(A) - k*delta, so kappa is the negated slope.
	var xs, ys []float64
	collect := func(levels []Level) {
		for i, lvl := range levels {
			if i >= k.depthLevels {
				break
			}
			if lvl.Qty <= 0 {
				continue
			}
			delta := math.Abs(lvl.Price - mid)
			if delta <= 0 {
				continue
			}
			xs = append(xs, delta)
			ys = append(ys, math.Log(lvl.Qty))
		}
	}
	collect(snap.Bids)
	collect(snap.Asks)

	if len(xs) < 3 {
		return k.initial
	}

	slope, ok := leastSquaresSlope(xs, ys)
	if !ok {
		return k.initial
	}
	kappa := -slope
	if kappa < minKappa || math.IsNaN(kappa) || math.IsInf(kappa, 0) {
		return k.initial
	}
	return kappa
}

func leastSquaresSlope(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denom, true
}
