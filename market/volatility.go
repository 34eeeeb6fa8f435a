package market

import "math"

// VolatilityCalculator keeps a rolling window of fair prices and reports the
// standard deviation over the window as the short-horizon volatility estimate.
type VolatilityCalculator struct {
	window int
	prices []float64
}

// NewVolatilityCalculator creates a calculator over a rolling window of
// windowSize prices.
func NewVolatilityCalculator(windowSize int) *VolatilityCalculator {
	if windowSize < 2 {
		windowSize = 2
	}
	return &VolatilityCalculator{
		window: windowSize,
		prices: make([]float64, 0, windowSize),
	}
}

// AddPrice appends a price sample, evicting the oldest once the window is full.
func (v *VolatilityCalculator) AddPrice(price float64) {
	if len(v.prices) >= v.window {
		v.prices = v.prices[1:]
	}
	v.prices = append(v.prices, price)
}

// StdDev returns the standard deviation of the windowed prices,
// or 0 with fewer than two samples.
func (v *VolatilityCalculator) StdDev() float64 {
	n := len(v.prices)
	if n < 2 {
		return 0
	}

	sum := 0.0
	for _, p := range v.prices {
		sum += p
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, p := range v.prices {
		diff := p - mean
		variance += diff * diff
	}
	variance /= float64(n)

	return math.Sqrt(variance)
}

// IsReady reports whether enough samples exist for a meaningful estimate.
func (v *VolatilityCalculator) IsReady() bool {
	return len(v.prices) >= 2
}

// Reset drops all samples. Used on engine restart only.
func (v *VolatilityCalculator) Reset() {
	v.prices = v.prices[:0]
}
