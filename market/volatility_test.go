package market

import (
	"math"
	"testing"
)

func TestVolatilityCalculatorEmpty(t *testing.T) {
	v := NewVolatilityCalculator(10)
	if v.IsReady() {
		t.Error("IsReady() = true with no samples")
	}
	if got := v.StdDev(); got != 0 {
		t.Errorf("StdDev() = %v, want 0", got)
	}
}

func TestVolatilityCalculatorConstantPrices(t *testing.T) {
	v := NewVolatilityCalculator(10)
	for i := 0; i < 10; i++ {
		v.AddPrice(100)
	}
	if got := v.StdDev(); got != 0 {
		t.Errorf("StdDev() = %v, want 0 for constant prices", got)
	}
}

func TestVolatilityCalculatorKnownValues(t *testing.T) {
	v := NewVolatilityCalculator(4)
	for _, p := range []float64{98, 100, 102, 100} {
		v.AddPrice(p)
	}
	// mean=100, variance=(4+0+4+0)/4=2
	want := math.Sqrt(2)
	if got := v.StdDev(); math.Abs(got-want) > 1e-12 {
		t.Errorf("StdDev() = %v, want %v", got, want)
	}
}

func TestVolatilityCalculatorWindowEviction(t *testing.T) {
	v := NewVolatilityCalculator(3)
	for _, p := range []float64{1000, 100, 100, 100} {
		v.AddPrice(p)
	}
	// The 1000 sample fell out of the window.
	if got := v.StdDev(); got != 0 {
		t.Errorf("StdDev() = %v, want 0 after eviction", got)
	}
}

func TestVolatilityCalculatorReset(t *testing.T) {
	v := NewVolatilityCalculator(5)
	v.AddPrice(1)
	v.AddPrice(2)
	v.Reset()
	if v.IsReady() {
		t.Error("IsReady() = true after Reset")
	}
	if got := v.StdDev(); got != 0 {
		t.Errorf("StdDev() = %v, want 0 after Reset", got)
	}
}
