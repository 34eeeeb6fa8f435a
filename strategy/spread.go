package strategy

import "math"

// SpreadCalculator implements the Avellaneda-Stoikov reservation price and
// optimal spread. Pure computation; all state arrives through parameters.
type SpreadCalculator struct {
	gamma     float64
	minSpread float64
}

// NewSpreadCalculator creates a calculator. gamma must already be validated
// as strictly positive by the configuration layer. minSpread is the fallback
// when the spread formula degenerates.
func NewSpreadCalculator(gamma, minSpread float64) *SpreadCalculator {
	return &SpreadCalculator{gamma: gamma, minSpread: minSpread}
}

// ReservationPrice shifts the fair price against the current inventory:
// a long position quotes below fair value, biasing toward selling.
func (c *SpreadCalculator) ReservationPrice(fairPrice, inventoryQty, volatility float64) float64 {
	return fairPrice - inventoryQty*c.gamma*volatility*volatility
}

// OptimalSpread returns (2/gamma)*ln(1+gamma/kappa). kappa is kept strictly
// positive upstream, so the log argument can only degenerate through float
// error; in that case the configured minimum spread is used.
func (c *SpreadCalculator) OptimalSpread(kappa float64) float64 {
	arg := 1 + c.gamma/kappa
	if arg <= 0 || math.IsNaN(arg) || math.IsInf(arg, 0) {
		return c.minSpread
	}
	spread := (2 / c.gamma) * math.Log(arg)
	if spread < c.minSpread {
		spread = c.minSpread
	}
	return spread
}

// Compute returns the reservation price and half spread for one tick.
func (c *SpreadCalculator) Compute(fairPrice, inventoryQty, volatility, kappa float64) (reservationPrice, halfSpread float64) {
	return c.ReservationPrice(fairPrice, inventoryQty, volatility), c.OptimalSpread(kappa) / 2
}
