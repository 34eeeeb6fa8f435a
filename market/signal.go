package market

// Signal is the pricing signal derived from a single snapshot.
// It is recomputed every tick and never stored.
type Signal struct {
	FairPrice float64
	Imbalance float64
	Mid       float64
}

// MicroPriceCalculator estimates a liquidity-weighted fair price from
// top-of-book quantities, summed over a configurable number of levels.
type MicroPriceCalculator struct {
	depthLevels int
}

// NewMicroPriceCalculator creates a calculator that aggregates volume over
// the top depthLevels levels of each side.
func NewMicroPriceCalculator(depthLevels int) *MicroPriceCalculator {
	if depthLevels <= 0 {
		depthLevels = 1
	}
	return &MicroPriceCalculator{depthLevels: depthLevels}
}

// Estimate computes the micro price and order book imbalance.
// Returns false when the book is empty or crossed; callers treat that tick
// as degenerate and withdraw quotes.
func (c *MicroPriceCalculator) Estimate(snap Snapshot) (Signal, bool) {
	if !snap.Valid() {
		return Signal{}, false
	}

	bestBid := snap.Bids[0].Price
	bestAsk := snap.Asks[0].Price
	mid := (bestBid + bestAsk) / 2

	bidVolume := 0.0
	for i, lvl := range snap.Bids {
		if i >= c.depthLevels {
			break
		}
		if lvl.Qty > 0 {
			bidVolume += lvl.Qty
		}
	}
	askVolume := 0.0
	for i, lvl := range snap.Asks {
		if i >= c.depthLevels {
			break
		}
		if lvl.Qty > 0 {
			askVolume += lvl.Qty
		}
	}

	// Zero combined depth: fall back to mid with a neutral imbalance.
	if bidVolume+askVolume == 0 {
		return Signal{FairPrice: mid, Imbalance: 0, Mid: mid}, true
	}

	fair := (bidVolume*bestAsk + askVolume*bestBid) / (bidVolume + askVolume)
	imb := CalculateImbalance(bidVolume, askVolume)

	return Signal{FairPrice: fair, Imbalance: imb, Mid: mid}, true
}

// CalculateImbalance computes (BidVol - AskVol) / (BidVol + AskVol),
// clamped to [-1, 1] against float noise.
func CalculateImbalance(bidVolume, askVolume float64) float64 {
	total := bidVolume + askVolume
	if total == 0 {
		return 0
	}
	imb := (bidVolume - askVolume) / total
	if imb > 1 {
		imb = 1
	}
	if imb < -1 {
		imb = -1
	}
	return imb
}
