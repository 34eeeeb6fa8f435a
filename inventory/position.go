package inventory

import "math"

// Position tracks the signed net quantity, the volume-weighted average entry
// price, and realized PnL. It is mutated only by fill events reported through
// the order tracker; the pricing stages read it and never write.
// The single tick-processing goroutine owns it, so no locking is needed.
type Position struct {
	qty      float64
	avgEntry float64
	realized float64
}

// ApplyFill applies a signed fill quantity (positive buys, negative sells)
// at the given price. Same-direction fills re-weight the average entry;
// opposite-direction fills realize PnL on the closed amount, and a position
// flip restarts the entry price at the fill price.
func (p *Position) ApplyFill(deltaQty, price float64) {
	if deltaQty == 0 {
		return
	}

	sameDirection := p.qty == 0 || (p.qty > 0) == (deltaQty > 0)
	if sameDirection {
		total := math.Abs(p.qty) + math.Abs(deltaQty)
		p.avgEntry = (p.avgEntry*math.Abs(p.qty) + price*math.Abs(deltaQty)) / total
		p.qty += deltaQty
		return
	}

	closed := math.Min(math.Abs(deltaQty), math.Abs(p.qty))
	if p.qty > 0 {
		p.realized += closed * (price - p.avgEntry)
	} else {
		p.realized += closed * (p.avgEntry - price)
	}

	wasLong := p.qty > 0
	p.qty += deltaQty
	switch {
	case p.qty == 0:
		p.avgEntry = 0
	case (p.qty > 0) != wasLong:
		p.avgEntry = price
	}
}

// Qty returns the signed net position.
func (p *Position) Qty() float64 { return p.qty }

// AvgEntry returns the volume-weighted average entry price of the open position.
func (p *Position) AvgEntry() float64 { return p.avgEntry }

// RealizedPnL returns the cumulative realized PnL.
func (p *Position) RealizedPnL() float64 { return p.realized }

// UnrealizedPnL marks the open quantity against the given reference price.
func (p *Position) UnrealizedPnL(mark float64) float64 {
	if p.qty == 0 {
		return 0
	}
	return p.qty * (mark - p.avgEntry)
}
