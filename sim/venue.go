package sim

import (
	"errors"
	"fmt"
	"sort"

	"mm-engine-go/market"
	"mm-engine-go/order"
	"mm-engine-go/risk"
)

// ErrOrderRejected marks orders the venue refuses to accept.
var ErrOrderRejected = errors.New("order rejected")

// FillFunc receives each fill the venue produces.
type FillFunc func(orderID uint64, qty, price float64)

type restingOrder struct {
	side  order.Side
	price float64
	qty   float64
}

// Venue is a minimal in-memory exchange implementing the execution gateway.
// Resting limit orders fill completely when the opposite touch crosses their
// price. It is not a matching engine; it exists so the quoting loop can run
// end to end against something that accepts, cancels and fills orders.
type Venue struct {
	guard   risk.Guard
	resting map[uint64]restingOrder
}

// NewVenue creates a venue. guard may be nil.
func NewVenue(guard risk.Guard) *Venue {
	return &Venue{
		guard:   guard,
		resting: make(map[uint64]restingOrder),
	}
}

func (v *Venue) Submit(id uint64, side order.Side, price, qty float64) error {
	if price <= 0 || qty <= 0 {
		return fmt.Errorf("%w: price %.8f qty %.8f", ErrOrderRejected, price, qty)
	}
	if _, dup := v.resting[id]; dup {
		return fmt.Errorf("%w: duplicate id %d", ErrOrderRejected, id)
	}
	if v.guard != nil {
		if err := v.guard.PreOrder(price, qty); err != nil {
			return fmt.Errorf("%w: %v", ErrOrderRejected, err)
		}
	}
	v.resting[id] = restingOrder{side: side, price: price, qty: qty}
	return nil
}

func (v *Venue) Cancel(id uint64) error {
	if _, ok := v.resting[id]; !ok {
		return fmt.Errorf("cancel %d: %w", id, order.ErrUnknownOrder)
	}
	delete(v.resting, id)
	return nil
}

// Match fills every resting order the snapshot's touch has crossed: a bid
// fills when the best ask trades at or below it, an ask when the best bid
// trades at or above it. Fills are delivered in order-id order at the
// resting limit price.
func (v *Venue) Match(snap market.Snapshot, onFill FillFunc) {
	bestBid, hasBid := snap.BestBid()
	bestAsk, hasAsk := snap.BestAsk()

	var crossed []uint64
	for id, o := range v.resting {
		switch o.side {
		case order.Bid:
			if hasAsk && bestAsk.Price <= o.price {
				crossed = append(crossed, id)
			}
		case order.Ask:
			if hasBid && bestBid.Price >= o.price {
				crossed = append(crossed, id)
			}
		}
	}
	sort.Slice(crossed, func(i, j int) bool { return crossed[i] < crossed[j] })

	for _, id := range crossed {
		o := v.resting[id]
		delete(v.resting, id)
		if onFill != nil {
			onFill(id, o.qty, o.price)
		}
	}
}

// Resting reports how many orders are on the book.
func (v *Venue) Resting() int { return len(v.resting) }
