package strategy

import (
	"errors"

	"go.uber.org/zap"

	"mm-engine-go/market"
	"mm-engine-go/order"
)

// MomentumParams configures the momentum strategy variant.
type MomentumParams struct {
	Lookback      int     // window of mid prices for the momentum signal
	Threshold     float64 // cumulative return that triggers entry
	PositionSize  float64
	StopLossPct   float64
	TakeProfitPct float64
}

// Momentum is the simple trend-following variant. It shares the snapshot/fill
// contract with the market maker but quotes a single aggressive order at the
// touch instead of layered passive quotes, and exits on stop loss, take
// profit, or signal reversal.
type Momentum struct {
	p       MomentumParams
	tracker *order.Tracker
	log     *zap.Logger

	prices []float64
}

func NewMomentum(p MomentumParams, gw order.Gateway, log *zap.Logger) (*Momentum, error) {
	if p.Lookback < 2 {
		return nil, errors.New("lookback must be at least 2")
	}
	if p.PositionSize <= 0 {
		return nil, errors.New("position size must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Momentum{
		p:       p,
		tracker: order.NewTracker(gw, 0),
		log:     log,
	}, nil
}

func (m *Momentum) Name() string { return "momentum" }

// Tracker exposes order and inventory state.
func (m *Momentum) Tracker() *order.Tracker { return m.tracker }

// Momentum returns the cumulative return over the lookback window,
// false until the window is full.
func (m *Momentum) Momentum() (float64, bool) {
	if len(m.prices) <= m.p.Lookback {
		return 0, false
	}
	first := m.prices[0]
	if first == 0 {
		return 0, false
	}
	last := m.prices[len(m.prices)-1]
	return (last - first) / first, true
}

func (m *Momentum) OnTick(snap market.Snapshot) {
	if !snap.Valid() {
		if err := m.tracker.ClearAll(); err != nil {
			m.log.Warn("cancel-all on degenerate tick", zap.Error(err))
		}
		return
	}

	mid := snap.Mid()
	m.prices = append(m.prices, mid)
	if len(m.prices) > m.p.Lookback+1 {
		m.prices = m.prices[1:]
	}

	mom, ready := m.Momentum()
	if !ready {
		return
	}

	pos := m.tracker.Position()
	qty := pos.Qty()

	var desired []order.QuoteLayer
	switch {
	case qty == 0:
		if mom > m.p.Threshold {
			desired = m.entry(order.Bid, snap)
		} else if mom < -m.p.Threshold {
			desired = m.entry(order.Ask, snap)
		}
	case qty > 0:
		if m.shouldExitLong(mid, mom) {
			desired = []order.QuoteLayer{{Side: order.Ask, Layer: 0, Price: snap.Bids[0].Price, Qty: qty}}
		}
	default:
		if m.shouldExitShort(mid, mom) {
			desired = []order.QuoteLayer{{Side: order.Bid, Layer: 0, Price: snap.Asks[0].Price, Qty: -qty}}
		}
	}

	var err error
	if len(desired) == 0 && qty != 0 {
		// Holding and no exit condition: cancel any stale working order.
		err = m.tracker.ClearAll()
	} else {
		err = m.tracker.Apply(desired)
	}
	if err != nil {
		m.log.Warn("reconcile rejected intents", zap.Error(err))
	}
}

func (m *Momentum) OnFill(orderID uint64, filledQty, fillPrice float64) {
	o, known := m.tracker.Lookup(orderID)
	if !m.tracker.OnFill(orderID, filledQty, fillPrice) || !known {
		m.log.Warn("fill for unknown order", zap.Uint64("order_id", orderID))
		return
	}
	m.log.Info("fill",
		zap.Uint64("order_id", orderID),
		zap.String("side", string(o.Side)),
		zap.Float64("price", fillPrice),
		zap.Float64("qty", filledQty),
		zap.Float64("inventory", m.tracker.Position().Qty()))
}

func (m *Momentum) OnCancelConfirm(orderID uint64) {
	m.tracker.OnCancel(orderID)
}

// entry crosses the spread: buy at the best ask, sell at the best bid.
func (m *Momentum) entry(side order.Side, snap market.Snapshot) []order.QuoteLayer {
	price := snap.Asks[0].Price
	if side == order.Ask {
		price = snap.Bids[0].Price
	}
	return []order.QuoteLayer{{Side: side, Layer: 0, Price: price, Qty: m.p.PositionSize}}
}

func (m *Momentum) shouldExitLong(mid, mom float64) bool {
	entry := m.tracker.Position().AvgEntry()
	if entry <= 0 {
		return false
	}
	ret := (mid - entry) / entry
	return ret <= -m.p.StopLossPct || ret >= m.p.TakeProfitPct || mom < -m.p.Threshold
}

func (m *Momentum) shouldExitShort(mid, mom float64) bool {
	entry := m.tracker.Position().AvgEntry()
	if entry <= 0 {
		return false
	}
	ret := (entry - mid) / entry
	return ret <= -m.p.StopLossPct || ret >= m.p.TakeProfitPct || mom > m.p.Threshold
}
