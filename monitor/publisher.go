package monitor

// TickStats is the per-tick engine state record handed to the monitoring
// collaborator. Best-effort and lossy: a slow consumer sees gaps, never
// backpressure.
type TickStats struct {
	Timestamp        int64   `json:"ts"`
	FairPrice        float64 `json:"fair_price"`
	Imbalance        float64 `json:"imbalance"`
	ReservationPrice float64 `json:"reservation_price"`
	HalfSpread       float64 `json:"half_spread"`
	Kappa            float64 `json:"kappa"`
	InventoryQty     float64 `json:"inventory_qty"`
	RealizedPnL      float64 `json:"realized_pnl"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	ActiveLayers     int     `json:"active_layers"`
	Volatility       float64 `json:"volatility"`
	Toxic            bool    `json:"toxic"`
	Degenerate       bool    `json:"degenerate"`
}

// Publisher fans TickStats out to subscribers without ever blocking the
// decision pipeline: if a subscriber's buffer is full the update is dropped.
type Publisher struct {
	subs []chan TickStats
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe registers a new consumer with a small buffer. Subscribe before
// starting the engine; the publisher is not safe for concurrent mutation.
func (p *Publisher) Subscribe() <-chan TickStats {
	ch := make(chan TickStats, 16)
	p.subs = append(p.subs, ch)
	return ch
}

// Publish delivers to every subscriber that can take the update immediately.
func (p *Publisher) Publish(s TickStats) {
	for _, ch := range p.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
