package market

// Level is a single price level of one order book side.
type Level struct {
	Price float64
	Qty   float64
}

// Snapshot is an immutable per-tick view of the order book.
// Bids are sorted best-first (descending price), asks best-first (ascending).
type Snapshot struct {
	Bids      []Level
	Asks      []Level
	Timestamp int64 // unix nanoseconds
}

// BestBid returns the top bid level; false when the bid side is empty.
func (s Snapshot) BestBid() (Level, bool) {
	if len(s.Bids) == 0 {
		return Level{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level; false when the ask side is empty.
func (s Snapshot) BestAsk() (Level, bool) {
	if len(s.Asks) == 0 {
		return Level{}, false
	}
	return s.Asks[0], true
}

// Mid returns the mid price, or 0 when either side is empty.
func (s Snapshot) Mid() float64 {
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	if !okB || !okA {
		return 0
	}
	return (bid.Price + ask.Price) / 2
}

// Valid reports whether both sides are present and uncrossed.
func (s Snapshot) Valid() bool {
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	return okB && okA && bid.Price > 0 && bid.Price < ask.Price
}
