package order

// Side of a quote or order.
type Side string

const (
	Bid Side = "bid"
	Ask Side = "ask"
)

// Status represents the tracked order lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusLive       Status = "LIVE"
	StatusCancelling Status = "CANCELLING"
	StatusFilled     Status = "FILLED"
	StatusCancelled  Status = "CANCELLED"
)

// QuoteLayer is one desired resting quote, produced fresh each tick by the
// layer generator and consumed by the tracker.
type QuoteLayer struct {
	Side  Side
	Layer int
	Price float64
	Qty   float64
}

// TrackedOrder is an order the tracker currently owns. IDs are engine-assigned,
// monotonic, and never reused.
type TrackedOrder struct {
	ID     uint64
	Side   Side
	Price  float64
	Qty    float64
	Layer  int
	Status Status
}
