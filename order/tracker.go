package order

import (
	"errors"
	"fmt"
	"math"

	"mm-engine-go/inventory"
	"mm-engine-go/metrics"
)

// Gateway is the execution collaborator boundary: the tracker hands submit and
// cancel intents to it and treats a nil error as an immediate acknowledgement.
type Gateway interface {
	Submit(id uint64, side Side, price, qty float64) error
	Cancel(id uint64) error
}

var ErrUnknownOrder = errors.New("unknown order")

type slotKey struct {
	side  Side
	layer int
}

// Stats archives terminal order activity for reporting.
type Stats struct {
	Submitted  uint64
	Cancelled  uint64
	Filled     uint64
	Rejected   uint64
	BuyVolume  float64
	SellVolume float64
}

// Tracker owns the authoritative set of live orders and the inventory state
// they mutate. It reconciles desired quote layers against the live set per
// (side, layer) slot, cancel-replacing when price or quantity drift beyond
// the tolerance. Order ids are monotonic and never reused.
type Tracker struct {
	gw        Gateway
	tolerance float64

	nextID uint64
	live   map[uint64]*TrackedOrder
	slots  map[slotKey]uint64

	pos   inventory.Position
	stats Stats
}

// NewTracker creates a tracker submitting through gw. tolerance is the
// price/quantity drift beyond which a slot is cancel-replaced.
func NewTracker(gw Gateway, tolerance float64) *Tracker {
	return &Tracker{
		gw:        gw,
		tolerance: tolerance,
		live:      make(map[uint64]*TrackedOrder),
		slots:     make(map[slotKey]uint64),
	}
}

// Position exposes the inventory state. Pricing stages read it; only fill
// events processed here write it.
func (t *Tracker) Position() *inventory.Position { return &t.pos }

// Stats returns a copy of the archived activity counters.
func (t *Tracker) Stats() Stats { return t.stats }

// ActiveCount returns the number of currently tracked orders.
func (t *Tracker) ActiveCount() int { return len(t.live) }

// Lookup returns a copy of a tracked order by id.
func (t *Tracker) Lookup(id uint64) (TrackedOrder, bool) {
	o, ok := t.live[id]
	if !ok {
		return TrackedOrder{}, false
	}
	return *o, true
}

// ActiveOrders returns a copy of the live set.
func (t *Tracker) ActiveOrders() []TrackedOrder {
	out := make([]TrackedOrder, 0, len(t.live))
	for _, o := range t.live {
		out = append(out, *o)
	}
	return out
}

// Plan diffs the desired layers against the live set and returns the minimal
// cancel/submit actions, without side effects. A slot whose live order is
// within tolerance of the desired layer is left alone; anything else is a
// cancel-replace. Live orders with no desired slot are cancelled; desired
// slots with no live order are submitted.
func (t *Tracker) Plan(desired []QuoteLayer) (cancels []uint64, submits []QuoteLayer) {
	want := make(map[slotKey]QuoteLayer, len(desired))
	for _, l := range desired {
		want[slotKey{l.Side, l.Layer}] = l
	}

	for key, id := range t.slots {
		cur := t.live[id]
		l, ok := want[key]
		if ok && math.Abs(cur.Price-l.Price) <= t.tolerance && math.Abs(cur.Qty-l.Qty) <= t.tolerance {
			delete(want, key)
			continue
		}
		cancels = append(cancels, id)
	}

	for _, l := range desired {
		if _, ok := want[slotKey{l.Side, l.Layer}]; ok {
			submits = append(submits, l)
		}
	}
	return cancels, submits
}

// Apply reconciles the live set toward the desired layers, executing the plan
// through the gateway. A rejected cancel leaves the order tracked and holds
// its slot: the replacement submit for that slot is deferred so the cancel is
// retried next tick and the slot never carries two live orders. A rejected
// submit is dropped without state change. Errors are joined and returned for
// logging, never fatal.
func (t *Tracker) Apply(desired []QuoteLayer) error {
	cancels, submits := t.Plan(desired)

	var errs []error
	var held map[slotKey]bool
	for _, id := range cancels {
		if err := t.cancelOne(id); err != nil {
			if o, ok := t.live[id]; ok {
				if held == nil {
					held = make(map[slotKey]bool)
				}
				held[slotKey{o.Side, o.Layer}] = true
			}
			errs = append(errs, err)
		}
	}
	for _, l := range submits {
		if held[slotKey{l.Side, l.Layer}] {
			continue
		}
		if err := t.submitOne(l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearAll cancels every tracked order regardless of slot matching. Used on a
// hard risk veto and on degenerate ticks.
func (t *Tracker) ClearAll() error {
	var errs []error
	for id := range t.live {
		if err := t.cancelOne(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnFill applies a fill reported by the venue. Fills for ids the tracker does
// not know are ignored and reported false; they cannot corrupt inventory.
// Partial fills reduce the tracked remaining quantity; full fills retire the
// order and free its slot.
func (t *Tracker) OnFill(orderID uint64, filledQty, fillPrice float64) bool {
	o, ok := t.live[orderID]
	if !ok {
		return false
	}
	if filledQty <= 0 {
		return true
	}
	if filledQty > o.Qty {
		filledQty = o.Qty
	}

	delta := filledQty
	if o.Side == Ask {
		delta = -filledQty
		t.stats.SellVolume += filledQty
	} else {
		t.stats.BuyVolume += filledQty
	}
	t.pos.ApplyFill(delta, fillPrice)

	o.Qty -= filledQty
	if o.Qty <= 1e-12 {
		o.Status = StatusFilled
		t.stats.Filled++
		t.retire(orderID)
	}
	return true
}

// OnCancel handles a venue-initiated cancel or expiry for a tracked order.
// Unknown ids are ignored and reported false.
func (t *Tracker) OnCancel(orderID uint64) bool {
	o, ok := t.live[orderID]
	if !ok {
		return false
	}
	o.Status = StatusCancelled
	t.stats.Cancelled++
	metrics.OrdersCancelled.WithLabelValues(string(o.Side)).Inc()
	t.retire(orderID)
	return true
}

func (t *Tracker) cancelOne(id uint64) error {
	o, ok := t.live[id]
	if !ok {
		return fmt.Errorf("cancel %d: %w", id, ErrUnknownOrder)
	}
	o.Status = StatusCancelling
	if err := t.gw.Cancel(id); err != nil {
		// Leave the order tracked; it will be re-evaluated next tick.
		o.Status = StatusLive
		return fmt.Errorf("cancel %d: %w", id, err)
	}
	o.Status = StatusCancelled
	t.stats.Cancelled++
	metrics.OrdersCancelled.WithLabelValues(string(o.Side)).Inc()
	t.retire(id)
	return nil
}

func (t *Tracker) submitOne(l QuoteLayer) error {
	t.nextID++
	id := t.nextID
	if err := t.gw.Submit(id, l.Side, l.Price, l.Qty); err != nil {
		// The id is burned, never reused.
		t.stats.Rejected++
		return fmt.Errorf("submit %d: %w", id, err)
	}
	t.live[id] = &TrackedOrder{
		ID:     id,
		Side:   l.Side,
		Price:  l.Price,
		Qty:    l.Qty,
		Layer:  l.Layer,
		Status: StatusLive,
	}
	t.slots[slotKey{l.Side, l.Layer}] = id
	t.stats.Submitted++
	metrics.OrdersSubmitted.WithLabelValues(string(l.Side)).Inc()
	return nil
}

func (t *Tracker) retire(id uint64) {
	o := t.live[id]
	delete(t.live, id)
	key := slotKey{o.Side, o.Layer}
	if t.slots[key] == id {
		delete(t.slots, key)
	}
}
