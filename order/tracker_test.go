package order

import (
	"errors"
	"testing"
)

// mockGateway records intents and can be told to reject them.
type mockGateway struct {
	submits    []uint64
	cancels    []uint64
	failSubmit bool
	failCancel bool
}

var errVenue = errors.New("venue rejected")

func (g *mockGateway) Submit(id uint64, side Side, price, qty float64) error {
	if g.failSubmit {
		return errVenue
	}
	g.submits = append(g.submits, id)
	return nil
}

func (g *mockGateway) Cancel(id uint64) error {
	if g.failCancel {
		return errVenue
	}
	g.cancels = append(g.cancels, id)
	return nil
}

func twoSidedLayers() []QuoteLayer {
	return []QuoteLayer{
		{Side: Bid, Layer: 0, Price: 99, Qty: 1},
		{Side: Bid, Layer: 1, Price: 98.5, Qty: 0.5},
		{Side: Ask, Layer: 0, Price: 101, Qty: 1},
		{Side: Ask, Layer: 1, Price: 101.5, Qty: 0.5},
	}
}

func TestApplySubmitsAllSlots(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ActiveCount() != 4 {
		t.Errorf("ActiveCount = %d, want 4", tr.ActiveCount())
	}
	if len(gw.submits) != 4 {
		t.Errorf("submits = %d, want 4", len(gw.submits))
	}
}

func TestApplyIdempotent(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	layers := twoSidedLayers()
	if err := tr.Apply(layers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancels, submits := tr.Plan(layers)
	if len(cancels) != 0 || len(submits) != 0 {
		t.Errorf("second plan = %d cancels %d submits, want none", len(cancels), len(submits))
	}

	before := len(gw.submits)
	if err := tr.Apply(layers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.submits) != before || len(gw.cancels) != 0 {
		t.Error("second apply must be a no-op")
	}
}

func TestApplyCancelReplacesOnDrift(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 0.01)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved := twoSidedLayers()
	moved[0].Price = 99.5 // beyond tolerance

	cancels, submits := tr.Plan(moved)
	if len(cancels) != 1 || len(submits) != 1 {
		t.Fatalf("plan = %d cancels %d submits, want 1 and 1", len(cancels), len(submits))
	}
	if err := tr.Apply(moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ActiveCount() != 4 {
		t.Errorf("ActiveCount = %d, want 4", tr.ActiveCount())
	}
}

func TestApplyToleratesSmallDrift(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 0.1)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nudged := twoSidedLayers()
	nudged[0].Price += 0.05
	nudged[2].Qty += 0.05

	cancels, submits := tr.Plan(nudged)
	if len(cancels) != 0 || len(submits) != 0 {
		t.Error("drift within tolerance must not churn orders")
	}
}

func TestApplyCancelsAbandonedSlots(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Shrink to one layer per side.
	narrow := []QuoteLayer{
		{Side: Bid, Layer: 0, Price: 99, Qty: 1},
		{Side: Ask, Layer: 0, Price: 101, Qty: 1},
	}
	if err := tr.Apply(narrow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ActiveCount() != 2 {
		t.Errorf("ActiveCount = %d, want 2", tr.ActiveCount())
	}
	if len(gw.cancels) != 2 {
		t.Errorf("cancels = %d, want 2", len(gw.cancels))
	}
}

func TestClearAllCancelsEverything(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.ClearAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0", tr.ActiveCount())
	}
	if len(gw.cancels) != 4 {
		t.Errorf("cancels = %d, want 4", len(gw.cancels))
	}
}

func TestOrderIDsMonotonic(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.ClearAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[uint64]bool)
	var last uint64
	for _, id := range gw.submits {
		if seen[id] {
			t.Fatalf("order id %d reused", id)
		}
		seen[id] = true
		if id <= last {
			t.Fatalf("order ids not monotonic: %d after %d", id, last)
		}
		last = id
	}
}

func TestOnFillUpdatesInventory(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	layers := []QuoteLayer{{Side: Bid, Layer: 0, Price: 49999.95, Qty: 0.01}}
	if err := tr.Apply(layers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bidID := gw.submits[0]

	if !tr.OnFill(bidID, 0.01, 49999.95) {
		t.Fatal("OnFill rejected a known order")
	}
	if tr.Position().Qty() != 0.01 {
		t.Errorf("Qty = %v, want 0.01", tr.Position().Qty())
	}
	if tr.ActiveCount() != 0 {
		t.Error("fully filled order must leave the live set")
	}

	// Sell the inventory back through a fresh ask.
	if err := tr.Apply([]QuoteLayer{{Side: Ask, Layer: 0, Price: 50000.15, Qty: 0.01}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	askID := gw.submits[len(gw.submits)-1]
	tr.OnFill(askID, 0.01, 50000.15)

	if tr.Position().Qty() != 0 {
		t.Errorf("Qty = %v, want 0", tr.Position().Qty())
	}
	wantPnL := 0.01 * (50000.15 - 49999.95)
	if diff := tr.Position().RealizedPnL() - wantPnL; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("RealizedPnL = %v, want %v", tr.Position().RealizedPnL(), wantPnL)
	}
}

func TestOnFillPartialKeepsOrderLive(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if err := tr.Apply([]QuoteLayer{{Side: Bid, Layer: 0, Price: 100, Qty: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := gw.submits[0]

	tr.OnFill(id, 0.5, 100)
	if tr.ActiveCount() != 1 {
		t.Error("partially filled order must stay tracked")
	}
	if tr.Position().Qty() != 0.5 {
		t.Errorf("Qty = %v, want 0.5", tr.Position().Qty())
	}

	tr.OnFill(id, 1.5, 100)
	if tr.ActiveCount() != 0 {
		t.Error("completed order must retire")
	}
}

func TestOnFillUnknownOrderIgnored(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if tr.OnFill(42, 1, 100) {
		t.Error("OnFill accepted an unknown order id")
	}
	if tr.Position().Qty() != 0 {
		t.Error("unknown fill must not touch inventory")
	}
}

func TestCancelRejectionKeepsOrderTracked(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gw.failCancel = true
	err := tr.ClearAll()
	if err == nil {
		t.Fatal("expected cancel errors")
	}
	if !errors.Is(err, errVenue) {
		t.Errorf("error = %v, want wrapped venue error", err)
	}
	// Orders stay for re-evaluation next tick.
	if tr.ActiveCount() != 4 {
		t.Errorf("ActiveCount = %d, want 4 after rejected cancels", tr.ActiveCount())
	}

	gw.failCancel = false
	if err := tr.ClearAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ActiveCount() != 0 {
		t.Error("retry next tick should clear the book")
	}
}

func TestCancelRejectionDefersReplacement(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 0.01)

	if err := tr.Apply(twoSidedLayers()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved := twoSidedLayers()
	moved[0].Price = 99.5 // beyond tolerance, forces a cancel-replace on bid 0

	gw.failCancel = true
	if err := tr.Apply(moved); err == nil {
		t.Fatal("expected cancel rejection error")
	}
	// The old order holds its slot until the cancel goes through; submitting
	// the replacement now would double the slot's exposure.
	if tr.ActiveCount() != 4 {
		t.Errorf("ActiveCount = %d, want 4 after rejected cancel", tr.ActiveCount())
	}
	if len(gw.submits) != 4 {
		t.Errorf("submits = %d, want 4: replacement must wait for the cancel", len(gw.submits))
	}

	gw.failCancel = false
	if err := tr.Apply(moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.cancels) != 1 || gw.cancels[0] != 1 {
		t.Errorf("cancels = %v, want the original bid order retried", gw.cancels)
	}
	if _, ok := tr.Lookup(1); ok {
		t.Error("original order must retire once its cancel succeeds")
	}
	if tr.ActiveCount() != 4 {
		t.Errorf("ActiveCount = %d, want 4 after retry", tr.ActiveCount())
	}
	if len(gw.submits) != 5 {
		t.Errorf("submits = %d, want 5: replacement lands after the retry", len(gw.submits))
	}
}

func TestSubmitRejectionLeavesNoState(t *testing.T) {
	gw := &mockGateway{failSubmit: true}
	tr := NewTracker(gw, 1e-9)

	err := tr.Apply(twoSidedLayers())
	if err == nil {
		t.Fatal("expected submit errors")
	}
	if tr.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0 after rejected submits", tr.ActiveCount())
	}
	if tr.Stats().Rejected != 4 {
		t.Errorf("Rejected = %d, want 4", tr.Stats().Rejected)
	}
}

func TestOnCancelRetiresOrder(t *testing.T) {
	gw := &mockGateway{}
	tr := NewTracker(gw, 1e-9)

	if err := tr.Apply([]QuoteLayer{{Side: Bid, Layer: 0, Price: 100, Qty: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := gw.submits[0]

	if !tr.OnCancel(id) {
		t.Fatal("OnCancel rejected a known order")
	}
	if tr.ActiveCount() != 0 {
		t.Error("cancelled order must leave the live set")
	}
	if tr.OnCancel(99) {
		t.Error("OnCancel accepted an unknown id")
	}
}
