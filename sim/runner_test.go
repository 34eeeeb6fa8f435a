package sim

import (
	"context"
	"testing"

	"mm-engine-go/market"
	"mm-engine-go/order"
	"mm-engine-go/strategy"
)

type sliceSource struct {
	snaps []market.Snapshot
	pos   int
}

func (s *sliceSource) Next() (market.Snapshot, bool) {
	if s.pos >= len(s.snaps) {
		return market.Snapshot{}, false
	}
	snap := s.snaps[s.pos]
	s.pos++
	return snap, true
}

func level2(bid, ask float64) market.Snapshot {
	return market.Snapshot{
		Bids: []market.Level{{Price: bid, Qty: 10}, {Price: bid - 0.1, Qty: 20}},
		Asks: []market.Level{{Price: ask, Qty: 10}, {Price: ask + 0.1, Qty: 20}},
	}
}

func testEngine(t *testing.T, venue *Venue) *strategy.Engine {
	t.Helper()
	e, err := strategy.NewEngine(strategy.EngineParams{
		Gamma:               0.1,
		InitialKappa:        1.5,
		MaxInventory:        5,
		VolatilityThreshold: 50,
		VolatilityWindow:    60,
		DepthLevels:         2,
		ReconcileTolerance:  1e-9,
		Layers: order.LayerConfig{
			BaseSize:  0.01,
			NumLayers: 1,
			LayerStep: 0.05,
		},
	}, venue, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestRunnerFillsQuoteOnCrossingMove(t *testing.T) {
	venue := NewVenue(nil)
	e := testEngine(t, venue)

	// Quote around 100, then the market trades down through the bid
	// (half-spread ~0.645 at gamma=0.1, kappa=1.5).
	src := &sliceSource{snaps: []market.Snapshot{
		level2(99.95, 100.05),
		level2(99.2, 99.3),
		level2(99.2, 99.3),
	}}

	r := &Runner{Source: src, Venue: venue, Strat: e, Capital: 10000}
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Fills == 0 {
		t.Fatal("expected the bid to fill on the crossing move")
	}
	if qty := e.Tracker().Position().Qty(); qty <= 0 {
		t.Errorf("inventory = %v, want long after a bid fill", qty)
	}
	if len(report.EquityCurve) != 3 {
		t.Errorf("equity samples = %d, want 3", len(report.EquityCurve))
	}
	if report.InitialCapital != 10000 {
		t.Errorf("InitialCapital = %v, want 10000", report.InitialCapital)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	venue := NewVenue(nil)
	e := testEngine(t, venue)

	src := &sliceSource{snaps: make([]market.Snapshot, 100)}
	for i := range src.snaps {
		src.snaps[i] = level2(99.95, 100.05)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Source: src, Venue: venue, Strat: e, Capital: 10000}
	if _, err := r.Run(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRunnerUninitialized(t *testing.T) {
	r := &Runner{}
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing components")
	}
}
