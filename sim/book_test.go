package sim

import "testing"

func syntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		StartPrice: 50000,
		StepSigma:  0.5,
		TickSize:   0.1,
		Depth:      5,
		LevelQty:   2,
		Ticks:      100,
		Seed:       7,
	}
}

func TestSyntheticBookProducesValidSnapshots(t *testing.T) {
	b := NewSyntheticBook(syntheticConfig())

	count := 0
	for {
		snap, ok := b.Next()
		if !ok {
			break
		}
		count++
		if !snap.Valid() {
			t.Fatalf("snapshot %d invalid: %+v", count, snap)
		}
		if len(snap.Bids) != 5 || len(snap.Asks) != 5 {
			t.Fatalf("snapshot %d depth = %d/%d, want 5/5", count, len(snap.Bids), len(snap.Asks))
		}
		for i := 1; i < len(snap.Bids); i++ {
			if snap.Bids[i].Price >= snap.Bids[i-1].Price {
				t.Fatal("bids not strictly descending")
			}
		}
		for i := 1; i < len(snap.Asks); i++ {
			if snap.Asks[i].Price <= snap.Asks[i-1].Price {
				t.Fatal("asks not strictly ascending")
			}
		}
	}
	if count != 100 {
		t.Errorf("ticks = %d, want 100", count)
	}
}

func TestSyntheticBookDeterministicPerSeed(t *testing.T) {
	a := NewSyntheticBook(syntheticConfig())
	b := NewSyntheticBook(syntheticConfig())

	for i := 0; i < 20; i++ {
		sa, oka := a.Next()
		sb, okb := b.Next()
		if oka != okb {
			t.Fatal("sources diverged in length")
		}
		if sa.Bids[0] != sb.Bids[0] || sa.Asks[0] != sb.Asks[0] {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, sa.Bids[0], sb.Bids[0])
		}
	}
}
