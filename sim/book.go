package sim

import (
	"math"
	"math/rand"

	"mm-engine-go/market"
)

// BookSource yields snapshots until the run is over.
type BookSource interface {
	Next() (market.Snapshot, bool)
}

// SyntheticConfig parameterizes the random-walk book.
type SyntheticConfig struct {
	StartPrice float64
	StepSigma  float64 // stddev of the per-tick mid move
	TickSize   float64
	Depth      int // levels per side
	LevelQty   float64
	Ticks      int
	Seed       int64
}

// SyntheticBook generates a random-walk order book. Depth quantity decays
// exponentially away from the touch with some noise, so the liquidity re-fit
// has a real curve to estimate.
type SyntheticBook struct {
	cfg SyntheticConfig
	rng *rand.Rand
	mid float64
	ts  int64
	n   int
}

func NewSyntheticBook(cfg SyntheticConfig) *SyntheticBook {
	if cfg.TickSize <= 0 {
		cfg.TickSize = 0.1
	}
	if cfg.Depth < 1 {
		cfg.Depth = 1
	}
	if cfg.LevelQty <= 0 {
		cfg.LevelQty = 1
	}
	return &SyntheticBook{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		mid: cfg.StartPrice,
	}
}

func (b *SyntheticBook) Next() (market.Snapshot, bool) {
	if b.n >= b.cfg.Ticks {
		return market.Snapshot{}, false
	}
	b.n++
	b.ts++

	b.mid += b.rng.NormFloat64() * b.cfg.StepSigma
	if floor := 10 * b.cfg.TickSize; b.mid < floor {
		b.mid = floor
	}

	tick := b.cfg.TickSize
	bestBid := math.Floor(b.mid/tick)*tick - tick/2
	bestAsk := bestBid + tick

	snap := market.Snapshot{Timestamp: b.ts}
	for i := 0; i < b.cfg.Depth; i++ {
		qty := b.cfg.LevelQty * math.Exp(-0.1*float64(i)) * (0.5 + b.rng.Float64())
		snap.Bids = append(snap.Bids, market.Level{Price: bestBid - float64(i)*tick, Qty: qty})
		qty = b.cfg.LevelQty * math.Exp(-0.1*float64(i)) * (0.5 + b.rng.Float64())
		snap.Asks = append(snap.Asks, market.Level{Price: bestAsk + float64(i)*tick, Qty: qty})
	}
	return snap, true
}
