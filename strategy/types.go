package strategy

import (
	"mm-engine-go/market"
	"mm-engine-go/order"
)

// Strategy is the per-tick contract shared by every strategy variant: the
// runner feeds snapshots, the strategy mutates its order state through the
// execution gateway.
type Strategy interface {
	Name() string
	OnTick(snap market.Snapshot)
	OnFill(orderID uint64, filledQty, fillPrice float64)
	OnCancelConfirm(orderID uint64)
}

// EngineParams is the immutable parameter set for the market-making engine,
// validated once at startup.
type EngineParams struct {
	Gamma               float64
	InitialKappa        float64
	RefitKappa          bool
	MaxInventory        float64
	VolatilityThreshold float64
	VolatilityWindow    int
	DepthLevels         int
	MinSpread           float64
	ReconcileTolerance  float64
	Layers              order.LayerConfig
}
