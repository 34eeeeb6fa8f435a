package risk

import (
	"math"

	"mm-engine-go/market"
)

// Decision is the per-tick quoting permission derived from inventory and
// volatility state. Computed fresh every tick, never persisted.
type Decision struct {
	AllowBid       bool
	AllowAsk       bool
	SizeMultiplier float64 // in [0, 1]
	Toxic          bool
}

// Veto is the fail-safe decision: no quotes on either side.
func Veto() Decision { return Decision{} }

// Manager maintains the rolling volatility estimate over fair prices and
// turns it, together with current inventory, into a quoting decision.
type Manager struct {
	maxInventory        float64
	volatilityThreshold float64
	vol                 *market.VolatilityCalculator
	toxic               bool
}

// NewManager creates a risk manager. maxInventory and volatilityThreshold
// must be validated as positive by the configuration layer.
func NewManager(maxInventory, volatilityThreshold float64, volatilityWindow int) *Manager {
	return &Manager{
		maxInventory:        maxInventory,
		volatilityThreshold: volatilityThreshold,
		vol:                 market.NewVolatilityCalculator(volatilityWindow),
	}
}

// Update feeds the latest fair price into the rolling window and returns the
// current volatility estimate. Called exactly once per tick, before the
// spread stage.
func (m *Manager) Update(fairPrice float64) float64 {
	m.vol.AddPrice(fairPrice)
	return m.vol.StdDev()
}

// Volatility returns the current estimate without adding a sample.
func (m *Manager) Volatility() float64 { return m.vol.StdDev() }

// Toxic reports whether the last Assess flagged toxic flow.
func (m *Manager) Toxic() bool { return m.toxic }

// MaxInventory returns the configured hard inventory limit.
func (m *Manager) MaxInventory() float64 { return m.maxInventory }

// Assess computes the quoting decision for the current tick.
// A volatility spike above the threshold is a hard veto of both sides;
// hitting the inventory limit cuts only the accumulating side, leaving the
// flattening side open. Size shrinks linearly as inventory approaches the
// limit. Non-finite inputs fail safe to a full veto.
func (m *Manager) Assess(inventoryQty, volatility float64) Decision {
	if !isFinite(inventoryQty) || !isFinite(volatility) {
		m.toxic = true
		return Decision{Toxic: true}
	}

	if volatility > m.volatilityThreshold {
		m.toxic = true
		return Decision{Toxic: true}
	}
	m.toxic = false

	d := Decision{AllowBid: true, AllowAsk: true}
	if inventoryQty >= m.maxInventory {
		d.AllowBid = false
	}
	if inventoryQty <= -m.maxInventory {
		d.AllowAsk = false
	}

	mult := 1 - math.Abs(inventoryQty)/m.maxInventory
	if mult < 0 {
		mult = 0
	}
	if !d.AllowBid || !d.AllowAsk {
		// At or past the hard limit only the flattening side quotes, at
		// full size so the position unwinds quickly.
		mult = 1
	}
	d.SizeMultiplier = mult
	return d
}

// Reset clears the volatility window. Engine restart only.
func (m *Manager) Reset() {
	m.vol.Reset()
	m.toxic = false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
