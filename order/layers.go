package order

import "mm-engine-go/risk"

// LayerConfig controls how the desired quote set is built around the
// reservation price.
type LayerConfig struct {
	BaseSize  float64 // quantity of layer 0 before scaling
	NumLayers int     // layers per side
	LayerStep float64 // price increment per layer
	// Decay controls the per-layer size falloff: qty(i) = BaseSize/(1+Decay*i).
	// Any non-negative value keeps sizes monotonically non-increasing in depth.
	Decay float64
	// ImbalanceSkew tightens the pressured side by
	// imbalance*halfSpread*ImbalanceSkew. Zero keeps layers symmetric.
	// Must stay within [0, 1] so quotes cannot cross the reservation price.
	ImbalanceSkew float64
}

// LayerGenerator turns (reservation price, half spread, risk decision) into a
// concrete, priced and sized set of quote layers.
type LayerGenerator struct {
	cfg LayerConfig
}

func NewLayerGenerator(cfg LayerConfig) *LayerGenerator {
	return &LayerGenerator{cfg: cfg}
}

// Generate builds the desired layers for one tick. A vetoed side produces no
// layers; quantities are scaled by the decision's size multiplier; layers with
// non-positive price or quantity are silently dropped.
func (g *LayerGenerator) Generate(reservationPrice, halfSpread float64, d risk.Decision, imbalance float64) []QuoteLayer {
	if !d.AllowBid && !d.AllowAsk {
		return nil
	}

	skew := imbalance * halfSpread * g.cfg.ImbalanceSkew

	layers := make([]QuoteLayer, 0, 2*g.cfg.NumLayers)
	for i := 0; i < g.cfg.NumLayers; i++ {
		offset := float64(i) * g.cfg.LayerStep
		qty := d.SizeMultiplier * g.cfg.BaseSize / (1 + g.cfg.Decay*float64(i))
		if qty <= 0 {
			continue
		}

		if d.AllowBid {
			price := reservationPrice - halfSpread - offset + skew
			if price > 0 {
				layers = append(layers, QuoteLayer{Side: Bid, Layer: i, Price: price, Qty: qty})
			}
		}
		if d.AllowAsk {
			price := reservationPrice + halfSpread + offset - skew
			if price > 0 {
				layers = append(layers, QuoteLayer{Side: Ask, Layer: i, Price: price, Qty: qty})
			}
		}
	}
	return layers
}
