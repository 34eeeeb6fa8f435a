package strategy

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"mm-engine-go/market"
	"mm-engine-go/metrics"
	"mm-engine-go/monitor"
	"mm-engine-go/order"
	"mm-engine-go/risk"
)

// statusEvery controls how often the engine emits a status log line.
const statusEvery = 500

// Engine is the market-making decision pipeline. Each tick runs
// Signal -> Risk -> Spread -> Layering -> Reconcile over in-memory state;
// the only long-lived mutable state is inventory and the live-order map,
// both owned by the tracker.
type Engine struct {
	estimator *market.MicroPriceCalculator
	kappa     *market.KappaEstimator
	spread    *SpreadCalculator
	riskMgr   *risk.Manager
	layers    *order.LayerGenerator
	tracker   *order.Tracker

	pub *monitor.Publisher
	log *zap.Logger

	lastMid float64
	ticks   uint64
}

// NewEngine wires the pipeline. Parameters must come from a validated config;
// gamma is re-checked here because the spread formula divides by it.
func NewEngine(p EngineParams, gw order.Gateway, pub *monitor.Publisher, log *zap.Logger) (*Engine, error) {
	if p.Gamma <= 0 {
		return nil, errors.New("gamma must be positive")
	}
	if p.InitialKappa <= 0 {
		return nil, errors.New("initial kappa must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		estimator: market.NewMicroPriceCalculator(p.DepthLevels),
		kappa:     market.NewKappaEstimator(p.InitialKappa, p.DepthLevels, p.RefitKappa),
		spread:    NewSpreadCalculator(p.Gamma, p.MinSpread),
		riskMgr:   risk.NewManager(p.MaxInventory, p.VolatilityThreshold, p.VolatilityWindow),
		layers:    order.NewLayerGenerator(p.Layers),
		tracker:   order.NewTracker(gw, p.ReconcileTolerance),
		pub:       pub,
		log:       log,
	}, nil
}

func (e *Engine) Name() string { return "market_maker" }

// Tracker exposes the order tracker, the source of truth between ticks.
func (e *Engine) Tracker() *order.Tracker { return e.tracker }

// OnTick runs one pass of the decision pipeline. Degenerate market conditions
// degrade to a cancel-everything reconcile; a bad tick never leaves stale
// resting orders unmanaged and never aborts the run.
func (e *Engine) OnTick(snap market.Snapshot) {
	e.ticks++

	sig, ok := e.estimator.Estimate(snap)
	if !ok {
		e.degrade()
		return
	}
	e.lastMid = sig.Mid

	vol := e.riskMgr.Update(sig.FairPrice)
	qty := e.tracker.Position().Qty()
	decision := e.riskMgr.Assess(qty, vol)

	kappa := e.kappa.Estimate(snap)
	reservation, halfSpread := e.spread.Compute(sig.FairPrice, qty, vol, kappa)
	if !finite(reservation) || !finite(halfSpread) {
		decision = risk.Veto()
	}

	desired := e.layers.Generate(reservation, halfSpread, decision, sig.Imbalance)

	var err error
	if len(desired) == 0 {
		err = e.tracker.ClearAll()
	} else {
		err = e.tracker.Apply(desired)
	}
	if err != nil {
		metrics.ExecErrors.Inc()
		e.log.Warn("reconcile rejected intents", zap.Error(err))
	}
	if decision.Toxic {
		metrics.ToxicTicks.Inc()
		e.log.Warn("toxic flow veto",
			zap.Float64("volatility", vol),
			zap.Float64("inventory", qty))
	}

	pos := e.tracker.Position()
	stats := monitor.TickStats{
		Timestamp:        snap.Timestamp,
		FairPrice:        sig.FairPrice,
		Imbalance:        sig.Imbalance,
		ReservationPrice: reservation,
		HalfSpread:       halfSpread,
		Kappa:            kappa,
		InventoryQty:     pos.Qty(),
		RealizedPnL:      pos.RealizedPnL(),
		UnrealizedPnL:    pos.UnrealizedPnL(sig.Mid),
		ActiveLayers:     e.tracker.ActiveCount(),
		Volatility:       vol,
		Toxic:            decision.Toxic,
	}
	e.report(stats)
}

// OnFill processes a fill callback from the venue. Fills for unknown ids are
// logged and dropped; they cannot corrupt inventory.
func (e *Engine) OnFill(orderID uint64, filledQty, fillPrice float64) {
	o, known := e.tracker.Lookup(orderID)
	if !e.tracker.OnFill(orderID, filledQty, fillPrice) || !known {
		e.log.Warn("fill for unknown order", zap.Uint64("order_id", orderID))
		return
	}
	metrics.OrdersFilled.WithLabelValues(string(o.Side)).Inc()
	e.log.Info("fill",
		zap.Uint64("order_id", orderID),
		zap.String("side", string(o.Side)),
		zap.Float64("price", fillPrice),
		zap.Float64("qty", filledQty),
		zap.Int("layer", o.Layer),
		zap.Float64("inventory", e.tracker.Position().Qty()),
		zap.Float64("realized_pnl", e.tracker.Position().RealizedPnL()))
}

// OnCancelConfirm processes a venue-initiated cancel or expiry.
func (e *Engine) OnCancelConfirm(orderID uint64) {
	if !e.tracker.OnCancel(orderID) {
		e.log.Debug("cancel confirm for unknown order", zap.Uint64("order_id", orderID))
	}
}

func (e *Engine) degrade() {
	metrics.DegenerateTicks.Inc()
	if err := e.tracker.ClearAll(); err != nil {
		metrics.ExecErrors.Inc()
		e.log.Warn("cancel-all on degenerate tick", zap.Error(err))
	}
	pos := e.tracker.Position()
	e.report(monitor.TickStats{
		InventoryQty:  pos.Qty(),
		RealizedPnL:   pos.RealizedPnL(),
		UnrealizedPnL: pos.UnrealizedPnL(e.lastMid),
		ActiveLayers:  e.tracker.ActiveCount(),
		Degenerate:    true,
	})
}

func (e *Engine) report(s monitor.TickStats) {
	metrics.UpdateTick(s.FairPrice, s.Imbalance, s.ReservationPrice, s.HalfSpread,
		s.Volatility, s.InventoryQty, s.RealizedPnL, s.ActiveLayers)
	if e.pub != nil {
		e.pub.Publish(s)
	}
	if e.ticks%statusEvery == 0 {
		e.log.Info("status",
			zap.Uint64("tick", e.ticks),
			zap.Float64("fair_price", s.FairPrice),
			zap.Float64("imbalance", s.Imbalance),
			zap.Float64("volatility", s.Volatility),
			zap.Float64("inventory", s.InventoryQty),
			zap.Float64("realized_pnl", s.RealizedPnL),
			zap.Float64("unrealized_pnl", s.UnrealizedPnL),
			zap.Int("active_layers", s.ActiveLayers))
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
