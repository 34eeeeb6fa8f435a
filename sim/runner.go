package sim

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"mm-engine-go/order"
	"mm-engine-go/posttrade"
	"mm-engine-go/strategy"
)

// TrackedStrategy is a strategy whose order and inventory state the runner
// can observe for equity accounting.
type TrackedStrategy interface {
	strategy.Strategy
	Tracker() *order.Tracker
}

// Runner drives a strategy over a book source against the simulated venue:
// per tick it first matches resting orders so fills arrive before the
// snapshot, then hands the snapshot to the strategy, then samples equity.
type Runner struct {
	Source  BookSource
	Venue   *Venue
	Strat   TrackedStrategy
	Capital float64
	Log     *zap.Logger
}

// Run executes the full tick loop and returns the post-trade report.
// Stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (posttrade.Report, error) {
	if r.Source == nil || r.Venue == nil || r.Strat == nil {
		return posttrade.Report{}, errors.New("runner not initialized")
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	analyzer := posttrade.NewAnalyzer(r.Capital)
	pos := r.Strat.Tracker().Position()
	lastMid := 0.0

	for {
		select {
		case <-ctx.Done():
			log.Info("run cancelled")
			return analyzer.Report(), ctx.Err()
		default:
		}

		snap, ok := r.Source.Next()
		if !ok {
			break
		}

		r.Venue.Match(snap, func(id uint64, qty, price float64) {
			before := pos.RealizedPnL()
			r.Strat.OnFill(id, qty, price)
			analyzer.RecordFill(pos.RealizedPnL() - before)
		})

		r.Strat.OnTick(snap)

		if mid := snap.Mid(); mid > 0 {
			lastMid = mid
		}
		if lastMid > 0 {
			analyzer.RecordEquity(r.Capital + pos.RealizedPnL() + pos.Qty()*lastMid)
		}
	}

	report := analyzer.Report()
	log.Info("run complete",
		zap.String("strategy", r.Strat.Name()),
		zap.Int("fills", report.Fills),
		zap.Float64("total_pnl", report.TotalPnL),
		zap.Float64("max_drawdown", report.MaxDrawdown),
		zap.Float64("sharpe", report.SharpeRatio),
		zap.Float64("win_rate", report.WinRate))
	return report, nil
}
