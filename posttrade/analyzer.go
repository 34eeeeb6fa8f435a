package posttrade

import "math"

// Report summarizes a completed run.
type Report struct {
	InitialCapital float64
	FinalEquity    float64
	TotalPnL       float64
	TotalReturn    float64

	Fills         int
	WinningCloses int
	LosingCloses  int
	WinRate       float64

	MaxDrawdown float64 // peak-to-trough fraction of peak equity
	SharpeRatio float64 // per-sample, from equity curve returns

	EquityCurve []float64
}

// Analyzer accumulates per-tick equity samples and per-fill outcomes.
// Synchronous; the runner owns it and calls it from the tick loop.
type Analyzer struct {
	capital float64
	equity  []float64
	peak    float64
	maxDD   float64

	fills  int
	wins   int
	losses int
}

func NewAnalyzer(initialCapital float64) *Analyzer {
	if initialCapital <= 0 {
		initialCapital = 10000
	}
	return &Analyzer{capital: initialCapital, peak: initialCapital}
}

// RecordEquity appends one equity sample and tracks the running drawdown.
func (a *Analyzer) RecordEquity(equity float64) {
	a.equity = append(a.equity, equity)
	if equity > a.peak {
		a.peak = equity
	}
	if a.peak > 0 {
		if dd := (a.peak - equity) / a.peak; dd > a.maxDD {
			a.maxDD = dd
		}
	}
}

// RecordFill registers one fill and the realized PnL it produced.
// Opening fills realize nothing and count as neither win nor loss.
func (a *Analyzer) RecordFill(realizedDelta float64) {
	a.fills++
	if realizedDelta > 0 {
		a.wins++
	} else if realizedDelta < 0 {
		a.losses++
	}
}

// Report computes the final summary.
func (a *Analyzer) Report() Report {
	r := Report{
		InitialCapital: a.capital,
		FinalEquity:    a.capital,
		Fills:          a.fills,
		WinningCloses:  a.wins,
		LosingCloses:   a.losses,
		MaxDrawdown:    a.maxDD,
		EquityCurve:    a.equity,
	}
	if n := len(a.equity); n > 0 {
		r.FinalEquity = a.equity[n-1]
	}
	r.TotalPnL = r.FinalEquity - a.capital
	r.TotalReturn = r.TotalPnL / a.capital
	if closes := a.wins + a.losses; closes > 0 {
		r.WinRate = float64(a.wins) / float64(closes)
	}
	r.SharpeRatio = sharpe(a.equity)
	return r
}

func sharpe(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, (equity[i]-equity[i-1])/equity[i-1])
	}
	if len(returns) < 2 {
		return 0
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance)
}
