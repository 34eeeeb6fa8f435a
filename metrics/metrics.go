// Package metrics exposes Prometheus metrics for the quoting engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FairPrice = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_fair_price",
		Help: "Liquidity-weighted fair price estimate",
	})
	Imbalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_imbalance",
		Help: "Top-of-book volume imbalance in [-1, 1]",
	})
	ReservationPrice = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_reservation_price",
		Help: "Inventory-adjusted reservation price",
	})
	HalfSpread = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_half_spread",
		Help: "Optimal half spread",
	})
	VolatilityEstimate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_volatility",
		Help: "Rolling volatility estimate of the fair price",
	})
	InventoryNet = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_inventory_net",
		Help: "Signed net inventory",
	})
	RealizedPnL = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_realized_pnl",
		Help: "Cumulative realized PnL",
	})
	ActiveOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mm_active_orders",
		Help: "Number of live resting orders",
	})

	ToxicTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_toxic_ticks_total",
		Help: "Ticks vetoed by toxic flow detection",
	})
	DegenerateTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_degenerate_ticks_total",
		Help: "Ticks degraded due to an unusable book",
	})

	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_orders_submitted_total",
		Help: "Orders submitted to the venue",
	}, []string{"side"})
	OrdersCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_orders_cancelled_total",
		Help: "Orders cancelled on the venue",
	}, []string{"side"})
	OrdersFilled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_orders_filled_total",
		Help: "Orders fully filled",
	}, []string{"side"})
	ExecErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_exec_errors_total",
		Help: "Submit/cancel intents rejected by the venue",
	})
)

// UpdateTick refreshes the per-tick gauges in one place.
func UpdateTick(fair, imbalance, reservation, halfSpread, vol, inventory, realized float64, active int) {
	FairPrice.Set(fair)
	Imbalance.Set(imbalance)
	ReservationPrice.Set(reservation)
	HalfSpread.Set(halfSpread)
	VolatilityEstimate.Set(vol)
	InventoryNet.Set(inventory)
	RealizedPnL.Set(realized)
	ActiveOrders.Set(float64(active))
}

// StartServer serves /metrics on addr in a background goroutine.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
