package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mm-engine-go/config"
	"mm-engine-go/logger"
	"mm-engine-go/metrics"
	"mm-engine-go/monitor"
	"mm-engine-go/risk"
	"mm-engine-go/sim"
	"mm-engine-go/strategy"
)

// mmsim runs a strategy against the simulated venue: a random-walk synthetic
// book or a replayed CSV feed. Not connected to any real exchange.
func main() {
	cfgPath := flag.String("config", "", "path to yaml config; defaults are used when empty")
	stratName := flag.String("strategy", "mm", "strategy variant: mm or momentum")
	runs := flag.Int("runs", 1, "consecutive runs to execute")
	watch := flag.Bool("watch", false, "pick up config file edits between runs")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		metrics.StartServer(cfg.MetricsAddr)
		log.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	pub := monitor.NewPublisher()
	if cfg.MonitorAddr != "" {
		hub := monitor.NewHub(log)
		go hub.Run(pub.Subscribe())
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		go func() {
			if err := http.ListenAndServe(cfg.MonitorAddr, mux); err != nil {
				log.Warn("monitor server stopped", zap.Error(err))
			}
		}()
		log.Info("monitor listening", zap.String("addr", cfg.MonitorAddr))
	}

	// Config edits land in staged and take effect at the next run; a running
	// strategy always sees the config it started with.
	var mu sync.Mutex
	staged := cfg
	if *watch && *cfgPath != "" {
		w, err := config.NewWatcher(*cfgPath, 2*time.Second, log)
		if err != nil {
			log.Fatal("config watcher", zap.Error(err))
		}
		defer w.Close()
		if err := w.Start(ctx, func(c config.Config) {
			mu.Lock()
			staged = c
			mu.Unlock()
		}); err != nil {
			log.Fatal("config watcher", zap.Error(err))
		}
	}

	for i := 0; i < *runs; i++ {
		mu.Lock()
		runCfg := staged
		mu.Unlock()

		if err := runOnce(ctx, runCfg, *stratName, pub, log.With(zap.Int("run", i))); err != nil {
			if ctx.Err() != nil {
				log.Info("interrupted")
				return
			}
			log.Fatal("run failed", zap.Error(err))
		}
	}
}

func runOnce(ctx context.Context, cfg config.Config, stratName string, pub *monitor.Publisher, log *zap.Logger) error {
	guard := risk.MultiGuard{Guards: []risk.Guard{
		risk.NotionalGuard{MaxNotional: cfg.Risk.MaxNotional, MaxQty: cfg.Risk.MaxQty},
	}}
	venue := sim.NewVenue(guard)

	source, err := buildSource(cfg.Sim)
	if err != nil {
		return err
	}

	strat, err := buildStrategy(cfg, stratName, venue, pub, log)
	if err != nil {
		return err
	}
	log.Info("starting run",
		zap.String("strategy", strat.Name()),
		zap.String("mode", cfg.Sim.Mode))

	runner := &sim.Runner{
		Source:  source,
		Venue:   venue,
		Strat:   strat,
		Capital: cfg.Sim.InitialCapital,
		Log:     log,
	}
	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("strategy=%s fills=%d pnl=%.4f return=%.4f%% max_dd=%.4f%% sharpe=%.4f win_rate=%.2f%%\n",
		strat.Name(), report.Fills, report.TotalPnL, 100*report.TotalReturn,
		100*report.MaxDrawdown, report.SharpeRatio, 100*report.WinRate)
	return nil
}

func buildSource(cfg config.SimConfig) (sim.BookSource, error) {
	switch cfg.Mode {
	case "replay":
		return sim.NewReplayer(cfg.ReplayPath)
	default:
		return sim.NewSyntheticBook(sim.SyntheticConfig{
			StartPrice: cfg.StartPrice,
			StepSigma:  cfg.StepSigma,
			TickSize:   cfg.TickSize,
			Depth:      cfg.BookDepth,
			LevelQty:   cfg.LevelQty,
			Ticks:      cfg.Ticks,
			Seed:       cfg.Seed,
		}), nil
	}
}

func buildStrategy(cfg config.Config, name string, venue *sim.Venue, pub *monitor.Publisher, log *zap.Logger) (sim.TrackedStrategy, error) {
	switch name {
	case "mm":
		return strategy.NewEngine(cfg.EngineParams(), venue, pub, log)
	case "momentum":
		return strategy.NewMomentum(cfg.MomentumParams(), venue, log)
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
