package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mm-engine-go/logger"
	"mm-engine-go/order"
	"mm-engine-go/strategy"
)

// Config holds the full runtime configuration. Loaded and validated once at
// startup; the engine sees an immutable copy for its lifetime.
type Config struct {
	Env         string         `yaml:"env"`
	MetricsAddr string         `yaml:"metrics_addr"`
	MonitorAddr string         `yaml:"monitor_addr"`
	Logging     logger.Config  `yaml:"logging"`
	Strategy    StrategyConfig `yaml:"strategy"`
	Momentum    MomentumConfig `yaml:"momentum"`
	Risk        RiskConfig     `yaml:"risk"`
	Sim         SimConfig      `yaml:"sim"`
}

// StrategyConfig parameterizes the quoting pipeline.
type StrategyConfig struct {
	Gamma               float64 `yaml:"gamma"`                // risk aversion, > 0
	InitialKappa        float64 `yaml:"initial_kappa"`        // book liquidity decay, > 0
	RefitKappa          bool    `yaml:"refit_kappa"`          // re-fit kappa from depth each tick
	MaxInventory        float64 `yaml:"max_inventory"`        // hard position limit, > 0
	VolatilityThreshold float64 `yaml:"volatility_threshold"` // toxic-flow cutoff, > 0
	VolatilityWindow    int     `yaml:"volatility_window"`    // rolling price samples, >= 2
	DepthLevels         int     `yaml:"depth_levels"`         // book levels for the fair price
	MinSpread           float64 `yaml:"min_spread"`
	ReconcileTolerance  float64 `yaml:"reconcile_tolerance"`
	BaseOrderSize       float64 `yaml:"base_order_size"` // > 0
	NumLayers           int     `yaml:"num_layers"`      // >= 1
	LayerStep           float64 `yaml:"layer_step"`
	LayerDecay          float64 `yaml:"layer_decay"`
	ImbalanceSkew       float64 `yaml:"imbalance_skew"` // in [0, 1]
}

// MomentumConfig parameterizes the trend-following variant.
type MomentumConfig struct {
	Lookback      int     `yaml:"lookback"`
	Threshold     float64 `yaml:"threshold"`
	PositionSize  float64 `yaml:"position_size"`
	StopLossPct   float64 `yaml:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct"`
}

// RiskConfig holds the pre-order guard limits. Zero disables a limit.
type RiskConfig struct {
	MaxNotional float64 `yaml:"max_notional"`
	MaxQty      float64 `yaml:"max_qty"`
}

// SimConfig drives the simulated venue.
type SimConfig struct {
	Mode           string  `yaml:"mode"` // synthetic or replay
	ReplayPath     string  `yaml:"replay_path"`
	InitialCapital float64 `yaml:"initial_capital"`
	Ticks          int     `yaml:"ticks"`
	Seed           int64   `yaml:"seed"`
	StartPrice     float64 `yaml:"start_price"`
	StepSigma      float64 `yaml:"step_sigma"` // random-walk step stddev
	TickSize       float64 `yaml:"tick_size"`
	BookDepth      int     `yaml:"book_depth"` // levels per side
	LevelQty       float64 `yaml:"level_qty"`  // base qty at the touch
}

// Default returns the baseline configuration the simulator ships with.
func Default() Config {
	return Config{
		Env:         "dev",
		MetricsAddr: ":9090",
		Logging:     logger.DefaultConfig(),
		Strategy: StrategyConfig{
			Gamma:               0.001,
			InitialKappa:        0.1,
			MaxInventory:        5,
			VolatilityThreshold: 5,
			VolatilityWindow:    60,
			DepthLevels:         20,
			ReconcileTolerance:  1e-9,
			BaseOrderSize:       0.01,
			NumLayers:           2,
			LayerStep:           0.5,
			LayerDecay:          0.5,
		},
		Momentum: MomentumConfig{
			Lookback:      20,
			Threshold:     0.001,
			PositionSize:  0.01,
			StopLossPct:   0.005,
			TakeProfitPct: 0.01,
		},
		Sim: SimConfig{
			Mode:           "synthetic",
			InitialCapital: 10000,
			Ticks:          10000,
			Seed:           42,
			StartPrice:     50000,
			StepSigma:      0.5,
			TickSize:       0.1,
			BookDepth:      25,
			LevelQty:       1,
		},
	}
}

// Load reads YAML config from path over the defaults and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects parameter combinations the pipeline cannot run with.
// A failure here is fatal at startup; nothing is re-validated per tick.
func Validate(cfg Config) error {
	s := cfg.Strategy
	if s.Gamma <= 0 {
		return ErrInvalid("strategy.gamma must be > 0")
	}
	if s.InitialKappa <= 0 {
		return ErrInvalid("strategy.initial_kappa must be > 0")
	}
	if s.MaxInventory <= 0 {
		return ErrInvalid("strategy.max_inventory must be > 0")
	}
	if s.VolatilityThreshold <= 0 {
		return ErrInvalid("strategy.volatility_threshold must be > 0")
	}
	if s.VolatilityWindow < 2 {
		return ErrInvalid("strategy.volatility_window must be >= 2")
	}
	if s.DepthLevels < 1 {
		return ErrInvalid("strategy.depth_levels must be >= 1")
	}
	if s.BaseOrderSize <= 0 {
		return ErrInvalid("strategy.base_order_size must be > 0")
	}
	if s.NumLayers < 1 {
		return ErrInvalid("strategy.num_layers must be >= 1")
	}
	if s.LayerStep < 0 {
		return ErrInvalid("strategy.layer_step must be >= 0")
	}
	if s.LayerDecay < 0 {
		return ErrInvalid("strategy.layer_decay must be >= 0")
	}
	if s.MinSpread < 0 {
		return ErrInvalid("strategy.min_spread must be >= 0")
	}
	if s.ReconcileTolerance < 0 {
		return ErrInvalid("strategy.reconcile_tolerance must be >= 0")
	}
	if s.ImbalanceSkew < 0 || s.ImbalanceSkew > 1 {
		return ErrInvalid("strategy.imbalance_skew must be in [0, 1]")
	}
	if cfg.Risk.MaxNotional < 0 || cfg.Risk.MaxQty < 0 {
		return ErrInvalid("risk limits must be >= 0")
	}
	m := cfg.Momentum
	if m.Lookback < 2 {
		return ErrInvalid("momentum.lookback must be >= 2")
	}
	if m.PositionSize <= 0 {
		return ErrInvalid("momentum.position_size must be > 0")
	}
	switch cfg.Sim.Mode {
	case "synthetic":
		if cfg.Sim.StartPrice <= 0 {
			return ErrInvalid("sim.start_price must be > 0")
		}
		if cfg.Sim.BookDepth < 1 {
			return ErrInvalid("sim.book_depth must be >= 1")
		}
	case "replay":
		if cfg.Sim.ReplayPath == "" {
			return ErrInvalid("sim.replay_path is required in replay mode")
		}
	default:
		return ErrInvalid(fmt.Sprintf("sim.mode must be synthetic or replay, got %q", cfg.Sim.Mode))
	}
	return nil
}

// ErrInvalid is a fatal configuration error.
type ErrInvalid string

func (e ErrInvalid) Error() string { return string(e) }

// EngineParams translates the strategy section into pipeline parameters.
func (c Config) EngineParams() strategy.EngineParams {
	s := c.Strategy
	return strategy.EngineParams{
		Gamma:               s.Gamma,
		InitialKappa:        s.InitialKappa,
		RefitKappa:          s.RefitKappa,
		MaxInventory:        s.MaxInventory,
		VolatilityThreshold: s.VolatilityThreshold,
		VolatilityWindow:    s.VolatilityWindow,
		DepthLevels:         s.DepthLevels,
		MinSpread:           s.MinSpread,
		ReconcileTolerance:  s.ReconcileTolerance,
		Layers: order.LayerConfig{
			BaseSize:      s.BaseOrderSize,
			NumLayers:     s.NumLayers,
			LayerStep:     s.LayerStep,
			Decay:         s.LayerDecay,
			ImbalanceSkew: s.ImbalanceSkew,
		},
	}
}

// MomentumParams translates the momentum section.
func (c Config) MomentumParams() strategy.MomentumParams {
	m := c.Momentum
	return strategy.MomentumParams{
		Lookback:      m.Lookback,
		Threshold:     m.Threshold,
		PositionSize:  m.PositionSize,
		StopLossPct:   m.StopLossPct,
		TakeProfitPct: m.TakeProfitPct,
	}
}
