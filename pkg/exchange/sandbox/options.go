package sandbox

import (
	"math/rand"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

type SlippageModel int

const (
	SlippageLinear SlippageModel = iota
	SlippageLogarithmic
	SlippageSqrt
)

func (m SlippageModel) String() string {
	switch m {
	case SlippageLinear:
		return "linear"
	case SlippageLogarithmic:
		return "logarithmic"
	case SlippageSqrt:
		return "sqrt"
	default:
		return "unknown"
	}
}

// SlippageConfig controls how execution prices deviate from quoted prices as
// order size grows relative to book depth.
type SlippageConfig struct {
	Model        SlippageModel
	ImpactFactor fixed.Point // k in price*(1+k*f(amount/depth))

	// MaxSlippageBps caps the adjustment; it is also the slippage charged
	// when the opposing side has no depth at all.
	MaxSlippageBps fixed.Point

	// DepthLevels is how many opposing levels count towards depth.
	DepthLevels int

	EnablePartialFills bool

	// ApplyToLimit extends slippage to limit fills. Default is market-only.
	ApplyToLimit bool
}

func DefaultSlippageConfig() SlippageConfig {
	return SlippageConfig{
		Model:          SlippageLinear,
		ImpactFactor:   fixed.FromInt64(1, 2),   // 0.01
		MaxSlippageBps: fixed.FromInt64(100, 0), // 1%
		DepthLevels:    5,
	}
}

type Regime int

const (
	RegimeCalm Regime = iota
	RegimeVolatile
	RegimeTrending
)

func (r Regime) String() string {
	switch r {
	case RegimeCalm:
		return "calm"
	case RegimeVolatile:
		return "volatile"
	case RegimeTrending:
		return "trending"
	default:
		return "unknown"
	}
}

// DynamicsConfig drives the synthetic market process: a volatility increment
// scaled by sqrt(dt), a deterministic trend drift, and probabilistic regime
// switches that rescale both.
type DynamicsConfig struct {
	Volatility fixed.Point // fraction of mid per sqrt-second
	Trend      fixed.Point // fraction of mid per second, signed

	Regime           Regime
	RegimeChangeProb float64

	// BookRefreshTicks is how many ticks pass between book regenerations.
	// 1 regenerates every tick.
	BookRefreshTicks int

	// SpreadFraction is the half-spread as a fraction of mid.
	SpreadFraction fixed.Point

	// DepthProfile is the amount resting at each level away from the touch.
	DepthProfile []fixed.Point

	// LevelStep is the price distance between adjacent levels as a fraction
	// of the touch price.
	LevelStep fixed.Point

	// InitialMid seeds the book of a freshly added pair.
	InitialMid fixed.Point

	// LatencyTicks delays order eligibility to model network latency.
	LatencyTicks int
}

func DefaultDynamicsConfig() DynamicsConfig {
	return DynamicsConfig{
		Volatility:       fixed.FromInt64(2, 4), // 0.0002 per sqrt-second
		Trend:            fixed.Zero,
		Regime:           RegimeCalm,
		RegimeChangeProb: 0.01,
		BookRefreshTicks: 1,
		SpreadFraction:   fixed.FromInt64(1, 3), // 0.001
		DepthProfile: []fixed.Point{
			fixed.FromInt64(10, 0),
			fixed.FromInt64(25, 0),
			fixed.FromInt64(50, 0),
		},
		LevelStep:  fixed.FromInt64(1, 3), // 0.001
		InitialMid: fixed.FromInt64(100, 0),
	}
}

type Option func(*Simulator)

func WithSlippage(cfg SlippageConfig) Option {
	return func(s *Simulator) {
		s.slippage = cfg
	}
}

func WithDynamics(cfg DynamicsConfig) Option {
	return func(s *Simulator) {
		s.dynamics = cfg
	}
}

// WithRand injects the random source. Runs with the same seed and the same
// strategy behavior produce identical fills.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		s.rng = rng
	}
}
