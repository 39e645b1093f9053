// Package overstrategy implements the four allocation-failure scheduling
// strategies (§4.3): a sequence number is reserved on the hot path whether
// or not the call will ultimately fail, so counts stay stable regardless of
// which strategy is active.
package overstrategy

import (
	"math/rand"

	"github.com/kolkov/overthrower/internal/overconfig"
)

// Engine decides, for a given reserved sequence number, whether the
// allocation that owns it should be forced to fail.
type Engine struct {
	strategy  overconfig.Strategy
	dutyCycle uint32
	delay     uint32
	duration  uint32
	rng       *rand.Rand
}

// New builds an Engine from a resolved Config. The PRNG is seeded once,
// here, for the lifetime of the activation cycle.
func New(cfg overconfig.Config) *Engine {
	return &Engine{
		strategy:  cfg.Strategy,
		dutyCycle: cfg.DutyCycle,
		delay:     cfg.Delay,
		duration:  cfg.Duration,
		rng:       rand.New(rand.NewSource(int64(cfg.Seed))),
	}
}

// FailNow reports whether the allocation carrying sequence number n should
// be forced to fail. n must already have been reserved by the caller
// (fetch-added from the global counter) before this is called.
func (e *Engine) FailNow(n uint32) bool {
	switch e.strategy {
	case overconfig.StrategyRandom:
		if e.dutyCycle == 0 {
			return false
		}
		return e.rng.Uint32()%e.dutyCycle == 0
	case overconfig.StrategyStep:
		return n >= e.delay
	case overconfig.StrategyPulse:
		return n > e.delay && n <= e.delay+e.duration
	case overconfig.StrategyNone:
		return false
	default:
		return false
	}
}

// CoinFlip draws a single pass/fail bit from the same PRNG stream, used by
// the self-overthrow mode to fail roughly half of the otherwise-successful
// native allocations.
func (e *Engine) CoinFlip() bool {
	return e.rng.Uint32()%2 == 0
}
