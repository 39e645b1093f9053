// Package overconfig reads and validates the OVERTHROWER_* environment
// variables that activate() consults, drawing random fallbacks from
// /dev/urandom.
package overconfig

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Strategy selects which failure-decision algorithm the strategy engine
// runs. The numeric values match the OVERTHROWER_STRATEGY contract.
type Strategy uint32

const (
	StrategyRandom Strategy = iota
	StrategyStep
	StrategyPulse
	StrategyNone
)

func (s Strategy) String() string {
	switch s {
	case StrategyRandom:
		return "random"
	case StrategyStep:
		return "step"
	case StrategyPulse:
		return "pulse"
	case StrategyNone:
		return "none"
	default:
		return "unknown"
	}
}

// Verbosity controls how much is printed to stderr on each intercepted call.
type Verbosity uint32

const (
	VerboseNo Verbosity = iota
	VerboseFailed
	VerboseAll
)

// Range bounds for each environment variable.
const (
	StrategyMin = uint64(StrategyRandom)
	StrategyMax = uint64(StrategyNone)

	SeedMin = uint64(0)
	SeedMax = uint64(0xFFFFFFFF)

	DutyCycleMin = uint64(1)
	DutyCycleMax = uint64(4096)

	// DelayMax is the validated upper bound for an explicitly supplied
	// OVERTHROWER_DELAY. RandomDelayDefaultMax bounds the value drawn when
	// the variable is unset: the original source distinguishes
	// MAX_RANDOM_DELAY (1000) from MAX_DELAY (1_000_000).
	DelayMin              = uint64(0)
	DelayMax              = uint64(1_000_000)
	RandomDelayDefaultMax = uint64(1000)

	DurationMin = uint64(1)
	DurationMax = uint64(100)

	VerboseMin = uint64(VerboseNo)
	VerboseMax = uint64(VerboseAll)
)

// Config is the process-wide set of parameters chosen by the most recent
// activate() call.
type Config struct {
	Strategy      Strategy
	Seed          uint32
	DutyCycle     uint32
	Delay         uint32
	Duration      uint32
	SelfOverthrow bool
	Verbose       Verbosity
}

// envLookup abstracts os.Getenv/os.LookupEnv so tests can supply a fake
// environment without mutating the real process environment.
type envLookup func(name string) (string, bool)

// Load reads the OVERTHROWER_* environment variables, validates them, and
// returns the resolved Config plus the banner lines that activate() should
// print to stderr (one line per chosen parameter, in the order they were
// resolved). Invalid or unset variables fall back to a value drawn from
// /dev/urandom, except OVERTHROWER_VERBOSE, which falls back to 0; each
// fallback produces its own warning line.
func Load(lookup envLookup) (Config, []string) {
	var cfg Config
	var lines []string

	note := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	strategyVal := readVar(lookup, "OVERTHROWER_STRATEGY", StrategyMin, StrategyMax, note,
		func() uint64 { return randomInRangeDefault(StrategyMin, StrategyMax+1) })
	cfg.Strategy = Strategy(strategyVal)
	note("Strategy = %s", cfg.Strategy)

	switch cfg.Strategy {
	case StrategyRandom:
		cfg.Seed = uint32(readVar(lookup, "OVERTHROWER_SEED", SeedMin, SeedMax, note, randomSeed))
		cfg.DutyCycle = uint32(readVar(lookup, "OVERTHROWER_DUTY_CYCLE", DutyCycleMin, DutyCycleMax, note,
			func() uint64 { return randomInRangeDefault(DutyCycleMin, DutyCycleMax+1) }))
		note("Seed = %d", cfg.Seed)
		note("Duty cycle = %d", cfg.DutyCycle)
	case StrategyStep:
		cfg.Delay = uint32(readVar(lookup, "OVERTHROWER_DELAY", DelayMin, DelayMax, note,
			func() uint64 { return randomInRangeDefault(DelayMin, RandomDelayDefaultMax+1) }))
		note("Delay = %d", cfg.Delay)
	case StrategyPulse:
		cfg.Delay = uint32(readVar(lookup, "OVERTHROWER_DELAY", DelayMin, DelayMax, note,
			func() uint64 { return randomInRangeDefault(DelayMin, RandomDelayDefaultMax+1) }))
		cfg.Duration = uint32(readVar(lookup, "OVERTHROWER_DURATION", DurationMin, DurationMax, note,
			func() uint64 { return randomInRangeDefault(DurationMin, DurationMax+1) }))
		note("Delay = %d", cfg.Delay)
		note("Duration = %d", cfg.Duration)
	case StrategyNone:
		// No further parameters.
	}

	if _, present := lookup("OVERTHROWER_SELF_OVERTHROW"); present {
		cfg.SelfOverthrow = true
		note("Self overthrow = enabled")
	}

	verboseVal := readVar(lookup, "OVERTHROWER_VERBOSE", VerboseMin, VerboseMax, note,
		func() uint64 { return VerboseMin })
	cfg.Verbose = Verbosity(verboseVal)
	note("Verbose mode = %d", cfg.Verbose)

	return cfg, lines
}

// readVar resolves one environment variable: unset or out-of-range values
// fall back to fallback() and emit a warning via note; a well-formed value
// in range is returned untouched.
func readVar(lookup envLookup, name string, min, max uint64, note func(string, ...interface{}), fallback func() uint64) uint64 {
	raw, present := lookup(name)
	if !present {
		v := fallback()
		note("%s environment variable not set. Using a random value (%d).", name, v)
		return v
	}

	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value < min || value > max {
		v := fallback()
		note("%s has incorrect value (%s). Using a random value (%d).", name, raw, v)
		return v
	}
	return value
}

// randomInRangeDefault draws a value in [min, max) from /dev/urandom,
// falling back to the midpoint of the range if the device cannot be read.
func randomInRangeDefault(min, max uint64) uint64 {
	if max <= min {
		return min
	}
	span := max - min
	v, err := readURandomUint32()
	if err != nil {
		return min + (span / 2)
	}
	return min + (uint64(v) % span)
}

// randomSeed draws a full-range uint32 seed, matching OVERTHROWER_SEED's
// documented range of 0..UINT_MAX.
func randomSeed() uint64 {
	v, err := readURandomUint32()
	if err != nil {
		return 0
	}
	return uint64(v)
}

// readURandomUint32 reads four bytes from /dev/urandom using a raw file
// descriptor (golang.org/x/sys/unix), matching the spec's literal
// "/dev/urandom" requirement rather than the more abstract crypto/rand.
func readURandomUint32() (uint32, error) {
	fd, err := unix.Open("/dev/urandom", unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return 0, err
	}
	defer unix.Close(fd)

	var buf [4]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return 0, err
	}
	if n != len(buf) {
		return 0, io.ErrUnexpectedEOF
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}
