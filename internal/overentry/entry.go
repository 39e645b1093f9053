// Package overentry implements the interposed malloc/free/realloc
// entrypoints and the activate/deactivate/pause/resume lifecycle that
// drives them. It is the one package that wires overconfig, overstrategy,
// overstate, overalloc, overplatform, and classifier together along a
// single call path that cannot be separated without breaking the ordering
// guarantees allocation interposition depends on.
//
// State here is process-wide, package-level singleton state rather than a
// struct threaded through every call -- appropriate for a library whose
// entire public surface is four C-linkage functions with no receiver to
// hang state off.
package overentry

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/kolkov/overthrower/internal/classifier"
	"github.com/kolkov/overthrower/internal/overalloc"
	"github.com/kolkov/overthrower/internal/overconfig"
	"github.com/kolkov/overthrower/internal/overplatform"
	"github.com/kolkov/overthrower/internal/overstate"
	"github.com/kolkov/overthrower/internal/overstrategy"
)

// runtimeState is everything activate() builds fresh and deactivate()
// discards. Swapped atomically so the hot path never takes a lock to read
// it (spec.md §5: "Process-wide config flags ... reads from the hot path
// may be unsynchronized").
type runtimeState struct {
	cfg    overconfig.Config
	engine *overstrategy.Engine
	ledger *overalloc.Ledger
	side   *overalloc.SideAllocator
}

func (s *runtimeState) selfOverthrowFails() bool {
	return s != nil && s.cfg.SelfOverthrow && s.engine.CoinFlip()
}

var (
	active     atomic.Bool
	seqCounter atomic.Uint32
	state      atomic.Pointer[runtimeState]

	out io.Writer = os.Stderr

	// Seams overridden only by this package's tests, matching the
	// override-free-function pattern overstate.releaseForTesting already
	// uses for the same reason (no production code ever needs the hook).
	realOverride   *overplatform.Real
	captureStackFn = classifier.CaptureNativeStack
	classifyFn     = classifier.Classify
	memcpyFn       = overplatform.Memcpy
)

func currentReal() (overplatform.Real, error) {
	if realOverride != nil {
		return *realOverride, nil
	}
	return overplatform.Resolve()
}

// Active reports whether activate() has run without a matching deactivate().
func Active() bool { return active.Load() }

// EnvLookup abstracts os.LookupEnv so Activate can be driven by a fake
// environment in tests without mutating the real process environment. It
// is a type alias, not a distinct defined type, so a value of this type
// can be passed straight through to overconfig.Load's own lookup parameter.
type EnvLookup = func(name string) (string, bool)

// Activate resets the allocation counter, (re-)loads configuration from the
// environment, and prints the activation banner. Calling it twice is
// benign, matching spec.md §4.10: the second call simply re-reads
// configuration and starts a fresh ledger.
func Activate(lookup EnvLookup) {
	real, err := currentReal()
	if err != nil {
		real = overplatform.Real{}
	}

	cfg, lines := overconfig.Load(lookup)
	side := &overalloc.SideAllocator{RealMalloc: real.Malloc, RealFree: real.Free}
	st := &runtimeState{
		cfg:    cfg,
		engine: overstrategy.New(cfg),
		ledger: overalloc.New(side),
		side:   side,
	}

	state.Store(st)
	seqCounter.Store(0)

	fmt.Fprintln(out, "overthrower got activation signal.")
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	active.Store(true)
}

// Deactivate clears active, resets the calling thread's trace state, drains
// the ledger (reporting any outstanding blocks to stderr), and returns how
// many blocks had leaked -- the value deactivateOverthrower() returns to C
// callers.
func Deactivate() uint32 {
	active.Store(false)
	fmt.Fprintln(out, "overthrower got deactivation signal.")

	ts := overstate.Current()
	ts.Pause = overstate.PauseStack{}
	ts.IsTracing = false

	st := state.Load()
	if st == nil {
		return 0
	}
	return uint32(st.ledger.DrainAndReport(out))
}

// Pause pushes a new pass-through countdown onto the calling thread's pause
// stack. d == 0 means "until Resume".
func Pause(d uint32) {
	ts := overstate.Current()
	if overflow := ts.Pause.Push(d); overflow {
		fmt.Fprintln(out, "pause stack overflow detected.")
	}
}

// Resume pops the calling thread's most recent pause.
func Resume() {
	ts := overstate.Current()
	if underflow := ts.Pause.Pop(); underflow {
		fmt.Fprintln(out, "pause stack underflow detected.")
	}
}

// classify runs the reentrancy guard described in spec.md §4.5: if the
// calling thread is already tracing (a nested allocation made by the
// classifier/ledger/verbose-printing code itself), it is whitelisted
// without walking the stack again. Otherwise the top pause slot is raised
// to infinite for the duration of the walk so the classifier's own
// allocations can never be decided by the strategy engine or recorded in
// the ledger.
func classify(ts *overstate.ThreadState) (whitelisted, ignored bool) {
	if ts.IsTracing {
		return true, false
	}
	ts.IsTracing = true
	prevTop := ts.Pause.RaiseToInfinite()

	frames := captureStackFn(classifier.MaxStackDepth)
	result := classifyFn(frames)

	ts.Pause.Restore(prevTop)
	ts.IsTracing = false
	return result.Whitelisted, result.Ignored
}

// reportVerbose prints a "### <label> allocation ###" stack record to
// stderr, itself running behind the reentrancy guard so its own allocations
// (stack capture, demangling) never recurse into the strategy engine.
func reportVerbose(ts *overstate.ThreadState, label string, seqNum uint32) {
	ts.IsTracing = true
	prevTop := ts.Pause.RaiseToInfinite()

	fmt.Fprintf(out, "\n### %s allocation, sequential number: %d ###\n", label, seqNum)
	for _, f := range captureStackFn(classifier.MaxStackDepthVerbose) {
		demangled, _ := classifier.Demangle(f.Symbol)
		fmt.Fprintf(out, "#%-2d %s\n", f.Depth, demangled)
	}

	ts.Pause.Restore(prevTop)
	ts.IsTracing = false
}

// nativeMalloc is the side-allocation primitive every allocation in this
// package ultimately goes through: the real native malloc, subject to the
// self-overthrow coin-flip that simulates a resource-exhausted host even
// when overthrower itself would have let the call succeed.
func nativeMalloc(real overplatform.Real, st *runtimeState, size uintptr) uintptr {
	if st.selfOverthrowFails() {
		return 0
	}
	if real.Malloc == nil {
		return 0
	}
	return real.Malloc(size)
}

// Malloc implements the interposed malloc(size) entrypoint, spec.md §4.7.
// enomem reports whether the caller (the cgo trampoline in
// cmd/liboverthrower) must explicitly set errno = ENOMEM: true for the two
// synthetic-failure paths (the strategy engine forcing a failure, and a
// failed ledger insert needing rollback) and when the platform shim could
// not resolve the native allocator at all. A null return with enomem==false
// means the underlying native allocator itself already failed and, on a
// real libc, already set errno.
func Malloc(size uintptr) (ptr uintptr, enomem bool) {
	real, err := currentReal()
	if err != nil {
		return 0, true
	}

	if !active.Load() {
		return nativeMalloc(real, nil, size), false
	}

	st := state.Load()
	if st == nil {
		return nativeMalloc(real, nil, size), false
	}

	ts := overstate.Current()
	whitelisted, ignored := classify(ts)

	if ts.Pause.ConsultAndAdvance() {
		return nativeMalloc(real, st, size), false
	}

	seqNum := seqCounter.Add(1) - 1

	if whitelisted || size == 0 {
		return nativeMalloc(real, st, size), false
	}

	if st.engine.FailNow(seqNum) {
		if st.cfg.Verbose == overconfig.VerboseFailed || st.cfg.Verbose == overconfig.VerboseAll {
			reportVerbose(ts, "Failed", seqNum)
		}
		return 0, true
	}

	ptr = nativeMalloc(real, st, size)
	if ptr == 0 {
		return 0, false // real OOM (or self-overthrow), not a synthetic failure.
	}

	if !ignored {
		if ok := st.ledger.Insert(ptr, overalloc.Entry{SeqNum: seqNum, Size: size}); !ok {
			st.side.Release(ptr)
			return 0, true
		}
		if st.cfg.Verbose == overconfig.VerboseAll {
			reportVerbose(ts, "Successful", seqNum)
		}
	}

	return ptr, false
}

// Free implements the interposed free(p) entrypoint, spec.md §4.8.
// free(NULL) is a documented no-op and must never touch the platform shim.
func Free(ptr uintptr) {
	if ptr == 0 {
		return
	}

	real, err := currentReal()
	if err != nil {
		return
	}

	if active.Load() {
		if st := state.Load(); st != nil {
			st.ledger.Remove(ptr)
		}
	}

	if real.Free != nil {
		real.Free(ptr)
	}
}

// Realloc implements the interposed realloc(p, n) entrypoint, spec.md
// §4.9: realloc(NULL, n) defers to Malloc; realloc(p, 0) frees and returns
// null; an untracked pointer is delegated straight to the native realloc;
// a tracked pointer is relocated via Malloc+memcpy+Free so the new block
// goes through the same failure-injection path as any other allocation.
func Realloc(ptr uintptr, size uintptr) (newPtr uintptr, enomem bool) {
	if ptr == 0 {
		return Malloc(size)
	}
	if size == 0 {
		Free(ptr)
		return 0, false
	}

	real, err := currentReal()
	if err != nil {
		return 0, true
	}

	if !active.Load() {
		return real.Realloc(ptr, size), false
	}

	st := state.Load()
	if st == nil {
		return real.Realloc(ptr, size), false
	}

	entry, tracked := st.ledger.Lookup(ptr)
	if !tracked {
		return real.Realloc(ptr, size), false
	}

	newPtr, enomem = Malloc(size)
	if newPtr == 0 {
		return 0, enomem // old block preserved; caller may retry.
	}

	copySize := entry.Size
	if size < copySize {
		copySize = size
	}
	memcpyFn(newPtr, ptr, copySize)

	Free(ptr)
	return newPtr, false
}
