// Package overthrower is a fault-injecting allocator for exercising a
// native program's out-of-memory handling paths under test.
//
// overthrower interposes malloc, free, and realloc -- via LD_PRELOAD /
// dlsym(RTLD_NEXT, ...) symbol resolution on Linux, and a
// __DATA,__interpose substitution table on macOS -- and, once activated,
// deterministically or stochastically forces chosen allocations to return
// NULL, the same way a host that has genuinely run out of memory would.
// Code paths that are "obviously correct but never actually exercised"
// (a failed malloc inside a rarely hit error branch) become reachable on
// demand.
//
// # Quick Start
//
// overthrower is built as a C shared library (see cmd/liboverthrower) and
// preloaded in front of the program under test:
//
//	$ go build -buildmode=c-shared -o liboverthrower.so ./cmd/liboverthrower
//	$ LD_PRELOAD=./liboverthrower.so OVERTHROWER_STRATEGY=1 OVERTHROWER_DELAY=50 ./my_test_binary
//
// cmd/overthrower wraps that invocation:
//
//	$ overthrower run --strategy=step --delay=50 -- ./my_test_binary
//
// The target program calls the four lifecycle entrypoints around the code
// under test:
//
//	activateOverthrower();
//	// ... exercise code whose malloc failures must be reachable ...
//	unsigned int leaked = deactivateOverthrower();
//
// # API Overview
//
//   - Lifecycle: [Activate], [Deactivate], [Pause], [Resume]
//   - Failure strategies: OVERTHROWER_STRATEGY selects among RANDOM, STEP,
//     PULSE, and NONE -- see internal/overstrategy.
//   - Leak detection: every allocation that is checked against the failure
//     strategy and succeeds is tracked in a ledger until freed, unless the
//     classifier marks it ignored; paused, whitelisted and zero-size
//     allocations are not tracked. [Deactivate] reports anything still
//     outstanding.
//
// # How It Works
//
// Every intercepted call passes through, in order: a per-thread reentrancy
// guard, a native-stack classifier that recognizes allocations made by
// known-leaky C library internals, the per-thread pause stack, the
// configured failure strategy, the real allocator, and the allocation
// ledger. See internal/overentry for the orchestration and spec-grounded
// commentary on each step.
//
// # Compatibility
//
// Platform support:
//   - Operating systems: Linux (ELF/glibc), macOS (Mach-O)
//   - Requires cgo; there is no pure-Go fallback, because interposing a C
//     ABI symbol is inherently a native linkage concern.
//
// # Non-goals
//
// overthrower does not track allocations made before [Activate], does not
// intercept calloc/aligned_alloc/mmap or C++'s operator new directly
// (only the malloc/realloc/free they are typically implemented on top of),
// provides no signal-handler safety guarantee, and does not support
// fork(2)'d children resuming tracking on their own.
package overthrower
