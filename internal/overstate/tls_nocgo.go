//go:build !cgo || (!linux && !darwin)

package overstate

// ThreadState bundles everything the interposed entrypoints need that is
// private to one OS thread. Per spec.md §5 this needs no synchronization:
// only the owning OS thread ever touches it. (This build's fallback below
// cannot actually provide that isolation -- see Current.)
type ThreadState struct {
	Pause       PauseStack
	IsTracing   bool
	Initialized bool
}

// process-wide fallback state for builds where tls_cgo.go's genuine
// per-OS-thread storage cannot be compiled (cgo disabled, or an OS other
// than Linux/Darwin). overplatform.resolvePlatform already fails
// unconditionally in this same configuration (see shim_other.go), which
// makes entry.go's Malloc and Realloc return null before Current is ever
// consulted on the hot path; this variable exists
// so the package still compiles and Pause/Resume/Active remain callable
// without panicking.
var fallback ThreadState

// Current returns the process-wide fallback ThreadState. It is shared
// across every goroutine and OS thread in this build configuration,
// unlike tls_cgo.go's genuine per-thread handle, because Go has no
// portable OS-thread-local storage without cgo. Safe only because
// overplatform has nothing real to resolve in this configuration either,
// so the hot path this state backs is never actually exercised.
func Current() *ThreadState {
	return &fallback
}

// ResetForTesting restores the fallback state to its zero value.
func ResetForTesting() {
	fallback = ThreadState{}
}
