//go:build cgo && (linux || darwin)

package overstate

/*
// The three fields spec.md §5 requires to be strictly per-OS-thread
// (is_tracing, the pause stack, depth) cannot be modeled with a goroutine
// key: a goroutine that calls into an interposed malloc/free/realloc is
// pinned to its current OS thread only for the duration of that one cgo
// call, but the *thread* itself, not the goroutine, is what the spec's
// reentrancy guard must track across calls. We therefore keep one opaque
// handle per OS thread in genuine C thread-local storage, and let the Go
// side own the actual ThreadState behind that handle.
static _Thread_local void* ot_thread_state_handle = 0;

static void* ot_get_thread_state_handle() {
	return ot_thread_state_handle;
}

static void ot_set_thread_state_handle(void* handle) {
	ot_thread_state_handle = handle;
}
*/
import "C"

import (
	pointer "github.com/mattn/go-pointer"
)

// ThreadState bundles everything the interposed entrypoints need that is
// private to one OS thread. Per spec.md §5 this needs no synchronization:
// only the owning OS thread ever touches it.
type ThreadState struct {
	Pause       PauseStack
	IsTracing   bool
	Initialized bool
}

// Current returns the ThreadState for the calling OS thread, creating and
// registering one on first use. The handle stored in C thread-local storage
// is a github.com/mattn/go-pointer token rather than a raw Go pointer,
// since storing an actual Go pointer in C memory would violate cgo's
// pointer-passing rules.
func Current() *ThreadState {
	if h := C.ot_get_thread_state_handle(); h != nil {
		if ts, ok := pointer.Restore(h).(*ThreadState); ok {
			return ts
		}
	}

	ts := &ThreadState{}
	handle := pointer.Save(ts)
	C.ot_set_thread_state_handle(handle)
	return ts
}

// releaseForTesting drops the current thread's registered handle. Exposed
// only to tests in this package, which otherwise leak a pointer.Save token
// per test binary OS thread.
func releaseForTesting() {
	if h := C.ot_get_thread_state_handle(); h != nil {
		pointer.Unref(h)
		C.ot_set_thread_state_handle(nil)
	}
}

// ResetForTesting drops the calling OS thread's registered ThreadState so a
// subsequent Current() starts from a clean slate. Other packages' tests
// (overentry's in particular) need this because Go's test runner can reuse
// the same OS thread across table-driven subtests.
func ResetForTesting() {
	releaseForTesting()
}
