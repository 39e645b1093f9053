// Command liboverthrower builds the C shared library real programs
// LD_PRELOAD (Linux) or link against via DYLD_INSERT_LIBRARIES (macOS):
//
//	go build -buildmode=c-shared -o liboverthrower.so ./cmd/liboverthrower
//
// It exports the four lifecycle entrypoints
// (activateOverthrower, deactivateOverthrower, pauseOverthrower,
// resumeOverthrower) plus, on each platform in its own file
// (malloc_linux.go / malloc_darwin.go), the actual interposed
// malloc/free/realloc. All of the decision logic lives in
// github.com/kolkov/overthrower and its internal/overentry package; this
// command is purely the cgo boundary.
package main

/*
#include <errno.h>

static void ot_set_enomem(void) {
	errno = ENOMEM;
}
*/
import "C"

import (
	"github.com/kolkov/overthrower"
)

// preActivateHook runs immediately before overthrower.Activate(). It is a
// no-op on Linux; malloc_darwin.go's init() replaces it with a stdio
// pre-warming step that only macOS needs.
var preActivateHook = func() {}

//export activateOverthrower
func activateOverthrower() {
	preActivateHook()
	overthrower.Activate()
}

//export deactivateOverthrower
func deactivateOverthrower() C.uint {
	return C.uint(overthrower.Deactivate())
}

//export pauseOverthrower
func pauseOverthrower(duration C.uint) {
	overthrower.Pause(uint32(duration))
}

//export resumeOverthrower
func resumeOverthrower() {
	overthrower.Resume()
}

// otIsActive backs the process-exit destructor in malloc_linux.go /
// malloc_darwin.go, which needs to know whether to print the implicit
// deactivation banner before calling deactivateOverthrower.
//
//export otIsActive
func otIsActive() C.int {
	if overthrower.Active() {
		return 1
	}
	return 0
}

// setErrnoENOMEM is shared by malloc_linux.go/malloc_darwin.go so both
// platforms report a forced failure identically.
func setErrnoENOMEM() {
	C.ot_set_enomem()
}

// main is required by cgo for -buildmode=c-shared but is never invoked:
// this binary has no meaningful entrypoint of its own, only exported
// symbols.
func main() {}
