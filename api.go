// Package overthrower (see doc.go for the full picture).
package overthrower

import (
	"os"

	internal "github.com/kolkov/overthrower/internal/overentry"
)

// Activate resets the allocation sequence counter, (re-)reads the
// OVERTHROWER_* environment variables, prints the activation banner to
// stderr, and begins intercepting malloc/free/realloc. Calling Activate
// again while already active is benign: it simply starts a fresh ledger
// with freshly reloaded configuration, matching spec scenario 6 ("double
// activation").
//
// This is the Go-side implementation backing the exported C symbol
// activateOverthrower (see cmd/liboverthrower).
func Activate() {
	internal.Activate(os.LookupEnv)
}

// Deactivate stops interception, clears the calling thread's trace state,
// and reports (and clears) any allocation still outstanding since the last
// Activate. The returned count is what deactivateOverthrower() returns to
// C callers.
func Deactivate() uint {
	return uint(internal.Deactivate())
}

// Pause suspends failure injection on the calling thread for the next d
// intercepted allocations, which pass through unconditionally. d == 0
// means "until the matching Resume". Pauses nest: a LIFO stack up to 16
// deep, after which further pushes overwrite the top slot in place and log
// an overflow warning rather than growing unbounded.
//
// This is the Go-side implementation backing the exported C symbol
// pauseOverthrower.
func Pause(d uint32) {
	internal.Pause(d)
}

// Resume ends the most recently started Pause on the calling thread.
// Calling Resume with nothing paused logs an underflow warning and is
// otherwise a no-op.
//
// This is the Go-side implementation backing the exported C symbol
// resumeOverthrower.
func Resume() {
	internal.Resume()
}

// Active reports whether Activate has run without a matching Deactivate.
func Active() bool {
	return internal.Active()
}
