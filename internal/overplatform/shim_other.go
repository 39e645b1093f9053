//go:build !cgo || (!linux && !darwin)

package overplatform

import "errors"

// resolvePlatform on an unsupported platform/build (spec.md's Non-goals
// exclude anything besides Linux/ELF and Darwin/Mach-O) always fails, so
// entry.go's Malloc and Realloc return null with enomem set and its Free
// does nothing.
func resolvePlatform() (Real, error) {
	return Real{}, errors.New("overplatform: fault injection is only supported on linux and darwin with cgo enabled")
}
