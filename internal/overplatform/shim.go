// Package overplatform resolves the real, uninterposed malloc/free/realloc
// for the current platform: dlsym(RTLD_NEXT, ...) on Linux's ELF symbol
// chain, and a __DATA,__interpose substitution table on Darwin's Mach-O
// loader (spec.md §4.1, §10).
package overplatform

import "sync"

// Real collects the native allocator entry points once platform resolution
// has run. A zero-valued Real (all fields nil) is what a failed Resolve
// returns; calling through it would panic, so entry.go fails the
// allocation instead of calling it.
type Real struct {
	Malloc  func(size uintptr) uintptr
	Free    func(ptr uintptr)
	Realloc func(ptr uintptr, size uintptr) uintptr
}

// Ready reports whether every symbol the library needs was resolved.
func (r Real) Ready() bool {
	return r.Malloc != nil && r.Free != nil && r.Realloc != nil
}

var (
	resolveOnce sync.Once
	resolved    Real
	resolveErr  error
)

// Resolve locates the platform's real allocator entry points exactly once
// per process and caches the result; subsequent calls are free. The
// resolution strategy itself lives in shim_linux.go/shim_darwin.go behind
// the resolvePlatform build-tagged function.
func Resolve() (Real, error) {
	resolveOnce.Do(func() {
		resolved, resolveErr = resolvePlatform()
	})
	return resolved, resolveErr
}

// resetForTesting clears the memoized resolution so platform-shim tests can
// exercise Resolve more than once within a process. Only the test files in
// this package call it.
func resetForTesting() {
	resolveOnce = sync.Once{}
	resolved = Real{}
	resolveErr = nil
}
