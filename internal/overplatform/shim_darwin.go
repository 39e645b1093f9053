//go:build darwin && cgo

package overplatform

/*
#include <stdlib.h>

// Darwin has no RTLD_NEXT symbol chain to walk; instead the loader's
// __interpose mechanism hands the interposed function its own original,
// un-substituted counterpart as an argument when our __DATA,__interpose
// table (built in cmd/liboverthrower) routes calls through it. Until that
// wiring exists this shim falls back to libSystem's malloc/free/realloc
// directly, which is correct as long as nothing has interposed *them*
// first -- the same assumption cmd/liboverthrower's own table relies on.
static void* ot_real_malloc(size_t size) {
	return malloc(size);
}

static void ot_real_free(void* ptr) {
	free(ptr);
}

static void* ot_real_realloc(void* ptr, size_t size) {
	return realloc(ptr, size);
}
*/
import "C"

import "unsafe"

// resolvePlatform returns libSystem's malloc/free/realloc. Mach-O
// interposition (spec.md §4.1, §10) substitutes our exported symbols for
// these at load time via cmd/liboverthrower's __interpose table; this shim
// is what that substituted code calls back into.
func resolvePlatform() (Real, error) {
	return Real{
		Malloc: func(size uintptr) uintptr {
			return uintptr(C.ot_real_malloc(C.size_t(size)))
		},
		Free: func(ptr uintptr) {
			C.ot_real_free(unsafe.Pointer(ptr))
		},
		Realloc: func(ptr uintptr, size uintptr) uintptr {
			return uintptr(C.ot_real_realloc(unsafe.Pointer(ptr), C.size_t(size)))
		},
	}, nil
}
