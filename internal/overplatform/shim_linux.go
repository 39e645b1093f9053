//go:build linux && cgo

package overplatform

/*
#define _GNU_SOURCE
#include <dlfcn.h>
#include <stdlib.h>

typedef void* (*ot_malloc_fn)(size_t);
typedef void  (*ot_free_fn)(void*);
typedef void* (*ot_realloc_fn)(void*, size_t);

static void* ot_dlsym_next(int which) {
	static const char* const names[] = { "malloc", "free", "realloc" };
	return dlsym(RTLD_NEXT, names[which]);
}

static void* ot_call_malloc(ot_malloc_fn fn, size_t size) {
	return fn(size);
}

static void ot_call_free(ot_free_fn fn, void* ptr) {
	fn(ptr);
}

static void* ot_call_realloc(ot_realloc_fn fn, void* ptr, size_t size) {
	return fn(ptr, size);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// resolvePlatform finds the next malloc/free/realloc in the ELF symbol
// chain after this shared object, the way the original overthrower.cpp
// resolves them (dlsym(RTLD_NEXT, "malloc"), et al.) and the way
// DataDog-go-libddwaf's libc_dl.go documents the same RTLD_NEXT technique
// for its own libc shims.
func resolvePlatform() (Real, error) {
	// The names are static C strings: C.CString would call malloc, which
	// resolves to this library's own interposed malloc.
	mallocSym := C.ot_dlsym_next(0)
	freeSym := C.ot_dlsym_next(1)
	reallocSym := C.ot_dlsym_next(2)

	if mallocSym == nil || freeSym == nil || reallocSym == nil {
		return Real{}, fmt.Errorf("overplatform: dlsym(RTLD_NEXT) failed to resolve the native allocator")
	}

	mallocFn := C.ot_malloc_fn(mallocSym)
	freeFn := C.ot_free_fn(freeSym)
	reallocFn := C.ot_realloc_fn(reallocSym)

	return Real{
		Malloc: func(size uintptr) uintptr {
			return uintptr(C.ot_call_malloc(mallocFn, C.size_t(size)))
		},
		Free: func(ptr uintptr) {
			C.ot_call_free(freeFn, unsafe.Pointer(ptr))
		},
		Realloc: func(ptr uintptr, size uintptr) uintptr {
			return uintptr(C.ot_call_realloc(reallocFn, unsafe.Pointer(ptr), C.size_t(size)))
		},
	}, nil
}
