//go:build linux

package main

/*
#include <stdio.h>

// Forward declarations of this package's own cgo exports: on Linux these
// all link into the same shared object as the constructor/destructor
// below, so a plain extern declaration is enough -- no header juggling
// required.
extern unsigned int deactivateOverthrower(void);
extern int otIsActive(void);

__attribute__((constructor, used)) static void ot_banner(void) {
	fprintf(stderr, "overthrower is waiting for the activation signal ...\n");
	fprintf(stderr, "Invoke activateOverthrower and overthrower will start his job.\n");
}

__attribute__((destructor, used)) static void ot_shutdown(void) {
	if (!otIsActive()) {
		return;
	}
	fprintf(stderr, "overthrower has not been deactivated explicitly, doing it anyway.\n");
	deactivateOverthrower();
}
*/
import "C"

import (
	"unsafe"

	"github.com/kolkov/overthrower/internal/overentry"
)

// On Linux, interposition via LD_PRELOAD works purely by symbol name: the
// dynamic linker resolves "malloc" to whichever shared object defines it
// first in the preload order, so these exported functions must literally
// be named malloc/free/realloc -- there is no indirection table to route
// through, unlike macOS's __interpose.

//export malloc
func malloc(size C.size_t) unsafe.Pointer {
	ptr, enomem := overentry.Malloc(uintptr(size))
	if enomem {
		setErrnoENOMEM()
	}
	return unsafe.Pointer(ptr) //nolint:govet // ptr is a native heap address, not Go memory.
}

//export free
func free(p unsafe.Pointer) {
	overentry.Free(uintptr(p))
}

//export realloc
func realloc(p unsafe.Pointer, size C.size_t) unsafe.Pointer {
	newPtr, enomem := overentry.Realloc(uintptr(p), uintptr(size))
	if enomem {
		setErrnoENOMEM()
	}
	return unsafe.Pointer(newPtr) //nolint:govet // same as malloc: a native address, not Go memory.
}
