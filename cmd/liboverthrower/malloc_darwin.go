//go:build darwin

package main

/*
#include <stdio.h>
#include <stdlib.h>

extern unsigned int deactivateOverthrower(void);
extern int otIsActive(void);

// my_malloc/my_free/my_realloc are this file's cgo exports (below). Mach-O
// has no LD_PRELOAD-style symbol-name override, so the substitute
// functions keep distinct names and are wired to the originals through a
// __DATA,__interpose section instead -- the same naming scheme the
// original C++ implementation uses on macOS.
extern void* my_malloc(size_t size);
extern void  my_free(void* pointer);
extern void* my_realloc(void* pointer, size_t size);

typedef struct {
	const void* new_func;
	const void* orig_func;
} ot_interpose_t;

__attribute__((used)) static const ot_interpose_t ot_interposers[]
	__attribute__((section("__DATA,__interpose"))) = {
	{ (const void*)my_malloc,  (const void*)malloc },
	{ (const void*)my_free,    (const void*)free },
	{ (const void*)my_realloc, (const void*)realloc },
};

// ot_prewarm_stdio forces every internal allocation printf-family
// functions make (locale data, conversion buffers) to happen now, while
// overthrower is not yet intercepting allocations, rather than the first
// time a verbose record or a banner line is printed from inside the
// interposed path -- where that allocation would otherwise be a candidate
// for injected failure.
static void ot_prewarm_stdio(void) {
	static const int integer_number = 22708089;
	static const double floating_point_number = 22708089.862725008;
	char tmp_buf[1024];
	for (int i = 0; i < 1000; ++i) {
		snprintf(tmp_buf, sizeof(tmp_buf), "%d%f\n", integer_number * i * i, floating_point_number * i * i);
	}
}

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

func init() {
	preActivateHook = func() {
		C.ot_prewarm_stdio()
	}
}

//export my_malloc
func my_malloc(size C.size_t) unsafe.Pointer {
	ptr, enomem := overentry.Malloc(uintptr(size))
	if enomem {
		setErrnoENOMEM()
	}
	return unsafe.Pointer(ptr) //nolint:govet // native heap address, not Go memory.
}

//export my_free
func my_free(p unsafe.Pointer) {
	overentry.Free(uintptr(p))
}

//export my_realloc
func my_realloc(p unsafe.Pointer, size C.size_t) unsafe.Pointer {
	newPtr, enomem := overentry.Realloc(uintptr(p), uintptr(size))
	if enomem {
		setErrnoENOMEM()
	}
	return unsafe.Pointer(newPtr) //nolint:govet // same as my_malloc.
}
