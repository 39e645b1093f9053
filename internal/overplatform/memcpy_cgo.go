//go:build cgo

package overplatform

/*
#include <string.h>
*/
import "C"

import "unsafe"

// Memcpy copies n bytes from src to dst, both raw native addresses (as
// returned by Real.Malloc/Real.Realloc). realloc's interposed form (§4.9)
// uses this to move the overlap between an old and a relocated block; both
// addresses are always native heap memory, never Go-managed memory, so
// handing them to libc's memcpy through unsafe.Pointer is safe.
func Memcpy(dst, src uintptr, n uintptr) {
	if n == 0 {
		return
	}
	C.memcpy(unsafe.Pointer(dst), unsafe.Pointer(src), C.size_t(n))
}
