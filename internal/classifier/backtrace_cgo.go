//go:build cgo && (linux || darwin)

package classifier

/*
#include <execinfo.h>
#include <stdlib.h>

// ot_backtrace_symbols wraps backtrace()+backtrace_symbols() in one call so
// the Go side only has to free one array of C strings. This itself calls
// malloc(): the caller MUST already have the current thread's is_tracing
// flag set before invoking this, or the allocation will recurse into the
// interposed malloc.
static char** ot_backtrace_symbols(int max_frames, int* out_count) {
	void** callstack = (void**)malloc(sizeof(void*) * (size_t)max_frames);
	if (!callstack) {
		*out_count = 0;
		return NULL;
	}
	int n = backtrace(callstack, max_frames);
	char** symbols = backtrace_symbols(callstack, n);
	free(callstack);
	*out_count = n;
	return symbols;
}
*/
import "C"

import "unsafe"

// CaptureNativeStack walks the calling thread's native call stack up to
// maxFrames deep using glibc/libc's backtrace() + backtrace_symbols(). Each
// frame's Depth is its index in backtrace()'s output: depth 0 is
// ot_backtrace_symbols, the C helper above that calls backtrace().
func CaptureNativeStack(maxFrames int) []Frame {
	var count C.int
	symbols := C.ot_backtrace_symbols(C.int(maxFrames), &count)
	if symbols == nil || count == 0 {
		return nil
	}
	defer C.free(unsafe.Pointer(symbols))

	n := int(count)
	items := (*[1 << 20]*C.char)(unsafe.Pointer(symbols))[:n:n]

	frames := make([]Frame, 0, n)
	for i, sym := range items {
		frames = append(frames, Frame{Depth: i, Symbol: C.GoString(sym)})
	}
	return frames
}
