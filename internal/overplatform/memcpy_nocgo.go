//go:build !cgo

package overplatform

// Memcpy is unreachable without cgo: Resolve already fails on every call in
// this build (see shim_other.go), so entry.go's realloc path never reaches
// a copy. It panics rather than silently corrupting memory if that
// assumption is ever violated.
func Memcpy(dst, src uintptr, n uintptr) {
	panic("overplatform: Memcpy requires cgo")
}
