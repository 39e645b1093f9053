//go:build !cgo || (!linux && !darwin)

package classifier

// CaptureNativeStack is a stub on platforms/builds where the real
// backtrace()-based walker in backtrace_cgo.go cannot be compiled (cgo
// disabled, or an OS other than Linux/Darwin -- spec.md's Non-goals scope
// the library to those two). It reports no frames, which Classify treats
// the same as an empty stack: neither whitelisted nor ignored, leaving
// every allocation subject to the configured strategy exactly as
// overplatform.resolvePlatform's own unsupported-platform fallback
// expects of the rest of the interception path.
func CaptureNativeStack(maxFrames int) []Frame {
	return nil
}
