// Package classifier walks the native call stack of an intercepted
// malloc/free/realloc and decides whether the caller is whitelisted (must
// never be failed) and/or ignored (may be failed, but is not tracked as a
// leak). See spec.md §4.5.
//
// The match rules are pinned to specific frame depths counted from the
// interposed entrypoint, so the anchor used when walking frames must be
// stable. A frame's depth here is its index in the native backtrace() that
// CaptureNativeStack takes, where depth 0 is the C helper that calls
// backtrace() (see backtrace_cgo.go); the rule tables use the depths of the
// original implementation's non-inlinable checker().
package classifier

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Frame is one entry of a walked native stack, as produced by the
// platform's backtrace(): a raw, possibly mangled symbol name.
type Frame struct {
	Depth  int
	Symbol string
}

// Rule matches a demangled symbol name at one or more specific depths.
type Rule struct {
	Depths  []int
	Symbol  string
	Exact   bool // false => substring match, as spec.md §4.5 specifies
}

func (r Rule) matches(depth int, demangled string) bool {
	found := false
	for _, d := range r.Depths {
		if d == depth {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if r.Exact {
		return demangled == r.Symbol
	}
	return strings.Contains(demangled, r.Symbol)
}

// Result is the outcome of classifying one call stack.
type Result struct {
	Whitelisted bool
	Ignored     bool
}

// Classify walks frames (already captured) against the platform's
// whitelist/ignore rule tables (rules_linux.go / rules_darwin.go). If a
// frame's symbol cannot be demangled/recovered at all, spec.md §4.5
// requires failing safe: both whitelisted and ignored are returned true so
// the process is never brought down by the classifier itself.
func Classify(frames []Frame) Result {
	for _, f := range frames {
		demangled, ok := Demangle(f.Symbol)
		if !ok {
			return Result{Whitelisted: true, Ignored: true}
		}
		for _, r := range whitelistRules {
			if r.matches(f.Depth, demangled) {
				return classifyRemaining(frames, f.Depth, true)
			}
		}
	}
	ignored := false
	for _, f := range frames {
		demangled, ok := Demangle(f.Symbol)
		if !ok {
			return Result{Whitelisted: true, Ignored: true}
		}
		for _, r := range ignoreRules {
			if r.matches(f.Depth, demangled) {
				ignored = true
			}
		}
	}
	return Result{Whitelisted: false, Ignored: ignored}
}

// classifyRemaining finishes a Classify pass once a whitelist hit has
// already been found at foundDepth: a frame can independently also satisfy
// an ignore rule (on Linux, __cxa_atexit is in both tables), so the ignore
// table is still consulted.
func classifyRemaining(frames []Frame, _ int, whitelisted bool) Result {
	ignored := false
	for _, f := range frames {
		demangled, ok := Demangle(f.Symbol)
		if !ok {
			return Result{Whitelisted: true, Ignored: true}
		}
		for _, r := range ignoreRules {
			if r.matches(f.Depth, demangled) {
				ignored = true
			}
		}
	}
	return Result{Whitelisted: whitelisted, Ignored: ignored}
}

// Demangle converts a raw symbol (as produced by backtrace_symbols(), which
// on Linux/glibc yields Itanium-mangled C++ names such as
// "_ZN9__gnu_cxx...") into its demangled form. Symbols that are not
// mangled (plain C names, or already-demangled macOS symbols) are returned
// unchanged. ok is false only when symbolization produced no usable string
// at all (e.g. a stripped binary's empty frame), which the caller must
// treat as a symbolization failure per spec.md §4.5.
func Demangle(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if out := demangle.Filter(raw); out != raw {
		return out, true
	}
	return raw, true
}
