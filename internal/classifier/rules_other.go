//go:build !linux && !darwin

package classifier

// MaxStackDepth and the rule tables have no meaningful values outside
// Linux/Darwin (spec.md's Non-goals scope interposition to those two
// platforms): CaptureNativeStack never returns frames here (see
// backtrace_nocgo.go), so nothing ever gets matched against these tables
// regardless of their contents.
const (
	MaxStackDepth        = 0
	MaxStackDepthVerbose = 0
)

var whitelistRules = []Rule{}

var ignoreRules = []Rule{}
