//go:build darwin

package classifier

// MaxStackDepth bounds how many native frames the classifier walks per
// spec.md §4.5: 5 normally, up to MaxStackDepthVerbose in verbose mode.
const (
	MaxStackDepth        = 5
	MaxStackDepthVerbose = 256
)

var whitelistRules = []Rule{
	{Depths: []int{3, 4}, Symbol: "__cxa_allocate_exception"},
	{Depths: []int{3, 4}, Symbol: "__cxa_atexit"},
}

// ignoreRules is empty on macOS: spec.md §4.5 lists the ignore triggers for
// Linux only (dynamic-linker internals that are glibc-specific). On macOS a
// frame can be whitelisted without also being ignored.
var ignoreRules = []Rule{}
