//go:build linux

package classifier

// MaxStackDepth bounds how many native frames the classifier walks per
// spec.md §4.5: 7 normally, up to MaxStackDepthVerbose in verbose mode.
const (
	MaxStackDepth        = 7
	MaxStackDepthVerbose = 256
)

var whitelistRules = []Rule{
	{Depths: []int{2, 3}, Symbol: "__cxa_allocate_exception"},
	{Depths: []int{3, 4}, Symbol: "__cxa_atexit"},
	{Depths: []int{2}, Symbol: "_dl_signal_error"},
	{Depths: []int{2}, Symbol: "_dl_exception_create"},
}

var ignoreRules = []Rule{
	{Depths: []int{5}, Symbol: "_dl_catch_exception"},
	{Depths: []int{4, 5}, Symbol: "dlerror"},
	// Depths unpinned in the original source; matched at any depth since
	// these symbols never legitimately appear elsewhere on the stack.
	{Depths: allDepths(), Symbol: "_dl_map_object_deps"},
	{Depths: allDepths(), Symbol: "_dl_map_object"},
	{Depths: allDepths(), Symbol: "__libpthread_freeres"},
	{Depths: []int{3, 4}, Symbol: "__cxa_atexit"},
}

func allDepths() []int {
	depths := make([]int, MaxStackDepthVerbose)
	for i := range depths {
		depths[i] = i
	}
	return depths
}
