// build.go implements the 'overthrower build' command.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// defaultLibraryName returns the conventional shared library name for the
// current platform: liboverthrower.so on Linux, liboverthrower.dylib on
// macOS.
func defaultLibraryName() string {
	if runtime.GOOS == "darwin" {
		return "liboverthrower.dylib"
	}
	return "liboverthrower.so"
}

// buildCommand implements the 'overthrower build' command: it shells out to
// 'go build -buildmode=c-shared' against ./cmd/liboverthrower, the package
// that exports the C-linkage activateOverthrower/deactivateOverthrower/
// pauseOverthrower/resumeOverthrower symbols and the interposed
// malloc/free/realloc.
//
// Example:
//
//	overthrower build -o liboverthrower.so
func buildCommand(args []string) {
	output := defaultLibraryName()
	for i := 0; i < len(args); i++ {
		if args[i] == "-o" && i+1 < len(args) {
			output = args[i+1]
			i++
		}
	}

	cmd := exec.Command("go", "build", "-buildmode=c-shared", "-o", output, "github.com/kolkov/overthrower/cmd/liboverthrower")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Built successfully: %s\n", output)
}
