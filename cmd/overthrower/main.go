// Package main implements the overthrower CLI tool.
//
// overthrower wraps the plumbing needed to run a native test binary under
// fault injection: building liboverthrower.so/.dylib and preloading it in
// front of the target, with the failure strategy's environment variables
// translated from ordinary command-line flags.
//
// Usage:
//
//	overthrower build -o liboverthrower.so   # Build the interposed shared library
//	overthrower run --strategy=step --delay=50 -- ./my_test_binary arg1
//
// This is the CLI entry point; the actual fault-injection logic lives in
// the root overthrower package and its internal/ subpackages, loaded into
// the target process via LD_PRELOAD / DYLD_INSERT_LIBRARIES, never linked
// into this tool itself.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		buildCommand(os.Args[2:])
	case "run":
		runCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("overthrower version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`overthrower - Fault-Injecting Allocator Tool

USAGE:
    overthrower <command> [arguments]

COMMANDS:
    build      Build the liboverthrower shared library
    run        Run a native program with overthrower preloaded
    version    Show version information
    help       Show this help message

EXAMPLES:
    # Build the shared library for the current platform
    overthrower build -o liboverthrower.so

    # Run a test binary with the STEP strategy
    overthrower run --strategy=step --delay=50 -- ./my_test_binary

    # Run with the RANDOM strategy and a fixed seed, for reproducibility
    overthrower run --strategy=random --seed=12345 --duty-cycle=64 -- ./a.out

ABOUT:
    overthrower intercepts malloc/free/realloc in the target process via
    LD_PRELOAD (Linux) or DYLD_INSERT_LIBRARIES (macOS) and can force
    chosen allocations to fail on demand, to exercise out-of-memory
    handling code paths that are otherwise never reached in testing.

FOR MORE INFORMATION:
    Repository: https://github.com/kolkov/overthrower

`)
}
