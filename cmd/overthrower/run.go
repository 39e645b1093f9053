// run.go implements the 'overthrower run' command.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// runConfig holds the parsed '--flag=value' arguments translated into the
// OVERTHROWER_* environment variables internal/overconfig reads.
type runConfig struct {
	libraryPath string
	env         map[string]string
}

// strategyNames mirrors overconfig.Strategy's String() mapping; duplicated
// here (rather than importing the internal package) because a CLI tool
// talks to the library only through environment variables and the shared
// object it preloads, never through Go function calls.
var strategyNames = map[string]string{
	"random": "0",
	"step":   "1",
	"pulse":  "2",
	"none":   "3",
}

// runCommand implements the 'overthrower run' command: translate
// --strategy/--seed/--duty-cycle/--delay/--duration/--self-overthrow/
// --verbose flags into OVERTHROWER_* environment variables, preload
// liboverthrower, and execute the target program with those variables and
// the original environment.
//
// Example:
//
//	overthrower run --strategy=step --delay=50 -- ./my_test_binary arg1
func runCommand(args []string) {
	config, programArgs, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(programArgs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no target program specified after '--'")
		os.Exit(1)
	}

	libPath := config.libraryPath
	if libPath == "" {
		tempLib, err := os.CreateTemp("", "liboverthrower-*"+libExtension())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating temp library file: %v\n", err)
			os.Exit(1)
		}
		tempPath := tempLib.Name()
		_ = tempLib.Close()
		defer func() { _ = os.Remove(tempPath) }()

		buildCommand([]string{"-o", tempPath})
		libPath = tempPath
	}

	os.Exit(executeWithPreload(libPath, config.env, programArgs))
}

func libExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// parseRunArgs separates overthrower's own flags from the target program
// and its arguments, which must follow a literal '--'.
func parseRunArgs(args []string) (*runConfig, []string, error) {
	config := &runConfig{env: map[string]string{}}

	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			i++
			break
		}

		name, value, err := splitFlag(arg)
		if err != nil {
			return nil, nil, err
		}

		switch name {
		case "lib":
			config.libraryPath = value
		case "strategy":
			numeric, ok := strategyNames[value]
			if !ok {
				return nil, nil, fmt.Errorf("unknown strategy %q (want random, step, pulse, or none)", value)
			}
			config.env["OVERTHROWER_STRATEGY"] = numeric
		case "seed":
			config.env["OVERTHROWER_SEED"] = value
		case "duty-cycle":
			config.env["OVERTHROWER_DUTY_CYCLE"] = value
		case "delay":
			config.env["OVERTHROWER_DELAY"] = value
		case "duration":
			config.env["OVERTHROWER_DURATION"] = value
		case "verbose":
			config.env["OVERTHROWER_VERBOSE"] = value
		case "self-overthrow":
			config.env["OVERTHROWER_SELF_OVERTHROW"] = "1"
		default:
			return nil, nil, fmt.Errorf("unknown flag --%s", name)
		}
	}

	return config, args[i:], nil
}

// splitFlag parses "--name=value" or a bare "--flag" (used for
// self-overthrow, which is recognized by presence alone).
func splitFlag(arg string) (name, value string, err error) {
	if len(arg) < 3 || arg[0] != '-' || arg[1] != '-' {
		return "", "", fmt.Errorf("expected a --flag, got %q", arg)
	}
	body := arg[2:]
	for i := 0; i < len(body); i++ {
		if body[i] == '=' {
			return body[:i], body[i+1:], nil
		}
	}
	return body, "", nil
}

// executeWithPreload runs programArgs[0] with programArgs[1:] as its
// arguments, preloading libPath via the platform's interposition mechanism
// and exporting env as OVERTHROWER_* variables. It returns the child's
// exit code.
func executeWithPreload(libPath string, env map[string]string, programArgs []string) int {
	cmd := exec.Command(programArgs[0], programArgs[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.Env = os.Environ()
	if runtime.GOOS == "darwin" {
		cmd.Env = append(cmd.Env, "DYLD_INSERT_LIBRARIES="+libPath)
	} else {
		cmd.Env = append(cmd.Env, "LD_PRELOAD="+libPath)
	}
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing target program: %v\n", err)
		return 1
	}
	return 0
}
