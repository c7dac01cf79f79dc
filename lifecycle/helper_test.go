//go:build !windows

package lifecycle

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// The test binary doubles as the build tool and server for these tests. When helperEnv is set,
// TestMain runs one of the modes below instead of the tests.
const helperEnv = "LIFECYCLE_TEST_HELPER"

func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "1" {
		os.Exit(runHelper(os.Args[1:]))
	}
	goleak.VerifyTestMain(m)
}

func runHelper(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "no helper mode")
		return 2
	}
	switch args[0] {
	case "build":
		fmt.Println("compiling")
		if err := os.WriteFile(args[1], []byte("#!/bin/sh\n"), 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "build-fail":
		fmt.Fprintln(os.Stderr, "error: could not compile")
		return 101
	case "noop":
		return 0
	case "sleep":
		fmt.Println("listening")
		time.Sleep(time.Minute)
		return 0
	case "ignore-term":
		signal.Ignore(syscall.SIGTERM)
		fmt.Println("ignoring SIGTERM")
		time.Sleep(time.Minute)
		return 0
	case "crash":
		fmt.Fprintln(os.Stderr, "panicked at startup")
		return 3
	}
	fmt.Fprintf(os.Stderr, "unknown helper mode %q\n", args[0])
	return 2
}

func helperCommand(args ...string) Command {
	return Command{os.Args[0]}.With(args...)
}

func helperEnvironment() []string {
	return []string{helperEnv + "=1"}
}
