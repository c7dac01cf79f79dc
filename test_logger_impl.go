package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rustnet/http-contract-tests/compare"
	"github.com/rustnet/http-contract-tests/framework"

	"github.com/fatih/color"
)

var (
	passColor   = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	headerColor = color.New(color.Bold)
	skipColor   = color.New(color.FgYellow)
)

// ConsoleTestLogger prints one line per case, followed by the divergence for failed cases.
// Errors are held until the case finishes so that they appear under its marker.
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	suite  string
	errors []error
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	c.errors = nil
	if len(id.Path) > 1 && id.Path[0] != c.suite {
		c.suite = id.Path[0]
		fmt.Fprintln(c.Out)
		headerColor.Fprintf(c.Out, "%s\n", strings.ToUpper(c.suite))
	}
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	c.errors = append(c.errors, err)
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if !failed {
		fmt.Fprintf(c.Out, "[%s] %s\n", passColor.Sprint("✔"), id.Name())
	} else {
		fmt.Fprintf(c.Out, "[%s] %s\n", failColor.Sprint("✗"), id.Name())
		for _, err := range c.errors {
			c.renderError(err)
		}
	}
	c.errors = nil
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	c.errors = nil
	if reason == "" {
		skipColor.Fprintf(c.Out, "[-] %s SKIPPED\n", id.Name())
	} else {
		skipColor.Fprintf(c.Out, "[-] %s SKIPPED (%s)\n", id.Name(), reason)
	}
}

func (c *ConsoleTestLogger) renderError(err error) {
	m, ok := compare.AsMismatch(err)
	if !ok {
		fmt.Fprintf(c.Out, "    %s\n", indent(err.Error(), "    "))
		return
	}
	fmt.Fprintf(c.Out, "    %s mismatch (%s)\n", m.Stage, m.Kind)
	// whole bodies are too long to show side by side; the diff says enough
	if m.Kind != compare.BodyMismatch {
		fmt.Fprintf(c.Out, "    EXPECTED: %s\n    ACTUAL:   %s\n", m.Expected, m.Actual)
	}
	switch {
	case m.Detail == "":
	case m.Kind == compare.HeaderValueMismatch:
		fmt.Fprintf(c.Out, "    (%s)\n", m.Detail)
	default:
		fmt.Fprintf(c.Out, "    DIFF (-expected +actual):\n    %s\n", indent(strings.TrimRight(m.Detail, "\n"), "    "))
	}
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
