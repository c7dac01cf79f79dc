package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// Render writes the end-of-run summary: the failed cases, one "<SUITE>: <passed> / <total>" line
// per suite, and an overall verdict. aborted, if not nil, is the error that ended the run early.
func Render(w io.Writer, s Summary, aborted error) {
	for _, suite := range s.Suites {
		failures := suite.Failures()
		if len(failures) == 0 {
			continue
		}
		fmt.Fprintf(w, "Failed %s cases:\n", suite.Suite)
		for _, f := range failures {
			fmt.Fprintf(w, "  %s ", f.Case.Label())
			dimColor.Fprintf(w, "(%s: %s)\n", f.Stage, f.Kind)
		}
		fmt.Fprintln(w)
	}

	for _, suite := range s.Suites {
		c := passColor
		if !suite.OK() {
			c = failColor
		}
		c.Fprintf(w, "%s: %d / %d\n", strings.ToUpper(string(suite.Suite)), suite.Passed(), suite.Total())
	}

	switch {
	case aborted != nil:
		failColor.Fprintf(w, "ABORTED: %s\n", aborted)
	case s.OK():
		passColor.Fprintf(w, "All tests passed: %d / %d\n", s.Passed(), s.Total())
	default:
		failColor.Fprintf(w, "%d of %d tests failed\n", s.Total()-s.Passed(), s.Total())
	}
}
