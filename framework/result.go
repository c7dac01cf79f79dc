package framework

import (
	"errors"
	"strings"
)

// ErrPanic wraps an unexpected panic recovered while running a test.
var ErrPanic = errors.New("unexpected panic in test")

// TestID is the hierarchical name of a test, e.g. ["server", "GET /"].
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Name is the last path element.
func (t TestID) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

func (t TestID) plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

// TestResult is the outcome of a single Context.Run call.
type TestResult struct {
	TestID      TestID
	Errors      []error
	Failed      bool
	Skipped     bool
	SkipReason  string
	DebugOutput CapturedOutput
}

// FirstError returns the first recorded error, or nil.
func (r TestResult) FirstError() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}
