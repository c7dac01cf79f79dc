package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	testLogger TestLogger
	filter     Filter
}

// Context is the scope of one test. It implements require.TestingT, so assertions from the
// testify assert and require packages can be used with it.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// NewContext returns a root context. Tests are started with Run on the root or on a scope
// derived from it with Scope.
func NewContext(filter Filter, testLogger TestLogger) *Context {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	return &Context{env: &environment{filter: filter, testLogger: testLogger}}
}

func (c *Context) ID() string {
	return c.id.String()
}

// Scope returns a context whose tests are named under name. The scope is not itself a test.
func (c *Context) Scope(name string) *Context {
	return &Context{env: c.env, id: c.id.plus(name)}
}

// Run runs action as a named test and returns its result. Tests excluded by the filter are
// reported as skipped without running. A panic inside action fails the test rather than the
// whole run.
func (c *Context) Run(name string, action func(*Context)) TestResult {
	id := c.id.plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		reason := "excluded by filter parameters"
		c.env.testLogger.TestSkipped(id, reason)
		return TestResult{TestID: id, Skipped: true, SkipReason: reason}
	}

	c1 := &Context{id: id, env: c.env}
	c1.run(action)

	result := TestResult{
		TestID:      id,
		Errors:      c1.errors,
		Failed:      c1.failed,
		Skipped:     c1.skipped,
		SkipReason:  c1.skipReason,
		DebugOutput: c1.debugLogger.Output(),
	}
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, result.DebugOutput)
	}
	return result
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		r := recover()
		if r == nil || c.skipped {
			return
		}
		c.failed = true
		var addError error
		if _, ok := r.(*Context); ok {
			if len(c.errors) == 0 {
				addError = errors.New("test failed with no failure message")
			}
		} else {
			addError = fmt.Errorf("%w: %+v\n%s", ErrPanic, r, string(debug.Stack()))
		}
		if addError != nil {
			c.errors = append(c.errors, addError)
			c.env.testLogger.TestError(c.id, addError)
		}
	}()

	action(c)
}

// Fail records err as a failure without stopping the test. The error is kept as-is so callers
// can inspect it later with errors.Is or errors.As.
func (c *Context) Fail(err error) {
	c.failed = true
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// Errorf is called by assertions to log a failure. It does not cause an immediate exit.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.Fail(fmt.Errorf(format, args...))
}

// FailNow stops the test immediately. The methods in the require package call it.
func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug adds a line to the test's debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
