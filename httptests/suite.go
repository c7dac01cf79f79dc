package httptests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustnet/http-contract-tests/compare"
	"github.com/rustnet/http-contract-tests/driver"
	"github.com/rustnet/http-contract-tests/fixtures"
	"github.com/rustnet/http-contract-tests/framework"
	"github.com/rustnet/http-contract-tests/lifecycle"
	"github.com/rustnet/http-contract-tests/report"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const defaultCleanupTimeout = time.Minute

// ErrInterrupted means the run was cancelled from outside, usually by a signal.
var ErrInterrupted = errors.New("interrupted")

// ServerUnderTest is the long-running server process. *lifecycle.Manager implements it.
type ServerUnderTest interface {
	Build(ctx context.Context) error
	Start() error
	AwaitLive(ctx context.Context) error
	Stop()
	CleanupArtifacts(ctx context.Context)
}

// ClientUnderTest is the client program, which is built once and then run per case.
// *lifecycle.Builder implements it.
type ClientUnderTest interface {
	Build(ctx context.Context) error
	CleanupArtifacts(ctx context.Context)
}

// Options configures a run. Only the fields for the selected suites need to be set.
type Options struct {
	Server         ServerUnderTest
	ServerDriver   driver.Driver
	ServerFixtures string

	Client         ClientUnderTest
	ClientDriver   driver.Driver
	ClientFixtures string

	Filter     framework.Filter
	TestLogger framework.TestLogger
	Logger     framework.Logger
	// CleanupTimeout bounds the clean commands run during teardown.
	CleanupTimeout time.Duration
}

// Result is the outcome of a run. Aborted is the error that stopped the run early, if any; the
// summary then holds only the cases that completed.
type Result struct {
	Summary report.Summary
	Aborted error
}

// OK is true if the run completed and every case passed.
func (r Result) OK() bool {
	return r.Aborted == nil && r.Summary.OK()
}

type runner struct {
	opts       Options
	logger     framework.Logger
	root       *framework.Context
	aggregator *report.Aggregator
}

// RunTestSuite runs the selected suites one case at a time, in discovery order. Teardown of the
// server and removal of build outputs are registered before anything is built and happen exactly
// once, whether the run completes, fails on an infrastructure error, or is cancelled through ctx.
func RunTestSuite(ctx context.Context, selector Selector, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	r := &runner{
		opts:       opts,
		logger:     logger,
		root:       framework.NewContext(opts.Filter, opts.TestLogger),
		aggregator: &report.Aggregator{},
	}

	suites := selector.Suites()
	teardown := lifecycle.NewTeardown(logger)
	defer teardown.Run()
	for _, suite := range suites {
		r.registerTeardown(teardown, suite)
	}

	var aborted error
	for _, suite := range suites {
		r.aggregator.Begin(suite)
		if err := r.runSuite(ctx, suite); err != nil {
			aborted = err
			logger.Printf("run aborted: %s", err)
			break
		}
	}
	teardown.Run()

	return Result{Summary: r.aggregator.Summarize(), Aborted: aborted}
}

func (r *runner) cleanupContext() (context.Context, context.CancelFunc) {
	timeout := r.opts.CleanupTimeout
	if timeout <= 0 {
		timeout = defaultCleanupTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// registerTeardown adds the release actions for a suite. Actions run in reverse order, so the
// server is stopped before its artifacts are removed.
func (r *runner) registerTeardown(teardown *lifecycle.Teardown, suite fixtures.Suite) {
	switch suite {
	case fixtures.SuiteServer:
		teardown.Register("server: remove build artifacts", func() {
			ctx, cancel := r.cleanupContext()
			defer cancel()
			r.opts.Server.CleanupArtifacts(ctx)
		})
		teardown.Register("server: stop", r.opts.Server.Stop)
	case fixtures.SuiteClient:
		teardown.Register("client: remove build artifacts", func() {
			ctx, cancel := r.cleanupContext()
			defer cancel()
			r.opts.Client.CleanupArtifacts(ctx)
		})
	}
}

func (r *runner) runSuite(ctx context.Context, suite fixtures.Suite) error {
	switch suite {
	case fixtures.SuiteServer:
		return r.runServerSuite(ctx)
	case fixtures.SuiteClient:
		return r.runClientSuite(ctx)
	}
	return fmt.Errorf("unknown suite %q", suite)
}

func (r *runner) runServerSuite(ctx context.Context) error {
	server := r.opts.Server
	if err := server.Build(ctx); err != nil {
		return r.abort(ctx, err)
	}
	if err := server.Start(); err != nil {
		return r.abort(ctx, err)
	}
	if err := server.AwaitLive(ctx); err != nil {
		return r.abort(ctx, err)
	}
	return r.runCases(ctx, fixtures.SuiteServer, r.opts.ServerFixtures, r.opts.ServerDriver)
}

func (r *runner) runClientSuite(ctx context.Context) error {
	if err := r.opts.Client.Build(ctx); err != nil {
		return r.abort(ctx, err)
	}
	return r.runCases(ctx, fixtures.SuiteClient, r.opts.ClientFixtures, r.opts.ClientDriver)
}

// abort turns an error that ends the run into the reported cause. Cancellation wins over
// whatever error it produced downstream.
func (r *runner) abort(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s", ErrInterrupted, ctx.Err())
	}
	return err
}

func (r *runner) runCases(ctx context.Context, suite fixtures.Suite, dir string, drv driver.Driver) error {
	cases, err := fixtures.Discover(dir, suite)
	if err != nil {
		return err
	}
	r.logger.Printf("%s: %d cases in %s", suite, len(cases), dir)

	scope := r.root.Scope(string(suite))
	for _, c := range cases {
		if ctx.Err() != nil {
			return r.abort(ctx, ctx.Err())
		}

		var actualStatus ldvalue.OptionalInt
		var interrupted error
		start := time.Now()
		result := scope.Run(c.Label(), func(t *framework.Context) {
			status, err := runCase(ctx, t, c, drv)
			actualStatus = status
			if err == nil {
				return
			}
			if ctx.Err() != nil {
				interrupted = err
				t.SkipWithReason("interrupted")
			}
			t.Fail(err)
		})
		if interrupted != nil {
			return r.abort(ctx, interrupted)
		}
		if result.Skipped {
			// excluded by the filter; not part of the tally
			continue
		}

		var caseErr error
		if result.Failed {
			caseErr = result.FirstError()
			if errors.Is(caseErr, framework.ErrPanic) {
				caseErr = fmt.Errorf("%w: %w", compare.ErrComparisonTool, caseErr)
			}
		}
		r.aggregator.Record(report.NewCaseResult(c, caseErr, actualStatus, time.Since(start)))
	}
	return nil
}

// runCase executes one case and compares the outcome against its fixture. It also returns the
// actual status code when a response was obtained.
func runCase(ctx context.Context, t *framework.Context, c fixtures.TestCase, drv driver.Driver) (ldvalue.OptionalInt, error) {
	expected, err := fixtures.Load(c.FixturePath)
	if err != nil {
		return ldvalue.OptionalInt{}, err
	}
	t.Debug("expected:\n%s", expected)

	actual, err := drv.Execute(ctx, c, t.DebugLogger())
	if err != nil {
		return ldvalue.OptionalInt{}, err
	}
	var status ldvalue.OptionalInt
	if actual.StatusLine.Valid() {
		status = ldvalue.NewOptionalInt(actual.StatusLine.Code)
	}
	return status, compare.Responses(c.Method, expected, actual)
}
