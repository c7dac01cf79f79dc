package report

import (
	"errors"
	"time"

	"github.com/rustnet/http-contract-tests/compare"
	"github.com/rustnet/http-contract-tests/driver"
	"github.com/rustnet/http-contract-tests/fixtures"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Error kinds for failures that are not response mismatches.
const (
	KindFixtureMissing      = "FixtureMissing"
	KindFixtureEmpty        = "FixtureEmpty"
	KindFixtureMalformed    = "FixtureMalformed"
	KindResponseMissing     = "ResponseMissing"
	KindComparisonToolError = "ComparisonToolError"
)

// CaseResult is the outcome of one test case. A passing case has no Stage or Kind.
type CaseResult struct {
	Case     fixtures.TestCase
	Passed   bool
	Stage    compare.Stage
	Kind     string
	Message  string
	Expected string
	Actual   string
	Detail   string
	// ActualStatus is the status code received, if a response was obtained at all.
	ActualStatus ldvalue.OptionalInt
	Duration     time.Duration
}

// NewCaseResult builds the result for c from the error its execution produced, which is nil
// for a passing case.
func NewCaseResult(c fixtures.TestCase, err error, actualStatus ldvalue.OptionalInt, duration time.Duration) CaseResult {
	r := CaseResult{Case: c, Passed: err == nil, ActualStatus: actualStatus, Duration: duration}
	if err == nil {
		return r
	}
	r.Message = err.Error()
	if m, ok := compare.AsMismatch(err); ok {
		r.Stage = m.Stage
		r.Kind = string(m.Kind)
		r.Expected = m.Expected
		r.Actual = m.Actual
		r.Detail = m.Detail
		return r
	}
	r.Stage = compare.StageInfrastructure
	r.Kind = Classify(err)
	return r
}

// Classify names the kind of a case-level error that is not a mismatch.
func Classify(err error) string {
	switch {
	case errors.Is(err, fixtures.ErrFixtureMissing):
		return KindFixtureMissing
	case errors.Is(err, fixtures.ErrFixtureEmpty):
		return KindFixtureEmpty
	case errors.Is(err, fixtures.ErrFixtureMalformed):
		return KindFixtureMalformed
	case errors.Is(err, driver.ErrResponseMissing):
		return KindResponseMissing
	case errors.Is(err, compare.ErrComparisonTool):
		return KindComparisonToolError
	}
	return KindComparisonToolError
}
