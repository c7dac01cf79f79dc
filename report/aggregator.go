package report

import (
	"github.com/rustnet/http-contract-tests/fixtures"
)

// SuiteSummary holds the results recorded for one suite, in the order they were recorded.
type SuiteSummary struct {
	Suite   fixtures.Suite
	Results []CaseResult
}

func (s SuiteSummary) Total() int {
	return len(s.Results)
}

func (s SuiteSummary) Passed() int {
	n := 0
	for _, r := range s.Results {
		if r.Passed {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (s SuiteSummary) Failures() []CaseResult {
	var ret []CaseResult
	for _, r := range s.Results {
		if !r.Passed {
			ret = append(ret, r)
		}
	}
	return ret
}

// OK is true if every recorded case passed.
func (s SuiteSummary) OK() bool {
	return s.Passed() == s.Total()
}

// Summary is the tally of a whole run. Suites appear in the order they were first recorded or
// started.
type Summary struct {
	Suites []SuiteSummary
}

func (s Summary) Total() int {
	n := 0
	for _, suite := range s.Suites {
		n += suite.Total()
	}
	return n
}

func (s Summary) Passed() int {
	n := 0
	for _, suite := range s.Suites {
		n += suite.Passed()
	}
	return n
}

// OK is true if all suites passed fully.
func (s Summary) OK() bool {
	for _, suite := range s.Suites {
		if !suite.OK() {
			return false
		}
	}
	return true
}

// Aggregator accumulates results for a run. It is owned by the run and is not safe for
// concurrent use.
type Aggregator struct {
	suites []SuiteSummary
}

// Begin makes a suite appear in the summary even if no case of it gets recorded.
func (a *Aggregator) Begin(suite fixtures.Suite) {
	a.find(suite)
}

// Record appends r to its suite.
func (a *Aggregator) Record(r CaseResult) {
	s := a.find(r.Case.Suite)
	s.Results = append(s.Results, r)
}

// Summarize returns a copy of what has been recorded so far.
func (a *Aggregator) Summarize() Summary {
	ret := Summary{Suites: make([]SuiteSummary, 0, len(a.suites))}
	for _, s := range a.suites {
		ret.Suites = append(ret.Suites, SuiteSummary{
			Suite:   s.Suite,
			Results: append([]CaseResult(nil), s.Results...),
		})
	}
	return ret
}

func (a *Aggregator) find(suite fixtures.Suite) *SuiteSummary {
	for i := range a.suites {
		if a.suites[i].Suite == suite {
			return &a.suites[i]
		}
	}
	a.suites = append(a.suites, SuiteSummary{Suite: suite})
	return &a.suites[len(a.suites)-1]
}
