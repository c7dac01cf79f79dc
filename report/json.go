package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Run describes a whole harness run for the exported reports.
type Run struct {
	ID       uuid.UUID
	Selector string
	Started  time.Time
	Finished time.Time
	Summary  Summary
	Aborted  error
}

// NewRun starts describing a run with a fresh random ID.
func NewRun(selector string, started time.Time) Run {
	return Run{ID: uuid.New(), Selector: selector, Started: started}
}

type jsonReport struct {
	RunID    string      `json:"runId"`
	Selector string      `json:"selector"`
	Started  time.Time   `json:"started"`
	Finished time.Time   `json:"finished"`
	OK       bool        `json:"ok"`
	Aborted  string      `json:"aborted,omitempty"`
	Suites   []jsonSuite `json:"suites"`
}

type jsonSuite struct {
	Suite  string     `json:"suite"`
	Total  int        `json:"total"`
	Passed int        `json:"passed"`
	Cases  []jsonCase `json:"cases"`
}

type jsonCase struct {
	Name         string              `json:"name"`
	Method       string              `json:"method"`
	Target       string              `json:"target"`
	Passed       bool                `json:"passed"`
	Stage        string              `json:"stage,omitempty"`
	Kind         string              `json:"kind,omitempty"`
	Message      string              `json:"message,omitempty"`
	Expected     string              `json:"expected,omitempty"`
	Actual       string              `json:"actual,omitempty"`
	ActualStatus ldvalue.OptionalInt `json:"actualStatus"`
	DurationMS   int64               `json:"durationMs"`
}

func (r Run) toJSON() jsonReport {
	out := jsonReport{
		RunID:    r.ID.String(),
		Selector: r.Selector,
		Started:  r.Started.UTC(),
		Finished: r.Finished.UTC(),
		OK:       r.Aborted == nil && r.Summary.OK(),
		Suites:   []jsonSuite{},
	}
	if r.Aborted != nil {
		out.Aborted = r.Aborted.Error()
	}
	for _, s := range r.Summary.Suites {
		js := jsonSuite{Suite: string(s.Suite), Total: s.Total(), Passed: s.Passed(), Cases: []jsonCase{}}
		for _, c := range s.Results {
			js.Cases = append(js.Cases, jsonCase{
				Name:         c.Case.Name,
				Method:       c.Case.Method,
				Target:       c.Case.Target,
				Passed:       c.Passed,
				Stage:        string(c.Stage),
				Kind:         c.Kind,
				Message:      c.Message,
				Expected:     c.Expected,
				Actual:       c.Actual,
				ActualStatus: c.ActualStatus,
				DurationMS:   c.Duration.Milliseconds(),
			})
		}
		out.Suites = append(out.Suites, js)
	}
	return out
}

// WriteJSON writes the run as an indented JSON document to path.
func WriteJSON(path string, r Run) error {
	data, err := json.MarshalIndent(r.toJSON(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing JSON report: %w", err)
	}
	return nil
}
