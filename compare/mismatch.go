package compare

import (
	"errors"
	"fmt"
)

// Stage is the comparison stage at which a case failed.
type Stage string

const (
	StageStatusLine     Stage = "status line"
	StageHeaders        Stage = "headers"
	StageBody           Stage = "body"
	StageInfrastructure Stage = "infrastructure"
)

// Kind classifies a mismatch.
type Kind string

const (
	StatusLineMismatch  Kind = "StatusLineMismatch"
	HeaderCountMismatch Kind = "HeaderCountMismatch"
	HeaderValueMismatch Kind = "HeaderValueMismatch"
	BodyMismatch        Kind = "BodyMismatch"
)

// ErrComparisonTool is reported when a comparison could not be carried out at all.
var ErrComparisonTool = errors.New("comparison tool error")

// Mismatch describes the first divergence between an expected and an actual response.
// Expected and Actual hold the compared text at the failing stage; Detail is an optional
// rendering of the difference.
type Mismatch struct {
	Kind     Kind
	Stage    Stage
	Expected string
	Actual   string
	Detail   string
}

func (m *Mismatch) Error() string {
	switch m.Kind {
	case HeaderCountMismatch:
		return fmt.Sprintf("%s: expected %s, got %s", m.Kind, m.Expected, m.Actual)
	case BodyMismatch:
		return fmt.Sprintf("%s: body differs", m.Kind)
	default:
		return fmt.Sprintf("%s: expected %q, got %q", m.Kind, m.Expected, m.Actual)
	}
}

// AsMismatch returns the Mismatch wrapped by err, if any.
func AsMismatch(err error) (*Mismatch, bool) {
	var m *Mismatch
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
