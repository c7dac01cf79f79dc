package fixtures

import "fmt"

// Suite is a named group of test cases.
type Suite string

const (
	SuiteServer Suite = "server"
	SuiteClient Suite = "client"
)

// TestCase is a single fixture-driven case. It is created by Discover and never modified.
type TestCase struct {
	Name        string
	Method      string
	Target      string
	Suite       Suite
	FixturePath string
}

// ID identifies the case for filtering and reporting, e.g. "server/get_index".
func (c TestCase) ID() string {
	return string(c.Suite) + "/" + c.Name
}

// Label is the human-readable request, e.g. "GET /favicon.ico".
func (c TestCase) Label() string {
	return fmt.Sprintf("%s %s", c.Method, c.Target)
}

func (c TestCase) String() string {
	return c.ID()
}
