package httptests

import (
	"fmt"

	"github.com/rustnet/http-contract-tests/fixtures"
)

// Selector chooses which suites a run covers.
type Selector string

const (
	SelectServer Selector = "server"
	SelectClient Selector = "client"
	SelectAll    Selector = "all"
)

// Selectors lists the valid selectors, for usage text.
var Selectors = []Selector{SelectServer, SelectClient, SelectAll}

func ParseSelector(s string) (Selector, error) {
	for _, sel := range Selectors {
		if string(sel) == s {
			return sel, nil
		}
	}
	return "", fmt.Errorf("unknown selector %q: must be one of server, client, all", s)
}

// Suites returns the suites to run, in order. All runs the client suite first.
func (s Selector) Suites() []fixtures.Suite {
	switch s {
	case SelectServer:
		return []fixtures.Suite{fixtures.SuiteServer}
	case SelectClient:
		return []fixtures.Suite{fixtures.SuiteClient}
	case SelectAll:
		return []fixtures.Suite{fixtures.SuiteClient, fixtures.SuiteServer}
	}
	return nil
}
