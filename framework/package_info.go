// Package framework contains the generic parts of the contract-test harness: a test context
// that behaves like *testing.T outside of the Go test runner, per-test debug logging, test
// filtering and the TestLogger callbacks used to report progress.
//
// The domain code decides what a test does; this package only tracks identity, failures,
// skips and captured debug output for each one.
package framework
