// Package httptests runs the server and client conformance suites: it drives the lifecycle of
// the programs under test, executes every fixture-defined case, and collects the results.
//
// Infrastructure that is not specific to HTTP conformance, such as test scoping, filtering and
// debug capture, is in the lower-level framework package.
package httptests
