// Package fixtures discovers golden response files and turns them into test cases and expected
// responses.
//
// A fixture is named <method>_<slug>.txt. The method selects the request method and the slug is
// decoded into a request target through a fixed table (see DecodeTarget).
package fixtures
