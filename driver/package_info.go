// Package driver issues the request for one test case and captures the response.
//
// Server cases are sent over a plain TCP connection and the response is read off the wire
// unmodified, so that header order and header name case are exactly what the server wrote.
// Client cases run the client binary once and parse what it prints.
package driver
