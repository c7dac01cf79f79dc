// Package message holds the HTTP response shape shared by fixtures, captured server responses
// and client output, along with the text parsers for it.
//
// Header order and case are significant everywhere in this package: headers are kept as an
// ordered list of name/value pairs rather than an http.Header map.
package message
