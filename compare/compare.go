// Package compare checks an actual response against an expected one in three ordered stages:
// status line, headers, then body. The first failing stage ends the comparison.
package compare

import (
	"fmt"
	"strings"

	"github.com/rustnet/http-contract-tests/message"

	"github.com/google/go-cmp/cmp"
)

var binaryMediaPrefixes = []string{"image/", "audio/", "video/", "font/"}

var binaryMediaTypes = map[string]bool{
	"application/octet-stream": true,
	"application/pdf":          true,
	"application/zip":          true,
	"application/gzip":         true,
}

// Responses compares actual against expected for a request made with method. It returns nil if
// every applicable stage matches, or a *Mismatch for the first stage that does not.
func Responses(method string, expected, actual message.Response) error {
	if expected.StatusLine != actual.StatusLine {
		return &Mismatch{
			Kind:     StatusLineMismatch,
			Stage:    StageStatusLine,
			Expected: expected.StatusLine.String(),
			Actual:   actual.StatusLine.String(),
		}
	}

	if len(expected.Headers) != len(actual.Headers) {
		return &Mismatch{
			Kind:     HeaderCountMismatch,
			Stage:    StageHeaders,
			Expected: pluralHeaders(len(expected.Headers)),
			Actual:   pluralHeaders(len(actual.Headers)),
			Detail:   cmp.Diff(headerLines(expected.Headers), headerLines(actual.Headers)),
		}
	}
	for i := range expected.Headers {
		if expected.Headers[i] != actual.Headers[i] {
			return &Mismatch{
				Kind:     HeaderValueMismatch,
				Stage:    StageHeaders,
				Expected: expected.Headers[i].String(),
				Actual:   actual.Headers[i].String(),
				Detail:   fmt.Sprintf("header %d of %d", i+1, len(expected.Headers)),
			}
		}
	}

	if !BodyApplicable(method, expected, actual) {
		return nil
	}
	want, got := NormalizeBody(expected.Body), NormalizeBody(actual.Body)
	if want != got {
		return &Mismatch{
			Kind:     BodyMismatch,
			Stage:    StageBody,
			Expected: want,
			Actual:   got,
			Detail:   cmp.Diff(splitNonEmpty(want), splitNonEmpty(got)),
		}
	}
	return nil
}

// BodyApplicable reports whether bodies should be compared. HEAD responses, statuses that never
// carry a body, and binary media are skipped. The content type comes from the expected response,
// or from the actual response if the fixture does not declare one.
func BodyApplicable(method string, expected, actual message.Response) bool {
	if strings.EqualFold(method, "HEAD") {
		return false
	}
	code := expected.StatusLine.Code
	if (code >= 100 && code < 200) || code == 204 || code == 304 {
		return false
	}
	contentType := expected.ContentType()
	if contentType == "" {
		contentType = actual.ContentType()
	}
	return !IsBinaryMedia(contentType)
}

// IsBinaryMedia reports whether a lower-cased media type denotes content that is not compared
// as text.
func IsBinaryMedia(mediaType string) bool {
	if binaryMediaTypes[mediaType] {
		return true
	}
	for _, p := range binaryMediaPrefixes {
		if strings.HasPrefix(mediaType, p) {
			return true
		}
	}
	return false
}

// NormalizeBody trims every line, drops blank lines and joins the rest with "\n".
func NormalizeBody(body string) string {
	return strings.Join(splitNonEmpty(body), "\n")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func headerLines(headers []message.Header) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		out = append(out, h.String())
	}
	return out
}

func pluralHeaders(n int) string {
	if n == 1 {
		return "1 header"
	}
	return fmt.Sprintf("%d headers", n)
}
