package message

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusLine is the first line of an HTTP response.
//
// A StatusLine with an empty Version holds a line that could not be parsed; the raw text is kept
// in Reason so that it can still be compared and reported.
type StatusLine struct {
	Version string
	Code    int
	Reason  string
}

func (s StatusLine) String() string {
	if s.Version == "" {
		return s.Reason
	}
	if s.Reason == "" {
		return fmt.Sprintf("HTTP/%s %d", s.Version, s.Code)
	}
	return fmt.Sprintf("HTTP/%s %d %s", s.Version, s.Code, s.Reason)
}

// Valid reports whether the line was parsed successfully.
func (s StatusLine) Valid() bool {
	return s.Version != ""
}

// Header is a single header field as it appeared in the message.
type Header struct {
	Name  string
	Value string
}

func (h Header) String() string {
	return h.Name + ": " + h.Value
}

// Response is an HTTP response as expected by a fixture or as actually observed.
type Response struct {
	StatusLine StatusLine
	Headers    []Header
	Body       string
}

// Get returns the value of the first header whose name matches name case-insensitively.
func (r Response) Get(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ContentType returns the media type of the Content-Type header, lower-cased and without
// parameters, or "" if there is none.
func (r Response) ContentType() string {
	v, ok := r.Get("Content-Type")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// ContentLength returns the parsed Content-Length header, or -1 if absent or invalid.
func (r Response) ContentLength() int64 {
	v, ok := r.Get("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// String renders the response in fixture format.
func (r Response) String() string {
	var b strings.Builder
	b.WriteString(r.StatusLine.String())
	b.WriteString("\n")
	for _, h := range r.Headers {
		b.WriteString(h.String())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(r.Body)
	return b.String()
}
