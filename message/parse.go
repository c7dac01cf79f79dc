package message

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	// ErrNoTerminator means the header block was not followed by a blank line, or the blank line
	// came before any header.
	ErrNoTerminator = errors.New("header block is not terminated by a blank line")
	// ErrBadStatusLine means the first line is not of the form "HTTP/<version> <code> <reason>".
	ErrBadStatusLine = errors.New("malformed status line")
	// ErrBadHeader means a header line is not of the form "Name: Value".
	ErrBadHeader = errors.New("malformed header line")
)

// ParseStatusLine parses "HTTP/<version> <code> <reason>". The reason phrase may be empty or
// contain spaces.
func ParseStatusLine(line string) (StatusLine, error) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, "HTTP/") {
		return StatusLine{}, fmt.Errorf("%w: %q", ErrBadStatusLine, line)
	}
	rest := strings.TrimPrefix(line, "HTTP/")
	version, rest, ok := strings.Cut(rest, " ")
	if !ok || version == "" {
		return StatusLine{}, fmt.Errorf("%w: %q", ErrBadStatusLine, line)
	}
	codeText, reason, _ := strings.Cut(rest, " ")
	code, err := strconv.Atoi(codeText)
	if err != nil || len(codeText) != 3 {
		return StatusLine{}, fmt.Errorf("%w: %q", ErrBadStatusLine, line)
	}
	return StatusLine{Version: version, Code: code, Reason: reason}, nil
}

// ParseHeader parses a "Name: Value" line. Surrounding whitespace is removed from the value;
// the name must be a valid HTTP field name and keeps its case.
func ParseHeader(line string) (Header, error) {
	line = strings.TrimRight(line, "\r")
	name, value, ok := strings.Cut(line, ":")
	if !ok || !httpguts.ValidHeaderFieldName(name) {
		return Header{}, fmt.Errorf("%w: %q", ErrBadHeader, line)
	}
	return Header{Name: name, Value: strings.TrimSpace(value)}, nil
}

// ParseStrict parses golden fixture text. The status line and every header must be well formed,
// and the header block must be closed by a blank line that comes after at least one header.
func ParseStrict(text string) (Response, error) {
	return parse(text, true)
}

// Parse parses captured output leniently: a missing terminator means there is no body, and
// lines that do not parse are kept verbatim so that they show up in comparisons. Leading blank
// lines and a leading request echo (a request line plus its headers) are skipped.
func Parse(text string) (Response, error) {
	return parse(text, false)
}

func parse(text string, strict bool) (Response, error) {
	lines := splitLines(text)
	if !strict {
		lines = skipBlank(lines)
		lines = skipRequestEcho(lines)
	}
	if len(lines) == 0 {
		return Response{}, fmt.Errorf("%w: no status line", ErrBadStatusLine)
	}

	var resp Response
	status, err := ParseStatusLine(lines[0])
	if err != nil {
		if strict {
			return Response{}, err
		}
		status = StatusLine{Reason: strings.TrimSpace(lines[0])}
	}
	resp.StatusLine = status

	end := terminatorIndex(lines)
	if strict && end <= 1 {
		return Response{}, ErrNoTerminator
	}
	headerLines := lines[1:]
	if end > 0 {
		headerLines = lines[1:end]
		resp.Body = strings.Join(lines[end+1:], "\n")
	}
	for _, line := range headerLines {
		h, err := ParseHeader(line)
		if err != nil {
			if strict {
				return Response{}, err
			}
			h = Header{Name: strings.TrimSpace(line)}
		}
		resp.Headers = append(resp.Headers, h)
	}
	return resp, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	// A final newline ends the last line; it is not a blank line of its own.
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func terminatorIndex(lines []string) int {
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			return i
		}
	}
	return -1
}

func skipBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return lines
}

func skipRequestEcho(lines []string) []string {
	if len(lines) == 0 || !IsRequestLine(lines[0]) {
		return lines
	}
	end := terminatorIndex(lines)
	if end < 0 {
		return lines
	}
	return skipBlank(lines[end+1:])
}

// IsRequestLine reports whether line looks like "METHOD target HTTP/x.y".
func IsRequestLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 3 || !strings.HasPrefix(fields[2], "HTTP/") {
		return false
	}
	for _, r := range fields[0] {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
