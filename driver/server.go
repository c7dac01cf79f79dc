package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/rustnet/http-contract-tests/fixtures"
	"github.com/rustnet/http-contract-tests/framework"
	"github.com/rustnet/http-contract-tests/message"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	userAgent             = "http-contract-tests"
)

// ServerDriver sends server cases to the server under test at Addr (host:port).
type ServerDriver struct {
	Addr    string
	Timeout time.Duration
}

func (d *ServerDriver) Execute(ctx context.Context, c fixtures.TestCase, logger framework.Logger) (message.Response, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Addr)
	if err != nil {
		return message.Response{}, fmt.Errorf("%w: %s", ErrResponseMissing, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	request := d.requestText(c)
	logger.Printf("request:\n%s", strings.TrimRight(request, "\r\n"))
	if _, err := io.WriteString(conn, request); err != nil {
		return message.Response{}, fmt.Errorf("%w: %s", ErrResponseMissing, err)
	}

	resp, err := ReadResponse(bufio.NewReader(conn), c.Method)
	if err != nil {
		if ctx.Err() != nil {
			return message.Response{}, ctx.Err()
		}
		return message.Response{}, err
	}
	logger.Printf("response:\n%s", resp)
	return resp, nil
}

// requestText renders the request. CONNECT uses the target as the authority and still names the
// server itself in Host.
func (d *ServerDriver) requestText(c fixtures.TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", c.Method, c.Target)
	fmt.Fprintf(&b, "Host: %s\r\n", d.Addr)
	fmt.Fprintf(&b, "User-Agent: %s\r\n", userAgent)
	b.WriteString("Accept: */*\r\n")
	switch c.Method {
	case "POST", "PUT", "PATCH":
		b.WriteString("Content-Length: 0\r\n")
	}
	b.WriteString("Connection: close\r\n\r\n")
	return b.String()
}

// ReadResponse reads one HTTP/1.x response from r. Header lines are kept in the order and case
// they were received. The body is read according to Content-Length or chunked encoding, or to
// end of stream; responses that cannot carry a body get none, and neither does a successful
// CONNECT that declares no length.
func ReadResponse(r *bufio.Reader, method string) (message.Response, error) {
	first, err := readLine(r)
	if err != nil {
		if errors.Is(err, io.EOF) && first == "" {
			return message.Response{}, fmt.Errorf("%w: connection closed without a response", ErrResponseMissing)
		}
		if first == "" {
			return message.Response{}, fmt.Errorf("%w: %s", ErrResponseMissing, err)
		}
	}

	var resp message.Response
	status, parseErr := message.ParseStatusLine(first)
	if parseErr != nil {
		status = message.StatusLine{Reason: strings.TrimSpace(first)}
	}
	resp.StatusLine = status

	for err == nil {
		var line string
		line, err = readLine(r)
		if line == "" {
			break
		}
		h, herr := message.ParseHeader(line)
		if herr != nil {
			h = message.Header{Name: strings.TrimSpace(line)}
		}
		resp.Headers = append(resp.Headers, h)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return resp, fmt.Errorf("%w: reading headers: %s", ErrResponseMissing, err)
	}
	if err != nil || !hasBody(method, status) {
		return resp, nil
	}

	var body io.Reader = r
	switch {
	case isChunked(resp):
		body = httputil.NewChunkedReader(r)
	case resp.ContentLength() >= 0:
		body = io.LimitReader(r, resp.ContentLength())
	case method == "CONNECT" && status.Code/100 == 2:
		// an established tunnel stays open, so only a declared body is read
		return resp, nil
	}
	// A reset or timeout partway through the body still leaves a response to compare.
	data, _ := io.ReadAll(body)
	resp.Body = string(data)
	return resp, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func hasBody(method string, status message.StatusLine) bool {
	if method == "HEAD" {
		return false
	}
	code := status.Code
	return !(code/100 == 1 || code == 204 || code == 304)
}

func isChunked(resp message.Response) bool {
	v, ok := resp.Get("Transfer-Encoding")
	return ok && strings.EqualFold(strings.TrimSpace(v), "chunked")
}
