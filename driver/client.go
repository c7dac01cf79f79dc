package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rustnet/http-contract-tests/fixtures"
	"github.com/rustnet/http-contract-tests/framework"
	"github.com/rustnet/http-contract-tests/lifecycle"
	"github.com/rustnet/http-contract-tests/message"
)

const DefaultClientTimeout = 30 * time.Second

// ClientDriver runs the client binary once per case as "<Binary> --testing <Host> <path>" and
// parses its standard output as the response. Anything the client prints before the response,
// such as an echo of the request it sent, is skipped by message.Parse.
type ClientDriver struct {
	Binary  string
	Host    string
	Dir     string
	Env     []string
	Timeout time.Duration
}

// Args returns the command-line arguments for a case.
func (d *ClientDriver) Args(c fixtures.TestCase) []string {
	return []string{"--testing", d.Host, c.Target}
}

func (d *ClientDriver) Execute(ctx context.Context, c fixtures.TestCase, logger framework.Logger) (message.Response, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, d.Binary, d.Args(c)...)
	cmd.Dir = d.Dir
	if len(d.Env) > 0 {
		cmd.Env = append(os.Environ(), d.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logger.Printf("running: %s", lifecycle.Command{d.Binary}.With(d.Args(c)...))

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		logger.Printf("client stderr:\n%s", strings.TrimRight(stderr.String(), "\n"))
	}
	if ctx.Err() != nil {
		return message.Response{}, ctx.Err()
	}
	if runErr != nil {
		logger.Printf("client exited with error: %s", runErr)
	}

	output := stdout.String()
	logger.Printf("client output:\n%s", output)
	if strings.TrimSpace(output) == "" {
		if runErr != nil {
			return message.Response{}, fmt.Errorf("%w: client produced no output (%s)", ErrResponseMissing, runErr)
		}
		return message.Response{}, fmt.Errorf("%w: client produced no output", ErrResponseMissing)
	}
	resp, err := message.Parse(output)
	if err != nil {
		return message.Response{}, fmt.Errorf("%w: %s", ErrResponseMissing, err)
	}
	return resp, nil
}
