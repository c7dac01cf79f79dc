package driver

import (
	"context"
	"errors"

	"github.com/rustnet/http-contract-tests/fixtures"
	"github.com/rustnet/http-contract-tests/framework"
	"github.com/rustnet/http-contract-tests/message"
)

// ErrResponseMissing means no response could be obtained for a case: the connection failed, or
// the server or client produced no output.
var ErrResponseMissing = errors.New("response missing")

// Driver executes a single case and returns the actual response. Debug information goes to
// logger.
type Driver interface {
	Execute(ctx context.Context, c fixtures.TestCase, logger framework.Logger) (message.Response, error)
}
