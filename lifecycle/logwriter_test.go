package lifecycle

import (
	"testing"

	"github.com/rustnet/http-contract-tests/framework"

	"github.com/stretchr/testify/assert"
)

func TestLogWriterSplitsLines(t *testing.T) {
	logger := &framework.CapturingLogger{}
	w := &logWriter{logger: logger}

	_, _ = w.Write([]byte("Listening on 127.0.0.1"))
	_, _ = w.Write([]byte(":7878\r\naccepted\npartial"))

	var messages []string
	for _, m := range logger.Output() {
		messages = append(messages, m.Message)
	}
	assert.Equal(t, []string{"Listening on 127.0.0.1:7878", "accepted"}, messages)
}
