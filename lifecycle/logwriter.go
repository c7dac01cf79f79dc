package lifecycle

import (
	"bytes"
	"sync"

	"github.com/rustnet/http-contract-tests/framework"
)

// logWriter forwards complete lines of subprocess output to a Logger.
type logWriter struct {
	logger framework.Logger
	buf    bytes.Buffer
	lock   sync.Mutex
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line; keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			return len(p), nil
		}
		w.logger.Printf("%s", bytes.TrimRight([]byte(line), "\r\n"))
	}
}
