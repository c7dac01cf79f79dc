package lifecycle

import (
	"strings"

	"github.com/alessio/shellescape"
)

// Command is an argv-style command line.
type Command []string

// String renders the command shell-quoted, for logging.
func (c Command) String() string {
	quoted := make([]string, 0, len(c))
	for _, a := range c {
		quoted = append(quoted, shellescape.Quote(a))
	}
	return strings.Join(quoted, " ")
}

func (c Command) IsEmpty() bool {
	return len(c) == 0 || c[0] == ""
}

// With returns a copy of the command with args appended.
func (c Command) With(args ...string) Command {
	return append(append(Command(nil), c...), args...)
}
