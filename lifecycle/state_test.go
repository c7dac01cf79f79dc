package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	allowed := []struct{ from, to State }{
		{NotStarted, Building},
		{Building, Built},
		{Built, Starting},
		{Starting, Live},
		{Starting, Unreachable},
		{Starting, Stopping},
		{Live, Stopping},
		{Unreachable, Stopping},
		{Stopping, Stopped},
		{NotStarted, Failed},
		{Building, Failed},
		{Live, Failed},
		{Stopping, Failed},
	}
	for _, p := range allowed {
		assert.True(t, CanTransition(p.from, p.to), "%s -> %s", p.from, p.to)
	}

	disallowed := []struct{ from, to State }{
		{NotStarted, Starting},
		{Building, Live},
		{Built, Live},
		{Live, Starting},
		{Unreachable, Live},
		{Stopped, Building},
		{Stopped, Failed},
		{Failed, Stopping},
		{Failed, Failed},
	}
	for _, p := range disallowed {
		assert.False(t, CanTransition(p.from, p.to), "%s -> %s", p.from, p.to)
	}
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, Stopped.Terminal())
	assert.True(t, Failed.Terminal())
	assert.False(t, Live.Terminal())
	assert.False(t, Unreachable.Terminal())
}

func TestProcessHandleString(t *testing.T) {
	assert.Equal(t, "NotStarted", ProcessHandle{}.String())
	assert.Equal(t, "pid 42 (Live)", ProcessHandle{ID: 42, State: Live}.String())
	assert.Equal(t, "State(99)", State(99).String())
}

func TestCommandString(t *testing.T) {
	c := Command{"cargo", "build", "-p", "my server"}
	assert.Equal(t, "cargo build -p 'my server'", c.String())
	assert.False(t, c.IsEmpty())
	assert.True(t, Command{}.IsEmpty())
	assert.True(t, Command{""}.IsEmpty())

	extended := c.With("--release")
	assert.Equal(t, Command{"cargo", "build", "-p", "my server", "--release"}, extended)
	assert.Len(t, c, 4)
}
