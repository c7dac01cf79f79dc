package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rustnet/http-contract-tests/compare"
	"github.com/rustnet/http-contract-tests/framework"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestUsageErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"no selector":       {},
		"unknown selector":  {"both"},
		"too many":          {"server", "client"},
		"unknown flag":      {"--frobnicate", "all"},
		"invalid run regex": {"--run", "(", "server"},
	} {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(args, &stdout, &stderr)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr.String(), "server|client|all")
			assert.Empty(t, stdout.String())
		})
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "server"}, &stdout, &stderr)
	assert.Equal(t, exitAborted, code)
	assert.Contains(t, stderr.String(), "read config")
}

func TestConsoleTestLogger(t *testing.T) {
	var out bytes.Buffer
	logger := &ConsoleTestLogger{Out: &out, DebugOutputOnFailure: true}
	root := framework.NewContext(nil, logger)
	server := root.Scope("server")

	server.Run("GET /", func(c *framework.Context) {
		c.Debug("not shown for passing cases")
	})
	server.Run("GET /foo", func(c *framework.Context) {
		c.Fail(&compare.Mismatch{
			Kind:     compare.StatusLineMismatch,
			Stage:    compare.StageStatusLine,
			Expected: "HTTP/1.1 404 Not Found",
			Actual:   "HTTP/1.1 200 OK",
		})
	})
	server.Run("HEAD /", func(c *framework.Context) {
		c.Fail(errors.New("response missing: connection refused"))
	})

	assert.Equal(t, "\nSERVER\n"+
		"[✔] GET /\n"+
		"[✗] GET /foo\n"+
		"    status line mismatch (StatusLineMismatch)\n"+
		"    EXPECTED: HTTP/1.1 404 Not Found\n"+
		"    ACTUAL:   HTTP/1.1 200 OK\n"+
		"[✗] HEAD /\n"+
		"    response missing: connection refused\n", out.String())
}

func TestConsoleTestLoggerBodyDiff(t *testing.T) {
	var out bytes.Buffer
	logger := &ConsoleTestLogger{Out: &out}
	root := framework.NewContext(nil, logger)

	root.Scope("client").Run("GET /", func(c *framework.Context) {
		c.Fail(&compare.Mismatch{
			Kind:     compare.BodyMismatch,
			Stage:    compare.StageBody,
			Expected: "<html>",
			Actual:   "<HTML>",
			Detail:   "-\t\"<html>\"\n+\t\"<HTML>\"\n",
		})
	})

	assert.Contains(t, out.String(), "    body mismatch (BodyMismatch)\n    DIFF (-expected +actual):\n    -\t\"<html>\"\n    +\t\"<HTML>\"\n")
	assert.NotContains(t, out.String(), "EXPECTED")
}

func TestConsoleTestLoggerSkipped(t *testing.T) {
	var out bytes.Buffer
	var filters framework.RegexFilters
	_ = filters.MustNotMatch.Set("foo")
	root := framework.NewContext(filters.AsFilter, &ConsoleTestLogger{Out: &out})

	root.Scope("server").Run("GET /foo", func(c *framework.Context) {})

	assert.Contains(t, out.String(), "[-] GET /foo SKIPPED (excluded by filter parameters)\n")
}
