package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustnet/http-contract-tests/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// extractArchive writes every file of a txtar archive into a fresh directory.
func extractArchive(t *testing.T, name string) string {
	t.Helper()
	archive, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	dir := t.TempDir()
	for _, f := range archive.Files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644))
	}
	return dir
}

func TestDiscover(t *testing.T) {
	dir := extractArchive(t, "server.txtar")

	cases, err := Discover(dir, SuiteServer)
	require.NoError(t, err)

	var got []string
	for _, c := range cases {
		got = append(got, c.Name+" => "+c.Label())
		assert.Equal(t, SuiteServer, c.Suite)
		assert.Equal(t, filepath.Join(dir, c.Name+".txt"), c.FixturePath)
	}
	assert.Equal(t, []string{
		"connect_127.0.0.1:1234 => CONNECT 127.0.0.1:1234",
		"get_foo => GET /foo",
		"get_index => GET /",
		"head_favicon => HEAD /favicon.ico",
		"post_empty => POST /empty",
		"put_noterminator => PUT /noterminator",
	}, got)
	assert.Equal(t, "server/get_index", cases[2].ID())
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), SuiteClient)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := extractArchive(t, "server.txtar")

	t.Run("scenario A fixture", func(t *testing.T) {
		resp, err := Load(filepath.Join(dir, "get_index.txt"))
		require.NoError(t, err)
		assert.Equal(t, message.StatusLine{Version: "1.1", Code: 200, Reason: "OK"}, resp.StatusLine)
		assert.Equal(t, []message.Header{{Name: "Content-Type", Value: "text/html"}}, resp.Headers)
		assert.Equal(t, "<html>...</html>", resp.Body)
	})

	t.Run("headers only", func(t *testing.T) {
		resp, err := Load(filepath.Join(dir, "head_favicon.txt"))
		require.NoError(t, err)
		assert.Len(t, resp.Headers, 4)
		assert.Equal(t, "Server", resp.Headers[3].Name)
		assert.Empty(t, resp.Body)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "get_nothing.txt"))
		assert.ErrorIs(t, err, ErrFixtureMissing)
	})

	t.Run("blank", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "post_empty.txt"))
		assert.ErrorIs(t, err, ErrFixtureEmpty)
	})

	t.Run("no terminator", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "put_noterminator.txt"))
		assert.ErrorIs(t, err, ErrFixtureMalformed)
	})
}

func TestDecodeTarget(t *testing.T) {
	for _, tc := range []struct{ method, slug, want string }{
		{"GET", "index", "/"},
		{"HEAD", "favicon", "/favicon.ico"},
		{"GET", "jpeg", "/image/jpeg"},
		{"GET", "png", "/image/png"},
		{"GET", "svg", "/image/svg"},
		{"GET", "text", "/robots.txt"},
		{"GET", "utf8", "/encoding/utf8"},
		{"GET", "webp", "/image/webp"},
		{"GET", "about", "/about"},
		{"GET", "status_418", "/status/418"},
		{"POST", "status_", "/status_"},
		{"CONNECT", "127.0.0.1:1234", "127.0.0.1:1234"},
		{"CONNECT", "index", "index"},
	} {
		assert.Equal(t, tc.want, DecodeTarget(tc.method, tc.slug), "%s %s", tc.method, tc.slug)
	}
}

func TestSplitName(t *testing.T) {
	method, slug, ok := SplitName("options_about")
	assert.True(t, ok)
	assert.Equal(t, "OPTIONS", method)
	assert.Equal(t, "about", slug)

	method, slug, ok = SplitName("get_status_404")
	assert.True(t, ok)
	assert.Equal(t, "GET", method)
	assert.Equal(t, "status_404", slug)

	for _, bad := range []string{"notes", "_about", "get_"} {
		_, _, ok := SplitName(bad)
		assert.False(t, ok, bad)
	}
}
