//go:build !windows

package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T, mode string) *Builder {
	artifact := filepath.Join(t.TempDir(), "server")
	return &Builder{
		Name:     "server",
		Command:  helperCommand(mode, artifact),
		Artifact: artifact,
		Env:      helperEnvironment(),
	}
}

func TestBuildProducesArtifact(t *testing.T) {
	b := newTestBuilder(t, "build")
	require.NoError(t, b.Build(context.Background()))
	assert.FileExists(t, b.Artifact)
}

func TestBuildFailsOnNonzeroExit(t *testing.T) {
	b := newTestBuilder(t, "build-fail")
	err := b.Build(context.Background())
	assert.ErrorIs(t, err, ErrBuildFailed)
}

func TestBuildRemovesStaleArtifact(t *testing.T) {
	b := newTestBuilder(t, "noop")
	require.NoError(t, os.WriteFile(b.Artifact, []byte("stale"), 0o755))

	err := b.Build(context.Background())

	assert.ErrorIs(t, err, ErrBuildFailed)
	assert.NoFileExists(t, b.Artifact)
}

func TestBuildWithoutCommand(t *testing.T) {
	b := &Builder{Name: "client", Artifact: filepath.Join(t.TempDir(), "client")}
	assert.ErrorIs(t, b.Build(context.Background()), ErrBuildFailed)
}

func TestBuildCancelled(t *testing.T) {
	b := newTestBuilder(t, "sleep")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Build(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrBuildFailed)
}

func TestCleanupArtifacts(t *testing.T) {
	b := newTestBuilder(t, "build")
	marker := filepath.Join(t.TempDir(), "cleaned")
	b.CleanCommand = helperCommand("build", marker)
	require.NoError(t, b.Build(context.Background()))

	b.CleanupArtifacts(context.Background())

	assert.NoFileExists(t, b.Artifact)
	assert.FileExists(t, marker)
}

func TestCleanupArtifactsIgnoresFailures(t *testing.T) {
	b := newTestBuilder(t, "build")
	b.CleanCommand = helperCommand("build-fail")

	b.CleanupArtifacts(context.Background())

	assert.NoFileExists(t, b.Artifact)
}
