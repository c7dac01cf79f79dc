package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/rustnet/http-contract-tests/framework"
)

var ErrBuildFailed = errors.New("build failed")

// Builder runs an opaque build step and checks that it produced an executable artifact.
type Builder struct {
	Name         string
	Command      Command
	CleanCommand Command
	Artifact     string
	Dir          string
	Env          []string
	Logger       framework.Logger
}

func (b *Builder) logger() framework.Logger {
	if b.Logger == nil {
		return framework.NullLogger()
	}
	return b.Logger
}

// Build removes any stale artifact, runs the build command, and verifies that the command
// exited with status zero and that the artifact now exists.
func (b *Builder) Build(ctx context.Context) error {
	if err := os.Remove(b.Artifact); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.logger().Printf("could not remove stale artifact %s: %s", b.Artifact, err)
	}
	if b.Command.IsEmpty() {
		return fmt.Errorf("%w: %s: no build command configured", ErrBuildFailed, b.Name)
	}

	b.logger().Printf("building %s: %s", b.Name, b.Command)
	var output bytes.Buffer
	cmd := b.command(ctx, b.Command)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger().Printf("build output:\n%s", output.String())
		return fmt.Errorf("%w: %s: %s", ErrBuildFailed, b.Name, err)
	}

	info, err := os.Stat(b.Artifact)
	if err != nil {
		return fmt.Errorf("%w: %s: artifact %s not found after build", ErrBuildFailed, b.Name, b.Artifact)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s: artifact %s is a directory", ErrBuildFailed, b.Name, b.Artifact)
	}
	b.logger().Printf("built %s", b.Artifact)
	return nil
}

// CleanupArtifacts removes the build output and runs the clean command, if any. Problems are
// logged and never returned, so cleanup cannot prevent the harness from exiting.
func (b *Builder) CleanupArtifacts(ctx context.Context) {
	if err := os.Remove(b.Artifact); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.logger().Printf("could not remove artifact %s: %s", b.Artifact, err)
	}
	if b.CleanCommand.IsEmpty() {
		return
	}
	b.logger().Printf("cleaning %s: %s", b.Name, b.CleanCommand)
	var output bytes.Buffer
	cmd := b.command(ctx, b.CleanCommand)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		b.logger().Printf("clean command failed: %s\n%s", err, output.String())
	}
}

func (b *Builder) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c[0], c[1:]...)
	cmd.Dir = b.Dir
	if len(b.Env) > 0 {
		cmd.Env = append(os.Environ(), b.Env...)
	}
	return cmd
}
