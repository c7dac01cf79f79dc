// Package lifecycle builds the collaborator binaries, runs the server under test as a
// subprocess, waits for it to answer, and tears everything down exactly once.
//
// A run owns a single Manager (one ProcessHandle) for the server and a Builder for each other
// artifact. Release actions are registered with a Teardown as soon as the resources are
// created, so that normal completion, fatal errors and interrupts all take the same path.
package lifecycle
