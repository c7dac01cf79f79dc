package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustnet/http-contract-tests/config"
	"github.com/rustnet/http-contract-tests/driver"
	"github.com/rustnet/http-contract-tests/framework"
	"github.com/rustnet/http-contract-tests/httptests"
	"github.com/rustnet/http-contract-tests/lifecycle"
	"github.com/rustnet/http-contract-tests/report"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitAborted = 3
)

type usageError struct{ error }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var params commandParams
	exitCode := exitOK

	cmd := &cobra.Command{
		Use:   "http-contract-tests (server|client|all)",
		Short: "Checks an HTTP server and client against golden response fixtures",
		Long: `Builds the server and/or client under test, runs every fixture-defined case against
them, and compares each response with its fixture: status line, then headers, then body.

Selectors:
  server  build and start the server, then run the server cases
  client  build the client, then run the client cases
  all     run the client cases, then the server cases`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError{errors.New("exactly one selector is required: server, client or all")}
			}
			if _, err := httptests.ParseSelector(args[0]); err != nil {
				return usageError{err}
			}
			return nil
		},
		ValidArgs:     []string{"server", "client", "all"},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, _ := httptests.ParseSelector(args[0])
			cfg, err := params.loadConfig(cmd)
			if err != nil {
				return err
			}
			exitCode = runSuites(cmd.Context(), selector, cfg, params, stdout)
			return nil
		},
	}
	params.bind(cmd)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(stderr)
			fmt.Fprint(stderr, cmd.UsageString())
			return exitUsage
		}
		return exitAborted
	}
	return exitCode
}

func runSuites(ctx context.Context, selector httptests.Selector, cfg *config.Config, params commandParams, stdout io.Writer) int {
	color.NoColor = params.noColor || !isTerminal(stdout)

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = framework.WriterLogger(stdout)
	}

	serverBuilder := &lifecycle.Builder{
		Name:         "server",
		Command:      cfg.Server.Build,
		CleanCommand: cfg.Server.Clean,
		Artifact:     cfg.Server.Artifact,
		Dir:          cfg.Server.Dir,
		Env:          cfg.Server.Env,
		Logger:       framework.PrefixLogger(mainDebugLogger, "server build"),
	}
	server := lifecycle.NewManager(lifecycle.ManagerConfig{
		Builder:      serverBuilder,
		Run:          lifecycle.Command{cfg.Server.Artifact}.With(cfg.Server.Args...),
		ProbeURL:     cfg.Server.ProbeURL(),
		LiveAttempts: cfg.Server.LiveAttempts,
		LiveInterval: cfg.Server.LiveInterval,
		StopGrace:    cfg.Server.StopGrace,
		Logger:       framework.PrefixLogger(mainDebugLogger, "server"),
	})
	clientBuilder := &lifecycle.Builder{
		Name:         "client",
		Command:      cfg.Client.Build,
		CleanCommand: cfg.Client.Clean,
		Artifact:     cfg.Client.Artifact,
		Dir:          cfg.Client.Dir,
		Env:          cfg.Client.Env,
		Logger:       framework.PrefixLogger(mainDebugLogger, "client build"),
	}

	params.filters.Describe(stdout)
	fmt.Fprintf(stdout, "Running %s tests\n", selector)

	testLogger := &ConsoleTestLogger{
		Out:                  stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	run := report.NewRun(string(selector), time.Now())
	result := httptests.RunTestSuite(ctx, selector, httptests.Options{
		Server: server,
		ServerDriver: &driver.ServerDriver{
			Addr:    cfg.Server.Addr(),
			Timeout: cfg.Server.RequestTimeout,
		},
		ServerFixtures: cfg.Server.Fixtures,
		Client:         clientBuilder,
		ClientDriver: &driver.ClientDriver{
			Binary:  cfg.Client.Artifact,
			Host:    cfg.Client.Target,
			Dir:     cfg.Client.Dir,
			Env:     cfg.Client.Env,
			Timeout: cfg.Client.Timeout,
		},
		ClientFixtures: cfg.Client.Fixtures,
		Filter:         params.filters.AsFilter,
		TestLogger:     testLogger,
		Logger:         mainDebugLogger,
	})
	run.Finished = time.Now()
	run.Summary = result.Summary
	run.Aborted = result.Aborted

	fmt.Fprintln(stdout)
	report.Render(stdout, result.Summary, result.Aborted)
	writeReports(cfg.Report, run, stdout)

	switch {
	case result.Aborted != nil:
		return exitAborted
	case !result.Summary.OK():
		return exitFailed
	}
	return exitOK
}

// writeReports exports the optional report files. A failure to write them is reported but does
// not change the outcome of the run.
func writeReports(cfg config.ReportConfig, run report.Run, stdout io.Writer) {
	if cfg.JSON != "" {
		if err := report.WriteJSON(cfg.JSON, run); err != nil {
			fmt.Fprintf(stdout, "Could not write report: %s\n", err)
		} else {
			fmt.Fprintf(stdout, "JSON report written to %s\n", cfg.JSON)
		}
	}
	if cfg.XLSX != "" {
		if err := report.WriteXLSX(cfg.XLSX, run); err != nil {
			fmt.Fprintf(stdout, "Could not write report: %s\n", err)
		} else {
			fmt.Fprintf(stdout, "xlsx report written to %s\n", cfg.XLSX)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
