package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rustnet/http-contract-tests/framework"

	"golang.org/x/time/rate"
)

const (
	DefaultLiveAttempts = 5
	DefaultLiveInterval = time.Second
	DefaultStopGrace    = 5 * time.Second

	minProbeTimeout = 500 * time.Millisecond
)

var (
	ErrLaunchFailed = errors.New("launch failed")
	ErrUnreachable  = errors.New("server unreachable")
)

// ManagerConfig describes how to build, run and probe the server under test.
type ManagerConfig struct {
	Builder *Builder
	// Run is the command that starts the server. If empty, the built artifact is run with no
	// arguments.
	Run Command
	// ProbeURL receives the liveness GET, e.g. http://127.0.0.1:7878/.
	ProbeURL     string
	LiveAttempts int
	LiveInterval time.Duration
	StopGrace    time.Duration
	Logger       framework.Logger
}

// Manager owns the server subprocess for one run.
type Manager struct {
	config  ManagerConfig
	logger  framework.Logger
	client  *http.Client
	lock    sync.Mutex
	handle  ProcessHandle
	cmd     *exec.Cmd
	exited  chan struct{}
	exitErr error
}

func NewManager(config ManagerConfig) *Manager {
	if config.LiveAttempts <= 0 {
		config.LiveAttempts = DefaultLiveAttempts
	}
	if config.LiveInterval <= 0 {
		config.LiveInterval = DefaultLiveInterval
	}
	if config.StopGrace <= 0 {
		config.StopGrace = DefaultStopGrace
	}
	probeTimeout := config.LiveInterval
	if probeTimeout < minProbeTimeout {
		probeTimeout = minProbeTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Manager{
		config: config,
		logger: logger,
		client: &http.Client{
			Timeout:   probeTimeout,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	}
}

// Handle returns a snapshot of the process handle.
func (m *Manager) Handle() ProcessHandle {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.handle
}

func (m *Manager) State() State {
	return m.Handle().State
}

func (m *Manager) setState(to State) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	from := m.handle.State
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid lifecycle transition %s -> %s", from, to)
	}
	m.handle.State = to
	m.logger.Printf("state %s -> %s", from, to)
	return nil
}

func (m *Manager) fail(err error) error {
	_ = m.setState(Failed)
	return err
}

// Build runs the build step for the server.
func (m *Manager) Build(ctx context.Context) error {
	if err := m.setState(Building); err != nil {
		return err
	}
	if err := m.config.Builder.Build(ctx); err != nil {
		return m.fail(err)
	}
	return m.setState(Built)
}

// Start launches the server subprocess and records its process ID.
func (m *Manager) Start() error {
	if err := m.setState(Starting); err != nil {
		return err
	}
	run := m.config.Run
	if run.IsEmpty() {
		run = Command{m.config.Builder.Artifact}
	}
	m.logger.Printf("starting: %s", run)

	cmd := exec.Command(run[0], run[1:]...)
	cmd.Dir = m.config.Builder.Dir
	if len(m.config.Builder.Env) > 0 {
		cmd.Env = append(os.Environ(), m.config.Builder.Env...)
	}
	output := &logWriter{logger: framework.PrefixLogger(m.logger, "output")}
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Start(); err != nil {
		return m.fail(fmt.Errorf("%w: %s", ErrLaunchFailed, err))
	}
	if cmd.Process == nil || cmd.Process.Pid == 0 {
		return m.fail(fmt.Errorf("%w: no process identifier", ErrLaunchFailed))
	}

	exited := make(chan struct{})
	m.lock.Lock()
	m.cmd = cmd
	m.exited = exited
	m.handle.ID = cmd.Process.Pid
	m.lock.Unlock()

	go func() {
		err := cmd.Wait()
		m.lock.Lock()
		m.exitErr = err
		m.lock.Unlock()
		close(exited)
	}()

	m.logger.Printf("started pid %d", cmd.Process.Pid)
	return nil
}

// AwaitLive probes ProbeURL with a GET at a fixed interval until it gets a 2xx response or
// runs out of attempts. It gives up early if the process exits.
func (m *Manager) AwaitLive(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(m.config.LiveInterval), 1)
	var lastErr error
	for attempt := 1; attempt <= m.config.LiveAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			// the limiter refuses early when the next slot falls past the deadline
			<-ctx.Done()
			return ctx.Err()
		}
		if m.hasExited() {
			lastErr = fmt.Errorf("process exited: %v", m.exitError())
			break
		}
		lastErr = m.probe(ctx)
		if lastErr == nil {
			m.logger.Printf("live after %d attempt(s)", attempt)
			return m.setState(Live)
		}
		m.logger.Printf("liveness attempt %d/%d: %s", attempt, m.config.LiveAttempts, lastErr)
	}
	if err := m.setState(Unreachable); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s after %d attempts: %s", ErrUnreachable, m.config.ProbeURL, m.config.LiveAttempts, lastErr)
}

func (m *Manager) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.config.ProbeURL, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func (m *Manager) hasExited() bool {
	m.lock.Lock()
	exited := m.exited
	m.lock.Unlock()
	if exited == nil {
		return false
	}
	select {
	case <-exited:
		return true
	default:
		return false
	}
}

func (m *Manager) exitError() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.exitErr
}

// Stop asks the subprocess to terminate, waits for it to exit, and kills it if it has not
// exited within the grace period. It is safe to call at any time and more than once.
func (m *Manager) Stop() {
	m.lock.Lock()
	cmd, exited, state := m.cmd, m.exited, m.handle.State
	m.lock.Unlock()

	if cmd == nil {
		if !state.Terminal() {
			m.logger.Printf("stop: no process was started")
		}
		return
	}
	if state != Failed && state != Stopped {
		_ = m.setState(Stopping)
	}

	select {
	case <-exited:
	default:
		m.logger.Printf("stopping pid %d", cmd.Process.Pid)
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			_ = cmd.Process.Kill()
		}
		timer := time.NewTimer(m.config.StopGrace)
		select {
		case <-exited:
			timer.Stop()
		case <-timer.C:
			m.logger.Printf("pid %d did not exit within %s; killing", cmd.Process.Pid, m.config.StopGrace)
			_ = cmd.Process.Kill()
			<-exited
		}
	}

	if m.State() == Stopping {
		_ = m.setState(Stopped)
	}
	m.logger.Printf("stopped: %v", m.exitError())
}

// CleanupArtifacts removes the server build output. Failures are only logged.
func (m *Manager) CleanupArtifacts(ctx context.Context) {
	m.config.Builder.CleanupArtifacts(ctx)
}
