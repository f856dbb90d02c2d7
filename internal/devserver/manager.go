package devserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/vango-export/internal/errors"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Command is the dev server command line, e.g. ["vango", "dev"].
	Command []string

	// Dir is the working directory of the command.
	Dir string

	// Env is appended to the current environment.
	Env []string

	// ReadyTimeout bounds how long Start waits for the server (default: 30s).
	ReadyTimeout time.Duration

	// PollInterval is the delay between readiness checks (default: 200ms).
	PollInterval time.Duration

	// Stdout and Stderr receive the command output (default: os.Stderr).
	Stdout io.Writer
	Stderr io.Writer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Manager runs a dev server process for the duration of an export.
type Manager struct {
	client  *Client
	options ManagerOptions
	logger  *slog.Logger

	mu   sync.Mutex
	proc *processHandle
}

// NewManager creates a manager that starts options.Command and waits for
// client to answer.
func NewManager(client *Client, options ManagerOptions) *Manager {
	if options.ReadyTimeout <= 0 {
		options.ReadyTimeout = 30 * time.Second
	}
	if options.PollInterval <= 0 {
		options.PollInterval = 200 * time.Millisecond
	}
	if options.Stdout == nil {
		options.Stdout = os.Stderr
	}
	if options.Stderr == nil {
		options.Stderr = os.Stderr
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		client:  client,
		options: options,
		logger:  logger,
	}
}

// Start runs the command and blocks until the dev server is ready. The
// process is stopped again if it does not become ready.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.proc != nil {
		return nil
	}
	if len(m.options.Command) == 0 {
		return errors.New("E121").
			WithDetail("No dev server command is configured.").
			WithSuggestion(`Set "dev.command" in vango.json or pass --dev-url`)
	}

	env := append(os.Environ(), m.options.Env...)
	proc, err := startProcess(m.options.Command, m.options.Dir, env, m.options.Stdout, m.options.Stderr)
	if err != nil {
		return errors.New("E202").
			WithDetail(fmt.Sprintf("Could not start %q.", strings.Join(m.options.Command, " "))).
			Wrap(err)
	}
	m.logger.Debug("started dev server", "command", m.options.Command, "pid", proc.pid())

	if err := m.waitReady(ctx, proc); err != nil {
		stopProcess(proc)
		return err
	}

	m.proc = proc
	m.logger.Debug("dev server ready", "url", m.client.URL())
	return nil
}

func (m *Manager) waitReady(ctx context.Context, proc *processHandle) error {
	ctx, cancel := context.WithTimeout(ctx, m.options.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(m.options.PollInterval)
	defer ticker.Stop()

	for {
		if err := m.client.Ping(ctx); err == nil {
			return nil
		}

		select {
		case <-proc.exited:
			return errors.New("E202").
				WithDetail(fmt.Sprintf("%q exited before the dev server was ready.", strings.Join(m.options.Command, " ")))
		case <-ctx.Done():
			return errors.New("E202").
				WithDetail(fmt.Sprintf("%s did not answer within %s.", m.client.URL(), m.options.ReadyTimeout)).
				Wrap(ctx.Err())
		case <-ticker.C:
		}
	}
}

// Stop stops the dev server and every process it spawned.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.proc == nil {
		return
	}
	stopProcess(m.proc)
	m.proc = nil
	m.logger.Debug("stopped dev server")
}

// Running reports whether the manager holds a started process.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proc != nil
}
