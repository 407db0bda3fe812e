// Package slicer executes the external slicing engine as a supervised
// subprocess and builds its command-line invocations.
//
// The engine is an expensive, crash-prone binary with a headless GUI
// toolkit dependency: it needs a display-server environment variable even
// when no window is ever shown, and a hung run must be forcibly terminated
// rather than waited on forever.
package slicer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the wall-clock budget for one engine run.
const DefaultTimeout = 300 * time.Second

// waitDelay bounds how long Wait blocks on descendants holding the output
// pipes open after the engine itself has been killed.
const waitDelay = 5 * time.Second

// Sentinel errors for engine execution.
var (
	// ErrLaunch indicates the engine binary could not be started at all.
	ErrLaunch = errors.New("failed to launch slicer")

	// ErrTimeout indicates the engine exceeded its wall-clock budget and
	// was terminated.
	ErrTimeout = errors.New("slicer timed out")
)

// Spec describes one engine invocation.
type Spec struct {
	// Binary is the path to the engine executable.
	Binary string

	// Args is the full argument list.
	Args []string

	// Dir is the working directory for the run.
	Dir string

	// Env is the child environment. Nil means the current process
	// environment.
	Env []string

	// Timeout is the wall-clock budget. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Result captures the outcome of a completed engine run.
//
// A nonzero exit code is a successful Result, not an error: interpreting it
// as a slicing failure is the scheduler's call, not the runner's.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}

// ProcessRunner executes engine invocations.
type ProcessRunner struct {
	logger *zap.Logger
}

// NewProcessRunner returns a runner that logs through the given logger.
func NewProcessRunner(logger *zap.Logger) *ProcessRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessRunner{logger: logger}
}

// Run executes the engine and captures its output in full.
//
// On timeout the engine's entire process group is killed, the child is
// reaped, and ErrTimeout is returned. Cancellation of ctx also kills the
// group and fails with a context.Canceled error. On a start failure
// ErrLaunch is returned. Every exit path waits on the child so no zombie
// survives.
func (r *ProcessRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, spec.Binary, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// The engine forks helpers; killing only the direct child would leave
	// them running after a timeout.
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return terminateProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	r.logger.Debug("Starting slicer",
		zap.String("binary", spec.Binary),
		zap.Strings("args", spec.Args),
		zap.Duration("timeout", timeout))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: elapsed,
	}

	switch runCtx.Err() {
	case context.DeadlineExceeded:
		r.logger.Warn("Slicer timed out",
			zap.Duration("timeout", timeout),
			zap.Duration("elapsed", elapsed))
		return result, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case context.Canceled:
		// The caller's context died and the child was killed. Not a
		// timeout and not an engine verdict.
		r.logger.Warn("Slicer run canceled", zap.Duration("elapsed", elapsed))
		return result, fmt.Errorf("slicer run canceled: %w", context.Canceled)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logger.Debug("Slicer exited nonzero",
			zap.Int("exit_code", result.ExitCode),
			zap.Duration("elapsed", elapsed))
		return result, nil
	}
	if err != nil {
		return Result{Elapsed: elapsed}, fmt.Errorf("%w: %s: %v", ErrLaunch, spec.Binary, err)
	}

	r.logger.Debug("Slicer finished", zap.Duration("elapsed", elapsed))
	return result, nil
}

// Environ returns the child environment for an engine run: the current
// process environment with the display server variable appended.
func Environ(display string) []string {
	env := os.Environ()
	if display != "" {
		env = append(env, "DISPLAY="+display)
	}
	return env
}

// IsTimeout returns true if the error indicates the engine exceeded its budget.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsLaunch returns true if the error indicates the engine could not start.
func IsLaunch(err error) bool {
	return errors.Is(err, ErrLaunch)
}
