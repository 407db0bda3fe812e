package slicer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a unix shell")
	}
	path := filepath.Join(t.TempDir(), "fake-slicer.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestProcessRunner_CapturesOutput(t *testing.T) {
	script := writeScript(t, "echo sliced ok\necho warn >&2\n")
	r := NewProcessRunner(zap.NewNop())

	result, err := r.Run(context.Background(), Spec{Binary: script})
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "sliced ok\n", result.Stdout)
	assert.Equal(t, "warn\n", result.Stderr)
	assert.Greater(t, result.Elapsed, time.Duration(0))
}

func TestProcessRunner_NonzeroExitIsNotError(t *testing.T) {
	script := writeScript(t, "echo boom >&2\nexit 3\n")
	r := NewProcessRunner(zap.NewNop())

	result, err := r.Run(context.Background(), Spec{Binary: script})
	require.NoError(t, err)

	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "boom\n", result.Stderr)
}

func TestProcessRunner_Timeout(t *testing.T) {
	script := writeScript(t, "sleep 30\n")
	r := NewProcessRunner(zap.NewNop())

	start := time.Now()
	_, err := r.Run(context.Background(), Spec{
		Binary:  script,
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Less(t, elapsed, 10*time.Second, "child reaped promptly after the kill")
}

func TestProcessRunner_CallerCancel(t *testing.T) {
	script := writeScript(t, "sleep 30\n")
	r := NewProcessRunner(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := r.Run(ctx, Spec{Binary: script})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(err), "cancellation is not a timeout")
	assert.False(t, IsLaunch(err))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestProcessRunner_LaunchFailure(t *testing.T) {
	r := NewProcessRunner(zap.NewNop())

	_, err := r.Run(context.Background(), Spec{
		Binary: filepath.Join(t.TempDir(), "does-not-exist"),
	})
	require.Error(t, err)
	assert.True(t, IsLaunch(err))
	assert.False(t, IsTimeout(err))
}

func TestProcessRunner_WorkingDirAndEnv(t *testing.T) {
	script := writeScript(t, "pwd\necho \"$DISPLAY\"\n")
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	r := NewProcessRunner(zap.NewNop())
	result, err := r.Run(context.Background(), Spec{
		Binary: script,
		Dir:    dir,
		Env:    Environ(":99"),
	})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, resolved)
	assert.Contains(t, result.Stdout, ":99")
}

func TestEnviron(t *testing.T) {
	env := Environ(":42")
	assert.Contains(t, env, "DISPLAY=:42")

	base := Environ("")
	assert.Equal(t, len(os.Environ()), len(base))
}
