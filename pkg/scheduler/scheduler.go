// Package scheduler serializes access to the external slicing engine.
//
// The engine is a single-instance subprocess: at most one invocation is in
// flight system-wide. Submission is accept-or-reject: a second submit
// while busy fails fast with ErrBusy rather than queueing behind a
// potentially 300-second run.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
	"github.com/zvakanaka/orcaslicer-web/pkg/slicer"
)

// Runner executes engine invocations. Satisfied by slicer.ProcessRunner.
type Runner interface {
	Run(ctx context.Context, spec slicer.Spec) (slicer.Result, error)
}

// Repository is the read contract the scheduler needs from profile storage.
type Repository interface {
	Get(category profile.Category, name string) ([]byte, error)
}

// Options configures the scheduler.
type Options struct {
	// Binary is the path to the engine executable.
	Binary string

	// WorkDir is the root under which per-job transient workspaces are
	// created.
	WorkDir string

	// Display is the display-server address exported to the engine via
	// DISPLAY. The engine's GUI toolkit needs it even headless.
	Display string

	// Timeout is the per-job wall-clock budget. Zero means
	// slicer.DefaultTimeout.
	Timeout time.Duration
}

// Request describes one slice submission.
type Request struct {
	// ModelName is the uploaded model's file name; its extension tells the
	// engine the mesh format.
	ModelName string

	// Model is the model file content.
	Model []byte

	// Printer, Process and Filament name stored profiles by category.
	Printer  string
	Process  string
	Filament string

	// BedType optionally selects the build plate.
	BedType string

	// Orient asks the engine to auto-orient the model.
	Orient bool
}

// Result is a successful slice outcome.
type Result struct {
	// GCodeName is the engine's chosen artifact file name.
	GCodeName string

	// GCode is the toolpath artifact content.
	GCode []byte

	// Elapsed is the wall-clock duration of the job.
	Elapsed time.Duration

	// Stdout is the engine's captured standard output, kept as diagnostics.
	Stdout string
}

// Status is a snapshot of the scheduler's state.
type Status struct {
	Busy    bool      `json:"busy"`
	Model   string    `json:"model,omitempty"`
	Started time.Time `json:"started,omitempty"`
}

// Scheduler owns the single-concurrency invariant over the engine.
//
// The busy flag and in-flight job identity are guarded by one mutex and
// never exposed directly; callers only get Submit and Status, so the
// exclusivity invariant cannot be bypassed.
type Scheduler struct {
	runner   Runner
	repo     Repository
	resolver *profile.Resolver
	opts     Options
	logger   *zap.Logger

	mu      sync.Mutex
	busy    bool
	model   string
	started time.Time
}

// New returns an idle scheduler.
func New(runner Runner, repo Repository, resolver *profile.Resolver, opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	return &Scheduler{
		runner:   runner,
		repo:     repo,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

// Status returns the current busy/idle snapshot. It never blocks on an
// in-flight job: the mutex is only held for state transitions, not for the
// duration of a run.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.busy {
		return Status{}
	}
	return Status{Busy: true, Model: s.model, Started: s.started}
}

// Submit runs one slice job to completion.
//
// If the scheduler is busy it fails immediately with ErrBusy. Otherwise it
// resolves the three profiles from storage, materializes them and the model
// in a transient workspace, invokes the engine, and returns the artifact.
// The workspace is deleted and the scheduler returns to idle on every exit
// path.
func (s *Scheduler) Submit(ctx context.Context, req Request) (*Result, error) {
	if !s.tryAcquire(req.ModelName) {
		return nil, ErrBusy
	}
	defer s.release()

	start := time.Now()

	// Resolve all three profiles before touching the filesystem so a
	// missing or broken profile never leaves files behind.
	selections := []struct {
		category profile.Category
		name     string
	}{
		{profile.CategoryPrinter, req.Printer},
		{profile.CategoryProcess, req.Process},
		{profile.CategoryFilament, req.Filament},
	}
	docs := make(map[profile.Category]*profile.Document, 3)
	for _, sel := range selections {
		category, name := sel.category, sel.name
		raw, err := s.repo.Get(category, name)
		if err != nil {
			return nil, err
		}
		doc, err := profile.ParseDocument(raw)
		if err != nil {
			return nil, err
		}
		resolved, err := s.resolver.Resolve(category, doc)
		if err != nil {
			return nil, err
		}
		docs[category] = profile.InjectMetadata(category, resolved)
	}

	jobID := uuid.New().String()
	ws, err := newWorkspace(s.opts.WorkDir, jobID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			s.logger.Warn("Failed to remove job workspace",
				zap.String("job_id", jobID),
				zap.Error(err))
		}
	}()

	modelPath, err := ws.writeModel(req.ModelName, req.Model)
	if err != nil {
		return nil, err
	}
	paths := make(map[profile.Category]string, 3)
	for category, doc := range docs {
		path, err := ws.writeProfile(category, doc)
		if err != nil {
			return nil, err
		}
		paths[category] = path
	}

	inv := slicer.Invocation{
		ModelPath:    modelPath,
		PrinterPath:  paths[profile.CategoryPrinter],
		ProcessPath:  paths[profile.CategoryProcess],
		FilamentPath: paths[profile.CategoryFilament],
		OutputDir:    ws.outputDir,
		Orient:       req.Orient,
		BedType:      req.BedType,
	}

	s.logger.Info("Starting slice job",
		zap.String("job_id", jobID),
		zap.String("model", req.ModelName),
		zap.String("printer", req.Printer),
		zap.String("process", req.Process),
		zap.String("filament", req.Filament))

	// An accepted job runs to completion or timeout; the caller cannot
	// cancel it. Detaching here keeps a client disconnect (or proxy
	// timeout) from killing the engine mid-run.
	res, err := s.runner.Run(context.WithoutCancel(ctx), slicer.Spec{
		Binary:  s.opts.Binary,
		Args:    inv.Args(),
		Dir:     ws.root,
		Env:     slicer.Environ(s.opts.Display),
		Timeout: s.opts.Timeout,
	})
	if err != nil {
		return nil, err
	}

	matches, err := ws.gcodeFiles()
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 || len(matches) == 0 {
		s.logger.Warn("Slice job produced no artifact",
			zap.String("job_id", jobID),
			zap.Int("exit_code", res.ExitCode))
		return nil, &SliceError{
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}

	gcodePath := matches[0]
	gcode, err := os.ReadFile(gcodePath)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	s.logger.Info("Slice job finished",
		zap.String("job_id", jobID),
		zap.Duration("elapsed", elapsed),
		zap.Int("gcode_bytes", len(gcode)))

	return &Result{
		GCodeName: filepath.Base(gcodePath),
		GCode:     gcode,
		Elapsed:   elapsed,
		Stdout:    res.Stdout,
	}, nil
}

// tryAcquire attempts the Idle -> Busy transition atomically.
func (s *Scheduler) tryAcquire(model string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	s.model = model
	s.started = time.Now()
	return true
}

// release performs the Busy -> Idle transition.
func (s *Scheduler) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.model = ""
	s.started = time.Time{}
}
