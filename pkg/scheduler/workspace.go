package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
)

// workspace is the private transient directory backing one slice job.
//
// Everything a job materializes (model, resolved profile documents, engine
// output) lives under one root, so Close removes it all regardless of how
// the job ended.
type workspace struct {
	root      string
	outputDir string
}

func newWorkspace(baseDir, jobID string) (*workspace, error) {
	root := filepath.Join(baseDir, jobID)
	outputDir := filepath.Join(root, "output")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create job workspace: %w", err)
	}
	return &workspace{root: root, outputDir: outputDir}, nil
}

// writeModel materializes the uploaded model under the workspace root.
func (w *workspace) writeModel(name string, data []byte) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidModel, name)
	}
	path := filepath.Join(w.root, base)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write model file: %w", err)
	}
	return path, nil
}

// writeProfile materializes a resolved document as <category>.json.
func (w *workspace) writeProfile(category profile.Category, doc *profile.Document) (string, error) {
	data, err := doc.Encode()
	if err != nil {
		return "", fmt.Errorf("encode %s profile: %w", category, err)
	}
	path := filepath.Join(w.root, string(category)+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s profile: %w", category, err)
	}
	return path, nil
}

// gcodeFiles returns the toolpath artifacts the engine produced, if any.
func (w *workspace) gcodeFiles() ([]string, error) {
	return doublestar.FilepathGlob(filepath.Join(w.outputDir, "*.gcode"))
}

// Close deletes the workspace and every file under it.
func (w *workspace) Close() error {
	return os.RemoveAll(w.root)
}
