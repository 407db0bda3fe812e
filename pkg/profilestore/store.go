// Package profilestore persists raw configuration documents on disk.
//
// Directory layout:
//
//	<root>/<category>/<name>.json
//
// Documents are stored exactly as uploaded, in raw pre-resolution form; no
// inheritance logic lives here. Writes are atomic (temp file + rename) so a
// crashed upload never leaves a truncated profile behind.
package profilestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the requested profile does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrAlreadyExists indicates the target profile name is taken.
	ErrAlreadyExists = errors.New("profile already exists")

	// ErrInvalidName indicates a name that is empty or not in sanitized form.
	ErrInvalidName = errors.New("invalid profile name")
)

var (
	validName = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,98}[a-z0-9])?$`)
	nonAlnum  = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns  = regexp.MustCompile(`-+`)
)

// SanitizeName normalizes a user-supplied profile name to the on-disk form:
// lowercase, non-alphanumerics collapsed to single dashes, trimmed, at most
// 100 characters. Returns "" when nothing usable remains.
func SanitizeName(name string) string {
	name = strings.ToLower(name)
	name = nonAlnum.ReplaceAllString(name, "-")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > 100 {
		name = strings.Trim(name[:100], "-")
	}
	return name
}

// Info describes a stored profile.
type Info struct {
	Name     string           `json:"name"`
	Category profile.Category `json:"category"`
	Size     int64            `json:"size"`
	Modified time.Time        `json:"modified"`
}

// Store is a file-backed profile repository.
type Store struct {
	root string
}

// NewStore returns a store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: strings.TrimSpace(root)}
}

// RootDir returns the store's root directory.
func (s *Store) RootDir() string {
	return s.root
}

// EnsureDirs creates the per-category directories.
func (s *Store) EnsureDirs() error {
	if s.root == "" {
		return fmt.Errorf("profile store root dir is empty")
	}
	for _, category := range profile.Categories() {
		if err := os.MkdirAll(filepath.Join(s.root, string(category)), 0755); err != nil {
			return fmt.Errorf("create profile dir for %s: %w", category, err)
		}
	}
	return nil
}

// Path returns the on-disk path for a profile without checking existence.
func (s *Store) Path(category profile.Category, name string) string {
	return filepath.Join(s.root, string(category), name+".json")
}

// Get returns the raw stored document.
func (s *Store) Get(category profile.Category, name string) ([]byte, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%s/%s: %w", category, name, ErrNotFound)
	}
	data, err := os.ReadFile(s.Path(category, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/%s: %w", category, name, ErrNotFound)
		}
		return nil, fmt.Errorf("read profile %s/%s: %w", category, name, err)
	}
	return data, nil
}

// Stat returns metadata for a stored profile.
func (s *Store) Stat(category profile.Category, name string) (Info, error) {
	if !validName.MatchString(name) {
		return Info{}, fmt.Errorf("%s/%s: %w", category, name, ErrNotFound)
	}
	fi, err := os.Stat(s.Path(category, name))
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, fmt.Errorf("%s/%s: %w", category, name, ErrNotFound)
		}
		return Info{}, fmt.Errorf("stat profile %s/%s: %w", category, name, err)
	}
	return Info{Name: name, Category: category, Size: fi.Size(), Modified: fi.ModTime()}, nil
}

// Exists reports whether the profile is present.
func (s *Store) Exists(category profile.Category, name string) bool {
	_, err := s.Stat(category, name)
	return err == nil
}

// Put writes a document atomically, replacing any existing one.
func (s *Store) Put(category profile.Category, name string, data []byte) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	dir := filepath.Join(s.root, string(category))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, name+".json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp profile: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(category, name)); err != nil {
		return fmt.Errorf("rename profile file: %w", err)
	}
	return nil
}

// List returns the profiles in a category sorted by name.
func (s *Store) List(category profile.Category) ([]Info, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(category)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profile dir for %s: %w", category, err)
	}

	out := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		info, err := s.Stat(category, name)
		if err != nil {
			continue
		}
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Rename moves a profile to a new name within its category. The target must
// not already exist.
func (s *Store) Rename(category profile.Category, name, newName string) (Info, error) {
	if _, err := s.Stat(category, name); err != nil {
		return Info{}, err
	}
	if !validName.MatchString(newName) {
		return Info{}, fmt.Errorf("%q: %w", newName, ErrInvalidName)
	}
	if newName == name {
		return s.Stat(category, name)
	}
	if s.Exists(category, newName) {
		return Info{}, fmt.Errorf("%s/%s: %w", category, newName, ErrAlreadyExists)
	}
	if err := os.Rename(s.Path(category, name), s.Path(category, newName)); err != nil {
		return Info{}, fmt.Errorf("rename profile %s/%s: %w", category, name, err)
	}
	return s.Stat(category, newName)
}

// Delete removes a stored profile.
func (s *Store) Delete(category profile.Category, name string) error {
	if _, err := s.Stat(category, name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(category, name)); err != nil {
		return fmt.Errorf("delete profile %s/%s: %w", category, name, err)
	}
	return nil
}

// IsNotFound returns true if the error indicates a missing profile.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
