// Package baseindex loads the factory configuration profiles bundled with
// the slicing engine's installation and indexes them by category and name.
//
// The index is built once at startup and is immutable for the process
// lifetime; it is the set of inheritance roots user profiles may name in
// their "inherits" key.
package baseindex

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
)

// bundledPattern matches profile documents beneath each vendor directory in
// the engine installation, e.g. "BBL/machine/Bambu Lab X1 Carbon.json".
const bundledPattern = "*/{machine,process,filament}/**/*.json"

// subdirCategory maps an installation subdirectory back to our category.
var subdirCategory = map[string]profile.Category{
	"machine":  profile.CategoryPrinter,
	"process":  profile.CategoryProcess,
	"filament": profile.CategoryFilament,
}

// Index is a read-only mapping from (category, name) to a bundled factory
// profile document.
type Index struct {
	docs  map[profile.Category]map[string]*profile.Document
	count int
}

// Load scans dir for bundled profiles and builds the index.
//
// For each category the first document claiming a given name wins, matching
// vendor directory iteration order. Files that are unreadable or not valid
// JSON objects are skipped. A missing dir yields an empty index rather than
// an error so the service can still serve profiles that do not inherit.
func Load(dir string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &Index{docs: map[profile.Category]map[string]*profile.Document{
		profile.CategoryPrinter:  {},
		profile.CategoryProcess:  {},
		profile.CategoryFilament: {},
	}}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Warn("Bundled profiles dir not found", zap.String("dir", dir))
		return idx, nil
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, bundledPattern)
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		category, ok := categoryFor(match)
		if !ok {
			continue
		}
		doc, err := readDocument(fsys, match)
		if err != nil {
			logger.Debug("Skipping unreadable bundled profile",
				zap.String("path", match),
				zap.Error(err))
			continue
		}
		name, ok := doc.GetString(profile.KeyName)
		if !ok || name == "" {
			continue
		}
		if _, exists := idx.docs[category][name]; exists {
			continue
		}
		idx.docs[category][name] = doc
		idx.count++
	}

	logger.Info("Indexed bundled system profiles",
		zap.String("dir", dir),
		zap.Int("count", idx.count))

	return idx, nil
}

// Lookup returns the bundled profile for (category, name).
func (i *Index) Lookup(category profile.Category, name string) (*profile.Document, bool) {
	byName, ok := i.docs[category]
	if !ok {
		return nil, false
	}
	doc, ok := byName[name]
	return doc, ok
}

// Count returns the total number of indexed profiles.
func (i *Index) Count() int {
	return i.count
}

// categoryFor derives the category from the installation subdirectory, the
// path segment directly under the vendor directory.
func categoryFor(match string) (profile.Category, bool) {
	segments := strings.Split(match, "/")
	if len(segments) < 3 {
		return "", false
	}
	category, ok := subdirCategory[segments[1]]
	return category, ok
}

func readDocument(fsys fs.FS, name string) (*profile.Document, error) {
	data, err := fs.ReadFile(fsys, path.Clean(name))
	if err != nil {
		return nil, err
	}
	return profile.ParseDocument(data)
}
