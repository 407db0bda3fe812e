package baseindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
)

func writeBundled(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeBundled(t, dir, "BBL/machine/Bambu Lab X1 Carbon.json",
		`{"name": "Bambu Lab X1 Carbon", "nozzle_diameter": "0.4"}`)
	writeBundled(t, dir, "BBL/process/0.20mm Standard.json",
		`{"name": "0.20mm Standard", "layer_height": "0.2"}`)
	writeBundled(t, dir, "BBL/filament/Generic PLA.json",
		`{"name": "Generic PLA", "filament_type": "PLA"}`)
	// Nested vendor subdirectories are picked up too.
	writeBundled(t, dir, "Prusa/machine/mk3/MK3S.json",
		`{"name": "MK3S", "nozzle_diameter": "0.4"}`)

	idx, err := Load(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Count())

	doc, ok := idx.Lookup(profile.CategoryPrinter, "Bambu Lab X1 Carbon")
	require.True(t, ok)
	nd, _ := doc.GetString("nozzle_diameter")
	assert.Equal(t, "0.4", nd)

	_, ok = idx.Lookup(profile.CategoryProcess, "0.20mm Standard")
	assert.True(t, ok)
	_, ok = idx.Lookup(profile.CategoryFilament, "Generic PLA")
	assert.True(t, ok)
	_, ok = idx.Lookup(profile.CategoryPrinter, "MK3S")
	assert.True(t, ok)
}

func TestLoad_CategorySeparation(t *testing.T) {
	dir := t.TempDir()
	writeBundled(t, dir, "V/machine/Shared.json", `{"name": "Shared", "kind": "printer"}`)
	writeBundled(t, dir, "V/process/Shared.json", `{"name": "Shared", "kind": "process"}`)

	idx, err := Load(dir, zap.NewNop())
	require.NoError(t, err)

	doc, ok := idx.Lookup(profile.CategoryPrinter, "Shared")
	require.True(t, ok)
	kind, _ := doc.GetString("kind")
	assert.Equal(t, "printer", kind)

	doc, ok = idx.Lookup(profile.CategoryProcess, "Shared")
	require.True(t, ok)
	kind, _ = doc.GetString("kind")
	assert.Equal(t, "process", kind)
}

func TestLoad_FirstNameWins(t *testing.T) {
	dir := t.TempDir()
	// Vendor dirs iterate lexically, so "Alpha" is scanned before "Beta".
	writeBundled(t, dir, "Alpha/machine/p.json", `{"name": "Dup", "vendor": "alpha"}`)
	writeBundled(t, dir, "Beta/machine/p.json", `{"name": "Dup", "vendor": "beta"}`)

	idx, err := Load(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Count())

	doc, ok := idx.Lookup(profile.CategoryPrinter, "Dup")
	require.True(t, ok)
	vendor, _ := doc.GetString("vendor")
	assert.Equal(t, "alpha", vendor)
}

func TestLoad_SkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeBundled(t, dir, "V/machine/broken.json", `{not json`)
	writeBundled(t, dir, "V/machine/nameless.json", `{"nozzle_diameter": "0.4"}`)
	writeBundled(t, dir, "V/machine/good.json", `{"name": "Good", "nozzle_diameter": "0.4"}`)
	writeBundled(t, dir, "V/other/ignored.json", `{"name": "Ignored"}`)

	idx, err := Load(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Count())

	_, ok := idx.Lookup(profile.CategoryPrinter, "Good")
	assert.True(t, ok)
}

func TestLoad_MissingDir(t *testing.T) {
	idx, err := Load(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Count())

	_, ok := idx.Lookup(profile.CategoryPrinter, "anything")
	assert.False(t, ok)
}
