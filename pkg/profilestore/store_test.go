package profilestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir())
	require.NoError(t, s.EnsureDirs())
	return s
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Profile", "my-profile"},
		{"0.2mm FINE (draft)", "0-2mm-fine-draft"},
		{"already-clean", "already-clean"},
		{"--leading--trailing--", "leading--trailing"},
		{"___", ""},
		{"", ""},
		{"ümlaut näme", "mlaut-n-me"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t)
	data := []byte(`{"layer_height": "0.2"}`)

	require.NoError(t, s.Put(profile.CategoryProcess, "fine", data))

	got, err := s.Get(profile.CategoryProcess, "fine")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// No stray temp files after an atomic write.
	entries, err := os.ReadDir(filepath.Join(s.RootDir(), "process"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fine.json", entries[0].Name())
}

func TestStore_PutReplaces(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(profile.CategoryProcess, "fine", []byte(`{"v": "1"}`)))
	require.NoError(t, s.Put(profile.CategoryProcess, "fine", []byte(`{"v": "2"}`)))

	got, err := s.Get(profile.CategoryProcess, "fine")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v": "2"}`, string(got))
}

func TestStore_PutInvalidName(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "Has Spaces", "UPPER", "../escape", "-lead", "trail-"} {
		err := s.Put(profile.CategoryProcess, name, []byte(`{}`))
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(profile.CategoryFilament, "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	// Path traversal attempts read as missing, never as file access.
	_, err = s.Get(profile.CategoryFilament, "../../etc/passwd")
	assert.True(t, IsNotFound(err))
}

func TestStore_List(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(profile.CategoryPrinter, "zeta", []byte(`{}`)))
	require.NoError(t, s.Put(profile.CategoryPrinter, "alpha", []byte(`{"k": "v"}`)))
	require.NoError(t, s.Put(profile.CategoryProcess, "other-cat", []byte(`{}`)))

	infos, err := s.List(profile.CategoryPrinter)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "zeta", infos[1].Name)
	assert.Equal(t, profile.CategoryPrinter, infos[0].Category)
	assert.Equal(t, int64(10), infos[0].Size)
	assert.False(t, infos[0].Modified.IsZero())
}

func TestStore_ListEmptyAndMissingDir(t *testing.T) {
	s := newTestStore(t)
	infos, err := s.List(profile.CategoryFilament)
	require.NoError(t, err)
	assert.Empty(t, infos)

	bare := NewStore(filepath.Join(t.TempDir(), "never-created"))
	infos, err = bare.List(profile.CategoryFilament)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestStore_Rename(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(profile.CategoryProcess, "old", []byte(`{"v": "1"}`)))

	info, err := s.Rename(profile.CategoryProcess, "old", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", info.Name)

	assert.False(t, s.Exists(profile.CategoryProcess, "old"))
	got, err := s.Get(profile.CategoryProcess, "new")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v": "1"}`, string(got))
}

func TestStore_RenameConflict(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(profile.CategoryProcess, "a", []byte(`{}`)))
	require.NoError(t, s.Put(profile.CategoryProcess, "b", []byte(`{}`)))

	_, err := s.Rename(profile.CategoryProcess, "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// Same-name rename is a no-op, not a conflict.
	info, err := s.Rename(profile.CategoryProcess, "a", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", info.Name)
}

func TestStore_RenameMissingSource(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Rename(profile.CategoryProcess, "ghost", "new")
	assert.True(t, IsNotFound(err))
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(profile.CategoryFilament, "pla", []byte(`{}`)))

	require.NoError(t, s.Delete(profile.CategoryFilament, "pla"))
	assert.False(t, s.Exists(profile.CategoryFilament, "pla"))

	err := s.Delete(profile.CategoryFilament, "pla")
	assert.True(t, IsNotFound(err))
}
