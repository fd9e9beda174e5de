package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "checkpoint.db"))
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Load()
	require.NoError(t, err)
	require.False(t, found, "fresh store should report no checkpoint")
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "checkpoint.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(42, 10, 3))

	state, found, err := s.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 42, state.LamportTS)
	require.EqualValues(t, 10, state.Head)
	require.EqualValues(t, 3, state.Tail)
}

func TestSaveOverwritesPreviousCheckpoint(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "checkpoint.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(1, 1, 0))
	require.NoError(t, s.Save(99, 50, 20))

	state, found, err := s.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 99, state.LamportTS)
	require.EqualValues(t, 50, state.Head)
	require.EqualValues(t, 20, state.Tail)
}

func TestReopenPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Save(7, 2, 1))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	state, found, err := s2.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 7, state.LamportTS)
}
