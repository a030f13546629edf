package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aweris/symstash/internal/sdk"
)

func mustRemote(t *testing.T, id, etag string) sdk.Remote {
	t.Helper()
	info, err := sdk.Parse(id)
	require.NoError(t, err)
	return sdk.NewRemote(info, 1024, etag)
}

func TestReadMissingIsFresh(t *testing.T) {
	f := NewStateFile(t.TempDir())

	state, err := f.Read()
	require.NoError(t, err)
	assert.Nil(t, state.Revision)
	assert.Equal(t, 0, state.Len())
	assert.Equal(t, uint64(0), state.Rev())
}

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	f := NewStateFile(dir)

	state := NewSyncState()
	state.Put(mustRemote(t, "iOS_10.2.1_14D27", "sha256:a"))
	state.Put(mustRemote(t, "iOS_10.3.1_14E304", "sha256:b"))
	state.Bump()
	require.NoError(t, f.Write(state))

	_, err := os.Stat(filepath.Join(dir, "sync.tempstate"))
	assert.ErrorIs(t, err, os.ErrNotExist, "temp state must be renamed away")

	got, err := NewStateFile(dir).Read()
	require.NoError(t, err)
	if diff := cmp.Diff(state, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(1), got.Rev())
}

func TestStateFileFormat(t *testing.T) {
	dir := t.TempDir()
	f := NewStateFile(dir)

	state := NewSyncState()
	state.Put(mustRemote(t, "iOS_10.2.1_14D27", "sha256:a"))
	require.NoError(t, f.Write(state))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sdks": {
			"iOS_10.2.1_14D27.memdb": {
				"filename": "iOS_10.2.1_14D27.memdb",
				"info": {"name": "iOS", "version_major": 10, "version_minor": 2, "version_patch": 1, "build": "14D27"},
				"size": 1024,
				"etag": "sha256:a"
			}
		},
		"revision": null
	}`, string(data))
}

func TestReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFilename), []byte(`{"sdks": {`), 0644))

	_, err := NewStateFile(dir).Read()
	require.ErrorIs(t, err, ErrCorruptState)
}

func TestReadRejectsMismatchedKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFilename), []byte(`{
		"sdks": {
			"iOS_10.3.1_14E304.memdb": {
				"filename": "iOS_10.3.1_14E304.memdb",
				"info": {"name": "iOS", "version_major": 10, "version_minor": 2, "version_patch": 1, "build": "14D27"},
				"size": 1024,
				"etag": "sha256:a"
			}
		},
		"revision": 3
	}`), 0644))

	_, err := NewStateFile(dir).Read()
	require.ErrorIs(t, err, ErrCorruptState)
}

func TestReadRejectsTrailingData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFilename), []byte(`{"sdks": {}, "revision": 1} {"sdks": {}}`), 0644))

	_, err := NewStateFile(dir).Read()
	require.ErrorIs(t, err, ErrCorruptState)
}

func TestReadAcceptsTrailingWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFilename), []byte("{\"sdks\": {}, \"revision\": 1}\n\n"), 0644))

	state, err := NewStateFile(dir).Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.Rev())
}

func TestStaleTempStateIsIgnored(t *testing.T) {
	dir := t.TempDir()
	f := NewStateFile(dir)

	state := NewSyncState()
	state.Put(mustRemote(t, "iOS_10.2.1_14D27", "sha256:a"))
	state.Bump()
	require.NoError(t, f.Write(state))

	// a crash between writing the temp file and renaming it
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sync.tempstate"), []byte(`{"sdks": {"half`), 0644))

	got, err := NewStateFile(dir).Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Rev())
	assert.Equal(t, 1, got.Len())

	// the next write simply replaces the leftover
	state.Bump()
	require.NoError(t, f.Write(state))
	got, err = NewStateFile(dir).Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Rev())
}

func TestCachedAvoidsDisk(t *testing.T) {
	dir := t.TempDir()
	f := NewStateFile(dir)

	state := NewSyncState()
	state.Put(mustRemote(t, "iOS_10.2.1_14D27", "sha256:a"))
	require.NoError(t, f.Write(state))
	require.NoError(t, os.Remove(f.Path()))

	cached, err := f.Cached()
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len())

	// Read goes to disk again.
	fresh, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Len())
}

func TestSnapshotIsNotShared(t *testing.T) {
	f := NewStateFile(t.TempDir())

	state := NewSyncState()
	state.Put(mustRemote(t, "iOS_10.2.1_14D27", "sha256:a"))
	require.NoError(t, f.Write(state))

	state.Put(mustRemote(t, "iOS_10.3.1_14E304", "sha256:b"))
	state.Bump()

	cached, err := f.Cached()
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len())
	assert.Nil(t, cached.Revision)
}
