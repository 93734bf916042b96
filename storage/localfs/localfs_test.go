package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/vault/cidutil"
	"xdao.co/vault/storage"
	"xdao.co/vault/storage/casregistry"
	"xdao.co/vault/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		t.Helper()
		cas, err := New(t.TempDir())
		require.NoError(t, err)
		return cas
	})
}

func TestLocalFS_RequiresRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestLocalFS_LayoutAndPermissions(t *testing.T) {
	dir := t.TempDir()
	cas, err := New(dir)
	require.NoError(t, err)

	id, err := cas.Put(context.Background(), []byte("secret export"))
	require.NoError(t, err)

	s := id.String()
	info, err := os.Stat(filepath.Join(dir, s[:2], s))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o400), info.Mode().Perm())
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	ctx := context.Background()
	cas, err := New(t.TempDir())
	require.NoError(t, err)

	orig := []byte("original")
	id, err := cas.Put(ctx, orig)
	require.NoError(t, err)

	// Corrupt the stored object out-of-band.
	path := cas.pathFor(id)
	require.NoError(t, os.Chmod(path, 0o644))
	require.NoError(t, os.WriteFile(path, []byte("corrupted"), 0o644))

	_, err = cas.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrCIDMismatch)

	// Put must not repair the corrupted object.
	_, err = cas.Put(ctx, orig)
	assert.ErrorIs(t, err, storage.ErrImmutable)

	want, err := cidutil.Of(orig)
	require.NoError(t, err)
	assert.True(t, id.Equals(want))
}

func TestLocalFS_CancelledContext(t *testing.T) {
	cas, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = cas.Put(ctx, []byte("doc"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalFS_OpenWithConfig(t *testing.T) {
	dir := t.TempDir()
	cas, _, err := casregistry.OpenWithConfig("localfs", casregistry.UsageCLI, map[string]string{DirKey: dir})
	require.NoError(t, err)

	id, err := cas.Put(context.Background(), []byte("doc"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, id.String()[:2], id.String()))

	_, _, err = casregistry.OpenWithConfig("localfs", casregistry.UsageCLI, nil)
	assert.Error(t, err)
}
