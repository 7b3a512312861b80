package file

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localpad/localpad/internal/domain"
)

func TestStoreSetGetRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "pads/todo/records", `{"records":[]}`))

	value, err := store.Get(ctx, "pads/todo/records")
	require.NoError(t, err)
	assert.Equal(t, `{"records":[]}`, value)
}

func TestStoreSetOverwritesExistingValue(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "old"))
	require.NoError(t, store.Set(ctx, "key", "new"))

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "new", value)
}

func TestStoreGetMissingKey(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "pads/none/records")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "value"))
	require.NoError(t, store.Delete(ctx, "key"))
	require.NoError(t, store.Delete(ctx, "key"))

	_, err := store.Get(ctx, "key")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreRejectsInvalidKeys(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "   ", ".", "..", "../escape", "/etc/passwd"} {
		t.Run("key "+key, func(t *testing.T) {
			assert.Error(t, store.Set(ctx, key, "value"))
			_, err := store.Get(ctx, key)
			assert.Error(t, err)
		})
	}
}

func TestStoreValueFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.Set(context.Background(), "pads/todo/records", "data"))

	info, err := os.Stat(filepath.Join(root, "pads", "todo", "records.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Join(root, "pads", "todo"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())
}

func TestStoreLeavesNoTempFilesBehind(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.Set(context.Background(), "key", "value"))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "key.json", entries[0].Name())
}
