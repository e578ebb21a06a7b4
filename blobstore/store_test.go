package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}
}

func TestBlobStore_Lifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			data := []byte("u v w d0 d1 grid payload")

			w, err := store.Create(ctx, "run/grid.dat")
			require.NoError(t, err)
			n, err := w.Write(data)
			require.NoError(t, err)
			require.Equal(t, len(data), n)
			require.NoError(t, w.Close())

			_, err = w.Write(data)
			require.ErrorIs(t, err, ErrClosed)

			blob, err := store.Open(ctx, "run/grid.dat")
			require.NoError(t, err)
			defer blob.Close()
			require.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 4)
			n, err = blob.ReadAt(ctx, buf, 9)
			require.NoError(t, err)
			require.Equal(t, 4, n)
			require.Equal(t, "d1 g", string(buf))

			require.NoError(t, store.Put(ctx, "run/randnum.dat", []byte{1, 2, 3}))
			require.NoError(t, store.Put(ctx, "other", nil))

			names, err := store.List(ctx, "run/")
			require.NoError(t, err)
			require.Equal(t, []string{"run/grid.dat", "run/randnum.dat"}, names)

			require.NoError(t, store.Delete(ctx, "run/grid.dat"))
			require.NoError(t, store.Delete(ctx, "run/grid.dat"))
			_, err = store.Open(ctx, "run/grid.dat")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBlobStore_ReadRangeBoundaries(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

			blob, err := store.Open(ctx, "boundary.bin")
			require.NoError(t, err)
			defer blob.Close()

			r, err := blob.ReadRange(ctx, 8, 5)
			require.NoError(t, err)
			content, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, "89", string(content))

			_, err = blob.ReadRange(ctx, 20, 5)
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestOpenReader(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "full.bin", []byte("abcdef")))
			require.NoError(t, store.Put(ctx, "empty.bin", nil))

			r, err := OpenReader(ctx, store, "full.bin")
			require.NoError(t, err)
			content, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, "abcdef", string(content))

			r, err = OpenReader(ctx, store, "empty.bin")
			require.NoError(t, err)
			content, err = io.ReadAll(r)
			require.NoError(t, err)
			assert.Empty(t, content)

			_, err = OpenReader(ctx, store, "missing.bin")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_NoPartialBlobs(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	w, err := store.Create(ctx, "grid.dat")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "grid.dat"))
	require.ErrorIs(t, err, os.ErrNotExist)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, w.Close())
	_, err = os.Stat(filepath.Join(dir, "grid.dat"))
	require.NoError(t, err)
}

func TestBlobStore_CanceledContext(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(context.Background(), "x", []byte("data")))
			blob, err := store.Open(context.Background(), "x")
			require.NoError(t, err)
			defer blob.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err = blob.ReadRange(ctx, 0, 4)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}
