package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Upload(ctx, "voices", "u1/a1.wav", strings.NewReader("payload"), "audio/wav")
	require.NoError(t, err)

	rc, err := store.Download(ctx, "voices", "u1/a1.wav")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestLocalStorageDownloadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "voices", "nope.wav")
	assert.Error(t, err)
}

func TestLocalStorageDeleteIdempotent(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "voices", "u1/a1.wav", strings.NewReader("x"), "audio/wav"))
	assert.NoError(t, store.Delete(ctx, "voices", "u1/a1.wav"))
	// Second delete of the same key is a no-op.
	assert.NoError(t, store.Delete(ctx, "voices", "u1/a1.wav"))
}
