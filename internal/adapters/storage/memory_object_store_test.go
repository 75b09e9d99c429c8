package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStore()

	require.NoError(t, s.Put(ctx, "backups/a1/b1.json.zst", []byte("data"), "application/zstd"))
	require.NoError(t, s.Put(ctx, "attachments/a1/photo.jpg", []byte("jpg"), "image/jpeg"))
	assert.Equal(t, []string{"attachments/a1/photo.jpg", "backups/a1/b1.json.zst"}, s.Keys())

	b, err := s.Get(ctx, "backups/a1/b1.json.zst")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), b)

	require.NoError(t, s.Delete(ctx, "backups/a1/b1.json.zst"))
	require.NoError(t, s.Delete(ctx, "backups/a1/b1.json.zst"))

	_, err = s.Get(ctx, "backups/a1/b1.json.zst")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.Error(t, s.Put(ctx, "", nil, ""))
}
