package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompression_RoundTrip(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	payload := bytes.Repeat([]byte(`{"collection":"clients","id":"c1"}`), 200)

	packed, err := c.Compress(payload)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(payload))

	unpacked, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, payload, unpacked)
}

func TestZstdCompression_RejectsGarbage(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	_, err = c.Decompress([]byte("not zstd"))
	assert.Error(t, err)
}
