package compression

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("_OBJC_CLASS_$_NSObject\x00", 4096))

	for _, level := range []int{1, 2, 3} {
		var compressed bytes.Buffer
		n, err := Compress(&compressed, bytes.NewReader(payload), level)
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), n)
		assert.Less(t, compressed.Len(), len(payload))

		var out bytes.Buffer
		n, err = Decompress(&out, &compressed)
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), n)
		assert.Equal(t, payload, out.Bytes())
	}
}

func TestDecompressGarbage(t *testing.T) {
	var out bytes.Buffer
	_, err := Decompress(&out, strings.NewReader("definitely not zstd"))
	require.Error(t, err)
}
