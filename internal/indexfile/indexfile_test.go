package indexfile

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/AlexWan0/watrix"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMatrix(t *testing.T, num int, dim int64) (*watrix.WaveletMatrix, []uint64) {
	t.Helper()
	vals := make([]uint64, num)
	for i := range vals {
		vals[i] = uint64(rand.Int63n(dim))
	}
	b := watrix.NewBuilder()
	for _, v := range vals {
		b.PushBack(v)
	}
	return b.Build(), vals
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			wm, vals := randomMatrix(t, 5000, 16)
			var buf bytes.Buffer
			h, err := Write(&buf, wm, c)
			require.NoError(t, err)
			assert.Equal(t, uint8(Version), h.Version)
			assert.Equal(t, uint64(buf.Len()), headerSize+h.StoredLen)

			got, rh, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, h, rh)
			require.Equal(t, wm.Num(), got.Num())
			require.Equal(t, wm.BitWidth(), got.BitWidth())
			for i, v := range vals {
				require.Equal(t, v, got.Access(uint64(i)))
			}
		})
	}
}

func TestCompressionShrinksRepetitiveInput(t *testing.T) {
	vals := make([]uint64, 20000)
	for i := range vals {
		vals[i] = uint64(i % 4)
	}
	wm := watrix.New(2, vals)
	var plain, packed bytes.Buffer
	_, err := Write(&plain, wm, CompressionNone)
	require.NoError(t, err)
	h, err := Write(&packed, wm, CompressionZstd)
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, h.Compression)
	assert.Less(t, packed.Len(), plain.Len())
}

func TestReadErrors(t *testing.T) {
	wm, _ := randomMatrix(t, 1000, 100)
	var buf bytes.Buffer
	_, err := Write(&buf, wm, CompressionNone)
	require.NoError(t, err)
	data := buf.Bytes()

	t.Run("bad magic", func(t *testing.T) {
		broken := append([]byte(nil), data...)
		broken[0] = 'X'
		_, _, err := Read(bytes.NewReader(broken))
		assert.True(t, errors.Is(err, ErrBadMagic))
	})
	t.Run("version", func(t *testing.T) {
		broken := append([]byte(nil), data...)
		broken[4] = Version + 1
		_, _, err := Read(bytes.NewReader(broken))
		assert.True(t, errors.Is(err, ErrVersion))
	})
	t.Run("checksum", func(t *testing.T) {
		broken := append([]byte(nil), data...)
		broken[len(broken)-1] ^= 0xff
		_, _, err := Read(bytes.NewReader(broken))
		assert.True(t, errors.Is(err, ErrChecksum))
	})
	t.Run("truncated", func(t *testing.T) {
		_, _, err := Read(bytes.NewReader(data[:len(data)-10]))
		assert.Error(t, err)
		_, _, err = Read(bytes.NewReader(data[:10]))
		assert.Error(t, err)
	})
}

func TestReadRejectsForgedPayloadLen(t *testing.T) {
	vals := make([]uint64, 20000)
	for i := range vals {
		vals[i] = uint64(i % 4)
	}
	wm := watrix.New(2, vals)
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			h, err := Write(&buf, wm, c)
			require.NoError(t, err)
			require.Equal(t, c, h.Compression)

			for _, forged := range []uint64{0, h.PayloadLen + 1, 1 << 40, 1 << 62, 1<<64 - 1} {
				broken := append([]byte(nil), buf.Bytes()...)
				binary.LittleEndian.PutUint64(broken[16:24], forged)
				require.NotPanics(t, func() {
					_, _, err = Read(bytes.NewReader(broken))
				})
				assert.Error(t, err, "payload length %d", forged)
			}
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Compression
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"ZSTD", CompressionZstd},
		{" lz4 ", CompressionLZ4},
	} {
		got, err := ParseCompression(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
}
