// Package indexfile persists a wavelet matrix as a single checksummed,
// optionally compressed file.
//
// Layout (little endian):
//
//	[0:4)   magic "WTRX"
//	[4]     format version
//	[5]     compression
//	[6:8)   reserved
//	[8:16)  xxh3 of the uncompressed payload
//	[16:24) uncompressed payload length
//	[24:32) stored payload length
//	[32:)   stored payload (msgpack matrix, compressed as declared)
package indexfile

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/AlexWan0/watrix"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// Version is the format version written by Write.
const Version = 1

const headerSize = 32

// An lz4 block never inflates by more than this factor.
const lz4MaxRatio = 255

var magic = [4]byte{'W', 'T', 'R', 'X'}

var (
	// ErrBadMagic is returned when the input is not an index file.
	ErrBadMagic = errors.New("indexfile: bad magic")
	// ErrVersion is returned for a format version this package cannot read.
	ErrVersion = errors.New("indexfile: unsupported version")
	// ErrChecksum is returned when the payload does not match its checksum.
	ErrChecksum = errors.New("indexfile: checksum mismatch")
)

// Compression identifies the payload compression.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionZstd compresses the payload with zstd.
	CompressionZstd Compression = 1
	// CompressionLZ4 compresses the payload with an lz4 block.
	CompressionLZ4 Compression = 2
)

// String returns the name accepted by ParseCompression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseCompression parses "none", "zstd" or "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionNone, errors.Errorf("unknown compression %q", s)
	}
}

// Header describes a stored index.
type Header struct {
	Version     uint8
	Compression Compression
	Checksum    uint64
	PayloadLen  uint64
	StoredLen   uint64
}

func (h Header) encode() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic[:])
	buf[4] = h.Version
	buf[5] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[8:16], h.Checksum)
	binary.LittleEndian.PutUint64(buf[16:24], h.PayloadLen)
	binary.LittleEndian.PutUint64(buf[24:32], h.StoredLen)
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if [4]byte(buf[0:4]) != magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Version:     buf[4],
		Compression: Compression(buf[5]),
		Checksum:    binary.LittleEndian.Uint64(buf[8:16]),
		PayloadLen:  binary.LittleEndian.Uint64(buf[16:24]),
		StoredLen:   binary.LittleEndian.Uint64(buf[24:32]),
	}
	if h.Version != Version {
		return Header{}, errors.Wrapf(ErrVersion, "version %d", h.Version)
	}
	return h, nil
}

// Write stores wm to w. When lz4 cannot shrink the payload it is
// stored uncompressed and the header says so.
func Write(w io.Writer, wm *watrix.WaveletMatrix, c Compression) (Header, error) {
	payload, err := wm.MarshalBinary()
	if err != nil {
		return Header{}, errors.Wrap(err, "marshaling matrix")
	}
	stored, c, err := compress(payload, c)
	if err != nil {
		return Header{}, errors.Wrapf(err, "compressing with %s", c)
	}
	h := Header{
		Version:     Version,
		Compression: c,
		Checksum:    xxh3.Hash(payload),
		PayloadLen:  uint64(len(payload)),
		StoredLen:   uint64(len(stored)),
	}
	if _, err := w.Write(h.encode()); err != nil {
		return Header{}, errors.Wrap(err, "writing header")
	}
	if _, err := w.Write(stored); err != nil {
		return Header{}, errors.Wrap(err, "writing payload")
	}
	return h, nil
}

// Read loads a matrix written by Write.
func Read(r io.Reader) (*watrix.WaveletMatrix, Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, Header{}, errors.Wrap(err, "reading header")
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, Header{}, err
	}
	stored, err := io.ReadAll(io.LimitReader(r, int64(h.StoredLen)))
	if err != nil {
		return nil, h, errors.Wrap(err, "reading payload")
	}
	if uint64(len(stored)) != h.StoredLen {
		return nil, h, errors.Wrapf(io.ErrUnexpectedEOF, "payload has %d of %d bytes", len(stored), h.StoredLen)
	}
	payload, err := decompress(stored, h)
	if err != nil {
		return nil, h, errors.Wrapf(err, "decompressing %s payload", h.Compression)
	}
	if xxh3.Hash(payload) != h.Checksum {
		return nil, h, ErrChecksum
	}
	wm := new(watrix.WaveletMatrix)
	if err := wm.UnmarshalBinary(payload); err != nil {
		return nil, h, errors.Wrap(err, "unmarshaling matrix")
	}
	return wm, h, nil
}

func compress(data []byte, c Compression) ([]byte, Compression, error) {
	switch c {
	case CompressionNone:
		return data, c, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, c, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), c, nil
	case CompressionLZ4:
		out := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, out, nil)
		if err != nil {
			return nil, c, err
		}
		if n == 0 {
			return data, CompressionNone, nil
		}
		return out[:n], c, nil
	default:
		return nil, c, errors.Errorf("unknown compression %d", c)
	}
}

func decompress(stored []byte, h Header) ([]byte, error) {
	switch h.Compression {
	case CompressionNone:
		if uint64(len(stored)) != h.PayloadLen {
			return nil, errors.New("payload size mismatch")
		}
		return stored, nil
	case CompressionZstd:
		if h.PayloadLen == 0 || h.PayloadLen >= 1<<63 {
			return nil, errors.Errorf("payload length %d out of range", h.PayloadLen)
		}
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(h.PayloadLen))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(stored, nil)
		if err != nil {
			return nil, err
		}
		if uint64(len(out)) != h.PayloadLen {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	case CompressionLZ4:
		if h.PayloadLen > uint64(len(stored))*lz4MaxRatio {
			return nil, errors.Errorf("payload length %d exceeds lz4 bound for %d stored bytes", h.PayloadLen, len(stored))
		}
		out := make([]byte, h.PayloadLen)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, err
		}
		if uint64(n) != h.PayloadLen {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	default:
		return nil, errors.Errorf("unknown compression %d", h.Compression)
	}
}
