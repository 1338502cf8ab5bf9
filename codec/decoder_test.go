package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/node"
	"github.com/arloliu/rzap/section"
)

func TestDecoder_Decode_RejectsBadHeader(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		err    error
	}{
		{"empty", nil, errs.ErrInvalidHeaderSize},
		{"short", []byte{section.Magic, section.Version}, errs.ErrInvalidHeaderSize},
		{"magic", []byte{'Z', section.Version, 0, 0, 0}, errs.ErrInvalidMagic},
		{"flags1_reserved", []byte{section.Magic, section.Version, 0x10, 0, 0}, errs.ErrInvalidHeaderFlags},
		{"flags2", []byte{section.Magic, section.Version, 0, 1, 0}, errs.ErrInvalidHeaderFlags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeErr(tt.stream)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDecoder_Decode_RejectsBadKind(t *testing.T) {
	for _, b := range []byte{5, 7, 29, 32, 0x80 | 13, 0x40 | 19, 0xc0 | 19} {
		_, err := decodeErr(streamOf(b, 0, 0, 0, 0))
		require.ErrorIs(t, err, errs.ErrUnknownKind, "kind byte 0x%02x", b)
	}
}

func TestDecoder_Decode_RejectsTruncation(t *testing.T) {
	data := encode(t, vectorCases()["double_named"])
	for cut := section.HeaderSize; cut < len(data); cut++ {
		_, err := decodeErr(data[:cut])
		require.Error(t, err, "cut at %d", cut)
	}

	_, err := decodeErr(streamOf())
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestDecoder_Decode_RejectsTrailingData(t *testing.T) {
	data := append(encode(t, node.NewInteger(1)), 0)
	_, err := decodeErr(data)
	require.ErrorIs(t, err, errs.ErrTrailingData)
}

func TestDecoder_Decode_Checksum(t *testing.T) {
	v := vectorCases()["string"]
	data := encode(t, v, WithChecksum(true))
	require.Len(t, data, len(encode(t, v))+section.ChecksumSize)
	requireSameTree(t, v, decode(t, data))

	corrupt := append([]byte(nil), data...)
	corrupt[section.HeaderSize+2] ^= 0x01
	_, err := decodeErr(corrupt)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	_, err = decodeErr(data[:section.HeaderSize+3])
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestDecoder_Decode_ChecksumOverCompressedBody(t *testing.T) {
	v := node.NewDouble(make([]float64, 1000)...)
	data := encode(t, v, WithCompression(format.CompressionZstd), WithChecksum(true))
	requireSameTree(t, v, decode(t, data))

	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-section.ChecksumSize-1] ^= 0xff
	_, err := decodeErr(corrupt)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestDecoder_Decode_CorruptCompressedBody(t *testing.T) {
	header := section.NewHeader()
	header.Flag.SetCompression(format.CompressionZstd)
	data := append(header.Bytes(), 0xde, 0xad, 0xbe, 0xef)

	_, err := decodeErr(data)
	require.Error(t, err)
}

func TestDecoder_Decode_DepthLimit(t *testing.T) {
	var n node.Node = node.NewInteger(1)
	for range 50 {
		n = node.NewList(n)
	}
	data := encode(t, n)

	_, err := decodeErr(data, WithMaxDepth(20))
	require.ErrorIs(t, err, errs.ErrDepthExceeded)

	requireSameTree(t, n, decode(t, data, WithMaxDepth(60)))
}

func TestDecoder_Decode_MaxLength(t *testing.T) {
	data := encode(t, node.NewInteger(1, 2, 3, 4, 5))
	_, err := decodeErr(data, WithMaxLength(4))
	require.ErrorIs(t, err, errs.ErrLengthExceeded)

	data = encode(t, &node.Raw{Bytes: make([]byte, 10)})
	_, err = decodeErr(data, WithMaxLength(4))
	require.ErrorIs(t, err, errs.ErrLengthExceeded)
}

func TestDecoder_Decode_VersionMismatchWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	v := node.NewLogical(1, 0)
	data := encode(t, v)
	data[1] = section.Version + 1

	got := decode(t, data, WithLogger(zap.New(core)))
	requireSameTree(t, v, got)

	entries := logs.FilterMessage("stream version mismatch, decoding anyway").All()
	require.Len(t, entries, 1)
	require.EqualValues(t, section.Version+1, entries[0].ContextMap()["stream_version"])
}

func TestDecoder_Decode_DoesNotAliasInput(t *testing.T) {
	tree := node.NewList(node.NewString("abc", "de"), &node.Raw{Bytes: []byte{1, 2}}, &node.Opaque{Blob: []byte{3}})
	data := encode(t, tree)
	got := decode(t, data)

	for i := section.HeaderSize; i < len(data); i++ {
		data[i] = 0xff
	}
	requireSameTree(t, tree, got)
}

func TestDecoder_Decode_Concurrent(t *testing.T) {
	tree := vectorCases()
	enc, err := NewEncoder(WithListReferences(true))
	require.NoError(t, err)
	dec, err := NewDecoder()
	require.NoError(t, err)

	for name, v := range tree {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for range 20 {
				data, err := enc.Encode(v)
				require.NoError(t, err)
				got, err := dec.Decode(data)
				require.NoError(t, err)
				requireSameTree(t, v, got)
			}
		})
	}
}
