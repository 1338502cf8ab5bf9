package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rzap/errs"
)

func TestAppendUvarint(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one byte max", 127, []byte{0x7f}},
		{"two bytes min", 128, []byte{0x80, 0x01}},
		{"300", 300, []byte{0xac, 0x02}},
		{"max uint64", math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendUvarint(nil, tt.v)
			require.Equal(t, tt.want, got)
			require.Equal(t, len(tt.want), UvarintLen(tt.v))

			v, n, err := Uvarint(got)
			require.NoError(t, err)
			require.Equal(t, tt.v, v)
			require.Equal(t, len(got), n)
		})
	}
}

func TestUvarint_IgnoresTrailingBytes(t *testing.T) {
	v, n, err := Uvarint([]byte{0xac, 0x02, 0xff, 0xff})
	require.NoError(t, err)
	require.Equal(t, uint64(300), v)
	require.Equal(t, 2, n)
}

func TestUvarint_Truncated(t *testing.T) {
	for _, src := range [][]byte{nil, {}, {0x80}, {0xff, 0xff}} {
		_, _, err := Uvarint(src)
		require.ErrorIs(t, err, errs.ErrTruncated)
	}
}

func TestUvarint_Overflow(t *testing.T) {
	tenthTooBig := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}
	_, _, err := Uvarint(tenthTooBig)
	require.ErrorIs(t, err, errs.ErrVarintOverflow)

	eleven := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}
	_, _, err = Uvarint(eleven)
	require.ErrorIs(t, err, errs.ErrVarintOverflow)
}

func TestZigZag32(t *testing.T) {
	tests := []struct {
		in   int32
		want uint32
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{math.MaxInt32, math.MaxUint32 - 1},
		{math.MinInt32, math.MaxUint32},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ZigZag32(tt.in), "zigzag(%d)", tt.in)
		require.Equal(t, tt.in, UnZigZag32(tt.want))
	}
}

func TestZigZagSlice32_RoundTrip(t *testing.T) {
	src := []int32{0, -5, 7, math.MinInt32, math.MaxInt32, 42}
	enc := make([]uint32, len(src))
	ZigZagSlice32(enc, src)

	dec := make([]int32, len(src))
	UnZigZagSlice32(dec, enc)
	require.Equal(t, src, dec)

	ZigZagSlice32(nil, nil)
	UnZigZagSlice32(nil, nil)
}
