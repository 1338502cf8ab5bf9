package codec

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/node"
)

// naReal is the host's NA double, a NaN with a payload.
var naReal = math.Float64frombits(0x7ff00000000007a2)

func requireSameBits(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, math.Float64bits(want[i]), math.Float64bits(got[i]), "element %d", i)
	}
}

func TestEncoder_Double_NegativeZeroIsPatched(t *testing.T) {
	negZero := math.Copysign(0, -1)
	data := encode(t, node.NewDouble(negZero))
	b := body(data)

	require.Equal(t, byte(format.KindDouble), b[0])
	require.Equal(t, byte(format.DoubleALP), b[1])
	require.Equal(t, byte(1), b[2]) // n
	require.Equal(t, byte(1), b[3]) // patches

	got := decode(t, data).(*node.Double)
	require.Len(t, got.Values, 1)
	require.True(t, math.Signbit(got.Values[0]))
	require.Zero(t, got.Values[0])
}

func TestEncoder_Double_ALPWithoutPatches(t *testing.T) {
	v := node.NewDouble(12.5, 3.25, -7.75, 100, 0.5)
	b := body(encode(t, v))
	require.Equal(t, byte(format.DoubleALP), b[1])
	require.Equal(t, byte(0), b[3])

	requireSameTree(t, v, decode(t, encode(t, v)))
}

func TestEncoder_Double_SpecialValues(t *testing.T) {
	values := []float64{
		1.5, naReal, math.NaN(), math.Inf(1), math.Inf(-1), math.Copysign(0, -1),
		0, math.MaxFloat64, math.SmallestNonzeroFloat64, 2.75,
	}
	for _, enc := range []format.DoubleEncoding{format.DoubleRaw, format.DoubleShuffle, format.DoubleDeltaShuffle, format.DoubleALP} {
		t.Run(enc.String(), func(t *testing.T) {
			got := roundTrip(t, node.NewDouble(values...), WithDoubleEncoding(enc)).(*node.Double)
			requireSameBits(t, values, got.Values)
		})
	}
}

func TestEncoder_Double_ALPRejectedUsesFallback(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	values := make([]float64, 512)
	for i := range values {
		values[i] = r.Float64()
	}
	v := node.NewDouble(values...)

	tests := []struct {
		name     string
		opts     []Option
		expected format.DoubleEncoding
	}{
		{"default", nil, format.DoubleDeltaShuffle},
		{"shuffle", []Option{WithDoubleFallback(format.DoubleShuffle)}, format.DoubleShuffle},
		{"raw", []Option{WithDoubleFallback(format.DoubleRaw)}, format.DoubleRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(t, v, tt.opts...)
			require.Equal(t, byte(tt.expected), body(data)[1])

			got := decode(t, data).(*node.Double)
			requireSameBits(t, values, got.Values)
		})
	}
}

func TestEncoder_Double_Threshold(t *testing.T) {
	b := body(encode(t, node.NewDouble(1, 2), WithDoubleThreshold(3)))
	require.Equal(t, byte(format.DoubleRaw), b[1])
}

func TestEncoder_Complex(t *testing.T) {
	v := &node.Complex{Values: []complex128{
		complex(1.25, -2), complex(math.Inf(1), 0), complex(0, math.Copysign(0, -1)), complex(naReal, naReal),
	}}
	for _, enc := range []format.DoubleEncoding{format.DoubleRaw, format.DoubleShuffle, format.DoubleDeltaShuffle, format.DoubleALP} {
		t.Run(enc.String(), func(t *testing.T) {
			data := encode(t, v, WithDoubleEncoding(enc))
			b := body(data)
			require.Equal(t, byte(format.KindComplex), b[0])
			require.Equal(t, byte(8), b[2]) // doubles, not elements

			got := decode(t, data).(*node.Complex)
			requireSameBits(t, complexAsFloats(v.Values), complexAsFloats(got.Values))
		})
	}
}

func TestDecoder_Complex_RejectsOddLength(t *testing.T) {
	_, err := decodeErr(streamOf(15, 0, 1, 8, 0, 0, 0, 0, 0, 0, 0xf0, 0x3f, 0, 0))
	require.ErrorIs(t, err, errs.ErrInvalidLength)
}

func TestDecoder_Double_RejectsCorruptALP(t *testing.T) {
	v := node.NewDouble(math.Copysign(0, -1), 1.5)
	data := encode(t, v)
	b := body(data)
	require.Equal(t, byte(format.DoubleALP), b[1])

	tooMany := append([]byte(nil), data...)
	body(tooMany)[3] = 3 // more patches than values
	_, err := decodeErr(tooMany)
	require.ErrorIs(t, err, errs.ErrLengthExceeded)

	// Patch index 0 becomes 9 by corrupting the first index byte.
	badIndex := append([]byte(nil), data...)
	body(badIndex)[5] = 9
	_, err = decodeErr(badIndex)
	require.ErrorIs(t, err, errs.ErrInvalidPatchIndex)
}

func TestDecoder_Double_RejectsLengthBeyondBody(t *testing.T) {
	_, err := decodeErr(streamOf(14, 0, 50, 8, 0, 0, 0, 0, 0, 0, 0, 0))
	require.ErrorIs(t, err, errs.ErrTruncated)

	_, err = decodeErr(streamOf(14, 7, 0))
	require.ErrorIs(t, err, errs.ErrUnknownEncoding)
}
