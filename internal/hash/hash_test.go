package hash

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFNV1a(t *testing.T) {
	tests := []struct {
		name string
		data string
		want uint64
	}{
		{"empty", "", 0xcbf29ce484222325},
		{"single byte", "a", 0xaf63dc4c8601ec8c},
		{"word", "foobar", 0x85944171f73967e8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FNV1a([]byte(tt.data)))
		})
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data string
		want uint64
	}{
		{"empty", "", 0xef46db3751d8e999},
		{"short", "test", 0x4fdcca5ddb678139},
		{"long", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Checksum([]byte(tt.data)))
		})
	}
}

func BenchmarkFNV1a(b *testing.B) {
	key := make([]byte, 8)
	r := rand.New(rand.NewPCG(1, 1))
	for i := range key {
		key[i] = byte(r.Uint32())
	}

	for b.Loop() {
		FNV1a(key)
	}
}
