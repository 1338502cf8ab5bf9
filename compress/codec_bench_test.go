package compress

import (
	"bytes"
	"testing"
)

func BenchmarkCodecs(b *testing.B) {
	data := bytes.Repeat([]byte{1, 0, 0, 0, 2, 0, 0, 0, 0x40, 0x09, 0x21, 0xfb}, 4096)

	for _, ct := range allCompressions {
		codec, _ := GetCodec(ct)
		compressed, _ := codec.Compress(data)

		b.Run("Compress/"+ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_, _ = codec.Compress(data)
			}
		})
		b.Run("Decompress/"+ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_, _ = codec.Decompress(compressed)
			}
		})
	}
}
