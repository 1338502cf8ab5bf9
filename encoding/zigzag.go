package encoding

// ZigZag32 maps a signed integer to an unsigned one so that values of small
// magnitude, of either sign, map to small unsigned values:
// 0 -> 0, -1 -> 1, 1 -> 2, -2 -> 3, ...
func ZigZag32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31) //nolint:gosec
}

// UnZigZag32 reverses ZigZag32.
func UnZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1) //nolint:gosec
}

// ZigZagSlice32 writes ZigZag32(src[i]) into dst[i]. dst must be at least as
// long as src.
func ZigZagSlice32(dst []uint32, src []int32) {
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = ZigZag32(v)
	}
}

// UnZigZagSlice32 writes UnZigZag32(src[i]) into dst[i].
func UnZigZagSlice32(dst []int32, src []uint32) {
	dst = dst[:len(src)]
	for i, u := range src {
		dst[i] = UnZigZag32(u)
	}
}
