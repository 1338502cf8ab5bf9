package codec

import (
	"fmt"

	"github.com/arloliu/rzap/encoding"
	"github.com/arloliu/rzap/endian"
	"github.com/arloliu/rzap/errs"
)

// reader is a bounds-checked cursor over a stream body. Every read fails
// with errs.ErrTruncated instead of running past the end.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, fmt.Errorf("reading %d bytes at offset %d, %d left: %w", n, r.off, r.remaining(), errs.ErrTruncated)
	}
	b := r.data[r.off : r.off+n : r.off+n]
	r.off += n

	return b, nil
}

func (r *reader) readByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, fmt.Errorf("reading byte at offset %d: %w", r.off, errs.ErrTruncated)
	}
	b := r.data[r.off]
	r.off++

	return b, nil
}

func (r *reader) uvarint() (uint64, error) {
	v, n, err := encoding.Uvarint(r.data[r.off:])
	if err != nil {
		return 0, fmt.Errorf("varint at offset %d: %w", r.off, err)
	}
	r.off += n

	return v, nil
}

// count reads a varint that must not exceed limit.
func (r *reader) count(limit int) (int, error) {
	at := r.off
	v, err := r.uvarint()
	if err != nil {
		return 0, err
	}
	if v > uint64(limit) { //nolint:gosec
		return 0, fmt.Errorf("count %d at offset %d exceeds %d: %w", v, at, limit, errs.ErrLengthExceeded)
	}

	return int(v), nil //nolint:gosec
}

// buf reads a length-prefixed buffer. The result aliases the stream.
func (r *reader) buf() ([]byte, error) {
	at := r.off
	v, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if v > uint64(r.remaining()) { //nolint:gosec
		return nil, fmt.Errorf("buffer of %d bytes at offset %d, %d left: %w", v, at, r.remaining(), errs.ErrTruncated)
	}

	return r.next(int(v)) //nolint:gosec
}

func (r *reader) int32() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}

	return int32(endian.Wire().Uint32(b)), nil //nolint:gosec
}
