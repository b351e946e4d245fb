package hbc

import (
	"encoding/binary"
	"fmt"
)

// alignment is the boundary every table after the header starts on.
const alignment = 4

// reader is a forward-only cursor over the input buffer. Offsets are always
// relative to the start of the buffer.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

// align moves the cursor to the next multiple of 4. Padding that runs past
// the end of the buffer is a truncation.
func (r *reader) align() error {
	next := (r.pos + alignment - 1) &^ (alignment - 1)
	if next > len(r.data) {
		return fmt.Errorf("%w: alignment padding at %d", ErrTruncated, r.pos)
	}
	r.pos = next
	return nil
}

// bytes returns a borrowed view of the next n bytes.
func (r *reader) bytes(n uint64) ([]byte, error) {
	if n > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncated, n, r.pos, r.remaining())
	}
	b := r.data[r.pos : r.pos+int(n) : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// table reads count fixed-size records and returns the raw bytes.
func (r *reader) table(count uint32, size int) ([]byte, error) {
	return r.bytes(uint64(count) * uint64(size))
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// at returns a reader positioned at off, for random access into the buffer.
func (r *reader) at(off uint32) (*reader, error) {
	if uint64(off) > uint64(len(r.data)) {
		return nil, fmt.Errorf("%w: offset %d past end of %d byte buffer", ErrTruncated, off, len(r.data))
	}
	return &reader{data: r.data, pos: int(off)}, nil
}
