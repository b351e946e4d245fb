package hbc

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Kind says whether a run of the string table holds plain strings or
// identifiers.
type Kind uint8

const (
	KindString Kind = iota
	KindIdentifier
)

func (k Kind) String() string {
	if k == KindIdentifier {
		return "Identifier"
	}
	return "String"
}

// StringKind is a run-length entry of the string kind table: the top bit
// is the kind, the low 31 bits the number of consecutive strings in the run.
type StringKind uint32

const stringKindCountMask = 1<<31 - 1

func NewStringKind(kind Kind, count uint32) StringKind {
	return StringKind(uint32(kind)<<31 | count&stringKindCountMask)
}

func (k StringKind) Kind() Kind    { return Kind(k >> 31) }
func (k StringKind) Count() uint32 { return uint32(k) & stringKindCountMask }

// overflowLength marks a small entry whose real location is in the
// overflow table.
const overflowLength = 0xff

// SmallStringEntry is the packed 4-byte string table entry: bit 0 is the
// UTF-16 flag, bits 1-23 the storage offset and bits 24-31 the length.
type SmallStringEntry uint32

func NewSmallStringEntry(utf16 bool, offset, length uint32) SmallStringEntry {
	e := SmallStringEntry((offset&0x7fffff)<<1 | (length&0xff)<<24)
	if utf16 {
		e |= 1
	}
	return e
}

func (e SmallStringEntry) IsUTF16() bool  { return e&1 != 0 }
func (e SmallStringEntry) Offset() uint32 { return uint32(e) >> 1 & 0x7fffff }
func (e SmallStringEntry) Length() uint32 { return uint32(e) >> 24 }

// IsOverflowed reports whether Offset indexes the overflow table instead of
// string storage.
func (e SmallStringEntry) IsOverflowed() bool {
	return e.Length() == overflowLength
}

// OverflowStringEntry locates a string too long or too far for a small
// entry.
type OverflowStringEntry struct {
	Offset uint32
	Length uint32
}

// RegExpEntry locates compiled regexp bytecode in regexp storage.
type RegExpEntry struct {
	Offset uint32
	Length uint32
}

// CjsModuleEntry maps a CommonJS module id to its function.
type CjsModuleEntry struct {
	ID     uint32
	Offset uint32
}

// pairs decodes a table of 8-byte {u32, u32} records.
func pairs(raw []byte) [][2]uint32 {
	out := make([][2]uint32, len(raw)/8)
	for i := range out {
		out[i] = [2]uint32{
			binary.LittleEndian.Uint32(raw[i*8:]),
			binary.LittleEndian.Uint32(raw[i*8+4:]),
		}
	}
	return out
}

func uint32s(raw []byte) []uint32 {
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out
}

// StringLocation resolves string i to its storage span. Length is in code
// units: bytes for Latin-1, 16-bit units for UTF-16.
func (f *File) StringLocation(i uint32) (offset, length uint32, utf16 bool, err error) {
	if i >= uint32(len(f.SmallStrings)) {
		return 0, 0, false, fmt.Errorf("%w: string %d of %d", ErrIndexOutOfRange, i, len(f.SmallStrings))
	}
	e := f.SmallStrings[i]
	offset, length = e.Offset(), e.Length()
	if e.IsOverflowed() {
		if offset >= uint32(len(f.OverflowStrings)) {
			return 0, 0, false, fmt.Errorf("%w: overflow string %d of %d", ErrIndexOutOfRange, offset, len(f.OverflowStrings))
		}
		o := f.OverflowStrings[offset]
		offset, length = o.Offset, o.Length
	}
	return offset, length, e.IsUTF16(), nil
}

// String decodes string i from string storage.
func (f *File) String(i uint32) (string, error) {
	offset, length, isUTF16, err := f.StringLocation(i)
	if err != nil {
		return "", err
	}
	size := uint64(length)
	if isUTF16 {
		size *= 2
	}
	if uint64(offset)+size > uint64(len(f.StringStorage)) {
		return "", fmt.Errorf("%w: string %d spans %d+%d of %d storage bytes", ErrIndexOutOfRange, i, offset, size, len(f.StringStorage))
	}
	raw := f.StringStorage[offset : uint64(offset)+size]
	dec := charmap.ISO8859_1.NewDecoder()
	if isUTF16 {
		dec = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	}
	s, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("string %d: %w", i, err)
	}
	return string(s), nil
}

// StringKindAt classifies string i by walking the run-length kind table.
func (f *File) StringKindAt(i uint32) (Kind, error) {
	var start uint64
	for _, k := range f.StringKinds {
		end := start + uint64(k.Count())
		if uint64(i) < end {
			return k.Kind(), nil
		}
		start = end
	}
	return KindString, fmt.Errorf("%w: string %d not covered by %d kind runs", ErrIndexOutOfRange, i, len(f.StringKinds))
}
