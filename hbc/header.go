// Package hbc reads the Hermes bytecode container: the fixed file header
// followed by the function, string, literal-buffer, regexp and CommonJS
// module tables. Decoding never copies blob contents; the returned File
// borrows subslices of the input buffer.
package hbc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic identifies a Hermes bytecode file. It is stored little-endian.
const Magic uint64 = 0x1F1903C103BC1FC6

// HeaderSize is the encoded size of FileHeader.
const HeaderSize = 128

// Options is the option bit set stored in the file header.
type Options uint8

const (
	optStaticBuiltins Options = 1 << iota
	optCjsModulesStaticallyResolved
)

func (o Options) StaticBuiltins() bool {
	return o&optStaticBuiltins != 0
}

func (o Options) CjsModulesStaticallyResolved() bool {
	return o&optCjsModulesStaticallyResolved != 0
}

// NewOptions packs the option bits.
func NewOptions(staticBuiltins, cjsModulesStaticallyResolved bool) Options {
	var o Options
	if staticBuiltins {
		o |= optStaticBuiltins
	}
	if cjsModulesStaticallyResolved {
		o |= optCjsModulesStaticallyResolved
	}
	return o
}

// FileHeader is the fixed 128-byte record at the start of every file. The
// field order matches the encoding.
type FileHeader struct {
	Magic               uint64
	Version             uint32
	SourceHash          [20]uint8
	FileLength          uint32
	GlobalCodeIndex     uint32
	FunctionCount       uint32
	StringKindCount     uint32
	IdentifierCount     uint32
	StringCount         uint32
	OverflowStringCount uint32
	StringStorageSize   uint32
	RegExpCount         uint32
	RegExpStorageSize   uint32
	ArrayBufferSize     uint32
	ObjKeyBufferSize    uint32
	ObjValueBufferSize  uint32
	CjsModuleOffset     uint32
	CjsModuleCount      uint32
	DebugInfoOffset     uint32
	Options             Options
	Padding             [31]uint8
}

func readFileHeader(b []byte) (FileHeader, error) {
	var h FileHeader
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &h); err != nil {
		return FileHeader{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return h, nil
}

// Encode serializes the header into its 128-byte form.
func (h *FileHeader) Encode() []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	// Writes into a bytes.Buffer cannot fail for a fixed-size struct.
	_ = binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}
