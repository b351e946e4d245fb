package hbc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FunctionHeaderSize is the encoded size of a small function header.
const FunctionHeaderSize = 16

// largeFunctionHeaderSize is seven u32 fields followed by three bytes.
const largeFunctionHeaderSize = 7*4 + 3

// ErrFieldOverflow is returned when a value does not fit its packed field.
var ErrFieldOverflow = errors.New("value does not fit header field")

// Prohibit says which kinds of invocation a function rejects.
type Prohibit uint8

const (
	ProhibitCall Prohibit = iota
	ProhibitConstruct
	ProhibitNone
	// ProhibitInvalid is never emitted by a conforming compiler.
	ProhibitInvalid
)

func (p Prohibit) Valid() bool {
	return p < ProhibitInvalid
}

func (p Prohibit) String() string {
	switch p {
	case ProhibitCall:
		return "ProhibitCall"
	case ProhibitConstruct:
		return "ProhibitConstruct"
	case ProhibitNone:
		return "ProhibitNone"
	}
	return "ProhibitInvalid"
}

// FunctionFlags is the flag byte of a function header.
type FunctionFlags uint8

const (
	flagStrictMode          FunctionFlags = 1 << 2
	flagHasExceptionHandler FunctionFlags = 1 << 3
	flagHasDebugInfo        FunctionFlags = 1 << 4
	flagOverflowed          FunctionFlags = 1 << 5
)

// NewFunctionFlags packs the flag byte.
func NewFunctionFlags(prohibit Prohibit, strict, exceptionHandler, debugInfo, overflowed bool) FunctionFlags {
	f := FunctionFlags(prohibit & 0x3)
	if strict {
		f |= flagStrictMode
	}
	if exceptionHandler {
		f |= flagHasExceptionHandler
	}
	if debugInfo {
		f |= flagHasDebugInfo
	}
	if overflowed {
		f |= flagOverflowed
	}
	return f
}

func (f FunctionFlags) ProhibitInvoke() Prohibit  { return Prohibit(f & 0x3) }
func (f FunctionFlags) StrictMode() bool          { return f&flagStrictMode != 0 }
func (f FunctionFlags) HasExceptionHandler() bool { return f&flagHasExceptionHandler != 0 }
func (f FunctionFlags) HasDebugInfo() bool        { return f&flagHasDebugInfo != 0 }
func (f FunctionFlags) Overflowed() bool          { return f&flagOverflowed != 0 }

// headerField names one bit range of the packed function header.
type headerField int

const (
	fieldOffset headerField = iota
	fieldParamCount
	fieldBytecodeSize
	fieldFunctionName
	fieldInfoOffset
	fieldFrameSize
	fieldEnvironmentSize
	fieldHighestReadCacheIndex
	fieldHighestWriteCacheIndex
	fieldFlags
	numHeaderFields
)

type bitRange struct {
	start, width uint
}

func (r bitRange) mask() uint64 {
	return 1<<r.width - 1
}

// headerFields is the layout of the 128-bit header. Accessors and
// NewFunctionHeader both read it; no field crosses a 64-bit word.
var headerFields = [numHeaderFields]bitRange{
	fieldOffset:                 {0, 25},
	fieldParamCount:             {25, 7},
	fieldBytecodeSize:           {32, 15},
	fieldFunctionName:           {47, 17},
	fieldInfoOffset:             {64, 25},
	fieldFrameSize:              {89, 7},
	fieldEnvironmentSize:        {96, 8},
	fieldHighestReadCacheIndex:  {104, 8},
	fieldHighestWriteCacheIndex: {112, 8},
	fieldFlags:                  {120, 8},
}

var headerFieldNames = [numHeaderFields]string{
	"offset", "param_count", "bytecode_size", "function_name", "info_offset",
	"frame_size", "environment_size", "highest_read_cache_index",
	"highest_write_cache_index", "flags",
}

// FunctionHeader is the packed 16-byte small function header.
type FunctionHeader struct {
	words [2]uint64
}

func parseFunctionHeader(b []byte) FunctionHeader {
	return FunctionHeader{words: [2]uint64{
		binary.LittleEndian.Uint64(b[0:8]),
		binary.LittleEndian.Uint64(b[8:16]),
	}}
}

func (h FunctionHeader) get(f headerField) uint32 {
	r := headerFields[f]
	return uint32(h.words[r.start/64] >> (r.start % 64) & r.mask())
}

func (h *FunctionHeader) set(f headerField, v uint32) error {
	r := headerFields[f]
	if uint64(v) > r.mask() {
		return fmt.Errorf("%w: %s = %d exceeds %d bits", ErrFieldOverflow, headerFieldNames[f], v, r.width)
	}
	w := &h.words[r.start/64]
	shift := r.start % 64
	*w = *w&^(r.mask()<<shift) | uint64(v)<<shift
	return nil
}

func (h FunctionHeader) Offset() uint32                { return h.get(fieldOffset) }
func (h FunctionHeader) ParamCount() uint32            { return h.get(fieldParamCount) }
func (h FunctionHeader) BytecodeSizeInBytes() uint32   { return h.get(fieldBytecodeSize) }
func (h FunctionHeader) FunctionName() uint32          { return h.get(fieldFunctionName) }
func (h FunctionHeader) InfoOffset() uint32            { return h.get(fieldInfoOffset) }
func (h FunctionHeader) FrameSize() uint32             { return h.get(fieldFrameSize) }
func (h FunctionHeader) EnvironmentSize() uint32       { return h.get(fieldEnvironmentSize) }
func (h FunctionHeader) HighestReadCacheIndex() uint8  { return uint8(h.get(fieldHighestReadCacheIndex)) }
func (h FunctionHeader) HighestWriteCacheIndex() uint8 { return uint8(h.get(fieldHighestWriteCacheIndex)) }
func (h FunctionHeader) Flags() FunctionFlags          { return FunctionFlags(h.get(fieldFlags)) }

// LargeHeaderOffset is where the full header of an overflowed function lives.
func (h FunctionHeader) LargeHeaderOffset() uint32 {
	return h.InfoOffset()<<16 | h.Offset()
}

// Info unpacks the small header. For overflowed functions the values are
// placeholders; use File.FunctionInfo to resolve them.
func (h FunctionHeader) Info() FunctionInfo {
	return FunctionInfo{
		Offset:                 h.Offset(),
		ParamCount:             h.ParamCount(),
		BytecodeSize:           h.BytecodeSizeInBytes(),
		FunctionName:           h.FunctionName(),
		InfoOffset:             h.InfoOffset(),
		FrameSize:              h.FrameSize(),
		EnvironmentSize:        h.EnvironmentSize(),
		HighestReadCacheIndex:  h.HighestReadCacheIndex(),
		HighestWriteCacheIndex: h.HighestWriteCacheIndex(),
		Flags:                  h.Flags(),
	}
}

// Encode returns the 16-byte little-endian form of the header.
func (h FunctionHeader) Encode() []byte {
	b := make([]byte, FunctionHeaderSize)
	binary.LittleEndian.PutUint64(b[0:8], h.words[0])
	binary.LittleEndian.PutUint64(b[8:16], h.words[1])
	return b
}

// FunctionInfo is the unpacked form of a function header.
type FunctionInfo struct {
	Offset                 uint32
	ParamCount             uint32
	BytecodeSize           uint32
	FunctionName           uint32
	InfoOffset             uint32
	FrameSize              uint32
	EnvironmentSize        uint32
	HighestReadCacheIndex  uint8
	HighestWriteCacheIndex uint8
	Flags                  FunctionFlags
}

// NewFunctionHeader packs info into a small header, failing if any value is
// wider than its field.
func NewFunctionHeader(info FunctionInfo) (FunctionHeader, error) {
	var h FunctionHeader
	values := [numHeaderFields]uint32{
		fieldOffset:                 info.Offset,
		fieldParamCount:             info.ParamCount,
		fieldBytecodeSize:           info.BytecodeSize,
		fieldFunctionName:           info.FunctionName,
		fieldInfoOffset:             info.InfoOffset,
		fieldFrameSize:              info.FrameSize,
		fieldEnvironmentSize:        info.EnvironmentSize,
		fieldHighestReadCacheIndex:  uint32(info.HighestReadCacheIndex),
		fieldHighestWriteCacheIndex: uint32(info.HighestWriteCacheIndex),
		fieldFlags:                  uint32(info.Flags),
	}
	for f, v := range values {
		if err := h.set(headerField(f), v); err != nil {
			return FunctionHeader{}, err
		}
	}
	return h, nil
}

// EncodeLarge returns the 31-byte overflow form of info.
func (info FunctionInfo) EncodeLarge() []byte {
	b := make([]byte, largeFunctionHeaderSize)
	for i, v := range []uint32{
		info.Offset, info.ParamCount, info.BytecodeSize, info.FunctionName,
		info.InfoOffset, info.FrameSize, info.EnvironmentSize,
	} {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	b[28] = info.HighestReadCacheIndex
	b[29] = info.HighestWriteCacheIndex
	b[30] = uint8(info.Flags)
	return b
}

func readLargeFunctionInfo(r *reader) (FunctionInfo, error) {
	var words [7]uint32
	for i := range words {
		v, err := r.u32()
		if err != nil {
			return FunctionInfo{}, err
		}
		words[i] = v
	}
	tail, err := r.bytes(3)
	if err != nil {
		return FunctionInfo{}, err
	}
	return FunctionInfo{
		Offset:                 words[0],
		ParamCount:             words[1],
		BytecodeSize:           words[2],
		FunctionName:           words[3],
		InfoOffset:             words[4],
		FrameSize:              words[5],
		EnvironmentSize:        words[6],
		HighestReadCacheIndex:  tail[0],
		HighestWriteCacheIndex: tail[1],
		Flags:                  FunctionFlags(tail[2]),
	}, nil
}

// ExceptionHandler is one try range and the address of its handler, all
// relative to the start of the function's bytecode.
type ExceptionHandler struct {
	Start  uint32
	End    uint32
	Target uint32
}

func readExceptionHandlers(r *reader) ([]ExceptionHandler, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	raw, err := r.table(count, 12)
	if err != nil {
		return nil, err
	}
	handlers := make([]ExceptionHandler, count)
	for i := range handlers {
		e := raw[i*12:]
		handlers[i] = ExceptionHandler{
			Start:  binary.LittleEndian.Uint32(e[0:]),
			End:    binary.LittleEndian.Uint32(e[4:]),
			Target: binary.LittleEndian.Uint32(e[8:]),
		}
	}
	return handlers, nil
}
