package hbc

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog"
)

// Stage labels used in DecodeError.
const (
	StageMagic               = "Magic Value"
	StageFileHeader          = "File Header"
	StageFunctionHeaders     = "Function Headers"
	StageStringKinds         = "String Kinds"
	StageIdentifierHashes    = "Identifier Hashes"
	StageSmallStringTable    = "Small String Table"
	StageOverflowStringTable = "Overflow String Table"
	StageStringStorage       = "String Storage"
	StageArrayBuffer         = "Array Buffer"
	StageObjectKeyBuffer     = "Object Key Buffer"
	StageObjectValueBuffer   = "Object Value Buffer"
	StageRegExpTable         = "RegExp Table"
	StageRegExpStorage       = "RegExp Storage"
	StageCjsModuleTable      = "Cjs Module Table"
)

// DecodeError reports which part of the container failed to decode.
type DecodeError struct {
	Stage  string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hbc: %s at offset %d: %v", e.Stage, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder decodes bytecode containers.
type Decoder struct {
	logger zerolog.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLogger makes the decoder log each table at debug level.
func WithLogger(l zerolog.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = l
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode decodes data with a default Decoder.
func Decode(data []byte) (*File, int, error) {
	return NewDecoder().Decode(data)
}

// Decode reads the header and every table from data. It returns the file
// and the offset just past the last table. No File is returned on error.
func (d *Decoder) Decode(data []byte) (*File, int, error) {
	r := &reader{data: data}

	magic, err := r.bytes(8)
	if err != nil {
		return nil, 0, &DecodeError{Stage: StageMagic, Offset: 0, Err: err}
	}
	if got := binary.LittleEndian.Uint64(magic); got != Magic {
		return nil, 0, &DecodeError{Stage: StageMagic, Offset: 0, Err: fmt.Errorf("%w: 0x%016x", ErrBadMagic, got)}
	}

	r.pos = 0
	raw, err := r.bytes(HeaderSize)
	if err != nil {
		return nil, 0, &DecodeError{Stage: StageFileHeader, Offset: 0, Err: err}
	}
	header, err := readFileHeader(raw)
	if err != nil {
		return nil, 0, &DecodeError{Stage: StageFileHeader, Offset: 0, Err: err}
	}
	d.logger.Debug().
		Uint32("version", header.Version).
		Uint32("functions", header.FunctionCount).
		Uint32("strings", header.StringCount).
		Msg("read file header")

	f := &File{Header: header, data: data}

	// Each table is aligned and sized from the header alone.
	tables := []struct {
		stage string
		count uint32
		size  int
		store func([]byte)
	}{
		{StageFunctionHeaders, header.FunctionCount, FunctionHeaderSize, func(b []byte) {
			f.FunctionHeaders = make([]FunctionHeader, len(b)/FunctionHeaderSize)
			for i := range f.FunctionHeaders {
				f.FunctionHeaders[i] = parseFunctionHeader(b[i*FunctionHeaderSize:])
			}
		}},
		{StageStringKinds, header.StringKindCount, 4, func(b []byte) {
			f.StringKinds = make([]StringKind, len(b)/4)
			for i, w := range uint32s(b) {
				f.StringKinds[i] = StringKind(w)
			}
		}},
		{StageIdentifierHashes, header.IdentifierCount, 4, func(b []byte) {
			f.IdentifierHashes = uint32s(b)
		}},
		{StageSmallStringTable, header.StringCount, 4, func(b []byte) {
			f.SmallStrings = make([]SmallStringEntry, len(b)/4)
			for i, w := range uint32s(b) {
				f.SmallStrings[i] = SmallStringEntry(w)
			}
		}},
		{StageOverflowStringTable, header.OverflowStringCount, 8, func(b []byte) {
			f.OverflowStrings = make([]OverflowStringEntry, len(b)/8)
			for i, p := range pairs(b) {
				f.OverflowStrings[i] = OverflowStringEntry{Offset: p[0], Length: p[1]}
			}
		}},
		{StageStringStorage, header.StringStorageSize, 1, func(b []byte) { f.StringStorage = b }},
		{StageArrayBuffer, header.ArrayBufferSize, 1, func(b []byte) { f.ArrayBuffer = b }},
		{StageObjectKeyBuffer, header.ObjKeyBufferSize, 1, func(b []byte) { f.ObjKeyBuffer = b }},
		{StageObjectValueBuffer, header.ObjValueBufferSize, 1, func(b []byte) { f.ObjValueBuffer = b }},
		{StageRegExpTable, header.RegExpCount, 8, func(b []byte) {
			f.RegExps = make([]RegExpEntry, len(b)/8)
			for i, p := range pairs(b) {
				f.RegExps[i] = RegExpEntry{Offset: p[0], Length: p[1]}
			}
		}},
		{StageRegExpStorage, header.RegExpStorageSize, 1, func(b []byte) { f.RegExpStorage = b }},
		{StageCjsModuleTable, header.CjsModuleCount, 8, func(b []byte) {
			f.CjsModules = make([]CjsModuleEntry, len(b)/8)
			for i, p := range pairs(b) {
				f.CjsModules[i] = CjsModuleEntry{ID: p[0], Offset: p[1]}
			}
		}},
	}

	for _, t := range tables {
		start := r.pos
		if err := r.align(); err != nil {
			return nil, 0, &DecodeError{Stage: t.stage, Offset: start, Err: err}
		}
		start = r.pos
		b, err := r.table(t.count, t.size)
		if err != nil {
			return nil, 0, &DecodeError{Stage: t.stage, Offset: start, Err: err}
		}
		t.store(b)
		d.logger.Debug().
			Str("stage", t.stage).
			Int("offset", start).
			Uint32("count", t.count).
			Msg("read table")
	}

	return f, r.pos, nil
}
