// Package hbctest builds synthetic bytecode containers for tests.
package hbctest

import (
	"bytes"
	"encoding/binary"
	"hash/fnv"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/dexter3k/hbcdecomp/hbc"
)

// Function describes one function to emit. Offset, BytecodeSize and
// InfoOffset of Info are filled in by Build.
type Function struct {
	Info     hbc.FunctionInfo
	Code     []byte
	Handlers []hbc.ExceptionHandler
	// Large stores the header in overflowed form.
	Large bool
}

// String describes one string table entry.
type String struct {
	Value      string
	UTF16      bool
	Identifier bool
	// Overflow forces an overflow table entry.
	Overflow bool
}

// Builder accumulates the contents of a container.
type Builder struct {
	Version         uint32
	SourceHash      [20]byte
	GlobalCodeIndex uint32
	Options         hbc.Options
	DebugInfoOffset uint32

	Functions      []Function
	Strings        []String
	ArrayBuffer    []byte
	ObjKeyBuffer   []byte
	ObjValueBuffer []byte
	RegExps        [][]byte
	CjsModules     []hbc.CjsModuleEntry
}

func New() *Builder {
	return &Builder{Version: 74}
}

// AddFunction appends a plain function and returns its index.
func (b *Builder) AddFunction(code []byte) uint32 {
	b.Functions = append(b.Functions, Function{
		Info: hbc.FunctionInfo{
			ParamCount: 1,
			FrameSize:  8,
			Flags:      hbc.NewFunctionFlags(hbc.ProhibitNone, true, false, false, false),
		},
		Code: code,
	})
	return uint32(len(b.Functions) - 1)
}

// AddString appends a Latin-1 string and returns its index.
func (b *Builder) AddString(s string) uint32 {
	b.Strings = append(b.Strings, String{Value: s})
	return uint32(len(b.Strings) - 1)
}

// AddIdentifier appends an identifier string and returns its index.
func (b *Builder) AddIdentifier(s string) uint32 {
	b.Strings = append(b.Strings, String{Value: s, Identifier: true})
	return uint32(len(b.Strings) - 1)
}

type buffer struct {
	bytes.Buffer
}

func (w *buffer) align() {
	for w.Len()%4 != 0 {
		w.WriteByte(0)
	}
}

func (w *buffer) u32(vs ...uint32) {
	for _, v := range vs {
		_ = binary.Write(w, binary.LittleEndian, v)
	}
}

// Build lays out the header, every table in order, and then function
// bodies, exception tables and large headers after the last table.
func (b *Builder) Build() []byte {
	var storage []byte
	var small []hbc.SmallStringEntry
	var overflow []hbc.OverflowStringEntry
	var kinds []hbc.StringKind
	var hashes []uint32
	for _, s := range b.Strings {
		var enc []byte
		length := uint32(0)
		if s.UTF16 {
			enc, _ = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s.Value))
			length = uint32(len(enc) / 2)
		} else {
			enc, _ = charmap.ISO8859_1.NewEncoder().Bytes([]byte(s.Value))
			length = uint32(len(enc))
		}
		offset := uint32(len(storage))
		storage = append(storage, enc...)
		if s.Overflow || length >= 0xff || offset > 0x7fffff {
			small = append(small, hbc.NewSmallStringEntry(s.UTF16, uint32(len(overflow)), 0xff))
			overflow = append(overflow, hbc.OverflowStringEntry{Offset: offset, Length: length})
		} else {
			small = append(small, hbc.NewSmallStringEntry(s.UTF16, offset, length))
		}

		kind := hbc.KindString
		if s.Identifier {
			kind = hbc.KindIdentifier
			h := fnv.New32a()
			h.Write([]byte(s.Value))
			hashes = append(hashes, h.Sum32())
		}
		if n := len(kinds); n > 0 && kinds[n-1].Kind() == kind {
			kinds[n-1] = hbc.NewStringKind(kind, kinds[n-1].Count()+1)
		} else {
			kinds = append(kinds, hbc.NewStringKind(kind, 1))
		}
	}

	var regexpStorage []byte
	var regexps []hbc.RegExpEntry
	for _, re := range b.RegExps {
		regexps = append(regexps, hbc.RegExpEntry{Offset: uint32(len(regexpStorage)), Length: uint32(len(re))})
		regexpStorage = append(regexpStorage, re...)
	}

	header := hbc.FileHeader{
		Magic:               hbc.Magic,
		Version:             b.Version,
		SourceHash:          b.SourceHash,
		GlobalCodeIndex:     b.GlobalCodeIndex,
		FunctionCount:       uint32(len(b.Functions)),
		StringKindCount:     uint32(len(kinds)),
		IdentifierCount:     uint32(len(hashes)),
		StringCount:         uint32(len(small)),
		OverflowStringCount: uint32(len(overflow)),
		StringStorageSize:   uint32(len(storage)),
		RegExpCount:         uint32(len(regexps)),
		RegExpStorageSize:   uint32(len(regexpStorage)),
		ArrayBufferSize:     uint32(len(b.ArrayBuffer)),
		ObjKeyBufferSize:    uint32(len(b.ObjKeyBuffer)),
		ObjValueBufferSize:  uint32(len(b.ObjValueBuffer)),
		CjsModuleCount:      uint32(len(b.CjsModules)),
		DebugInfoOffset:     b.DebugInfoOffset,
		Options:             b.Options,
	}

	var w buffer
	w.Write(header.Encode())
	functionTable := w.Len()
	w.Write(make([]byte, len(b.Functions)*hbc.FunctionHeaderSize))
	w.align()
	for _, k := range kinds {
		w.u32(uint32(k))
	}
	w.align()
	w.u32(hashes...)
	w.align()
	for _, e := range small {
		w.u32(uint32(e))
	}
	w.align()
	for _, e := range overflow {
		w.u32(e.Offset, e.Length)
	}
	w.align()
	w.Write(storage)
	w.align()
	w.Write(b.ArrayBuffer)
	w.align()
	w.Write(b.ObjKeyBuffer)
	w.align()
	w.Write(b.ObjValueBuffer)
	w.align()
	for _, e := range regexps {
		w.u32(e.Offset, e.Length)
	}
	w.align()
	w.Write(regexpStorage)
	w.align()
	cjsOffset := w.Len()
	for _, e := range b.CjsModules {
		w.u32(e.ID, e.Offset)
	}

	headers := make([]hbc.FunctionHeader, len(b.Functions))
	for i, fn := range b.Functions {
		w.align()
		info := fn.Info
		info.Offset = uint32(w.Len())
		info.BytecodeSize = uint32(len(fn.Code))
		w.Write(fn.Code)
		if len(fn.Handlers) > 0 {
			w.align()
			info.InfoOffset = uint32(w.Len())
			info.Flags |= hbc.NewFunctionFlags(0, false, true, false, false)
			w.u32(uint32(len(fn.Handlers)))
			for _, h := range fn.Handlers {
				w.u32(h.Start, h.End, h.Target)
			}
		}
		if fn.Large {
			w.align()
			loc := uint32(w.Len())
			w.Write(info.EncodeLarge())
			info = hbc.FunctionInfo{
				Offset:     loc & 0xffff,
				InfoOffset: loc >> 16,
				Flags:      info.Flags | hbc.NewFunctionFlags(0, false, false, false, true),
			}
		}
		h, err := hbc.NewFunctionHeader(info)
		if err != nil {
			panic(err)
		}
		headers[i] = h
	}

	out := w.Bytes()
	for i, h := range headers {
		copy(out[functionTable+i*hbc.FunctionHeaderSize:], h.Encode())
	}
	header.CjsModuleOffset = uint32(cjsOffset)
	header.FileLength = uint32(len(out))
	copy(out, header.Encode())
	return out
}
