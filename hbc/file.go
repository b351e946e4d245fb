package hbc

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic        = errors.New("bad magic value")
	ErrTruncated       = errors.New("unexpected end of data")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// File is a decoded bytecode container. Blob fields are subslices of the
// buffer passed to Decode and must not be modified.
type File struct {
	Header FileHeader

	FunctionHeaders  []FunctionHeader
	StringKinds      []StringKind
	IdentifierHashes []uint32
	SmallStrings     []SmallStringEntry
	OverflowStrings  []OverflowStringEntry
	StringStorage    []byte
	ArrayBuffer      []byte
	ObjKeyBuffer     []byte
	ObjValueBuffer   []byte
	RegExps          []RegExpEntry
	RegExpStorage    []byte
	CjsModules       []CjsModuleEntry

	data []byte
}

// Data returns the buffer the file was decoded from.
func (f *File) Data() []byte {
	return f.data
}

func (f *File) header(i uint32) (FunctionHeader, error) {
	if i >= uint32(len(f.FunctionHeaders)) {
		return FunctionHeader{}, fmt.Errorf("%w: function %d of %d", ErrIndexOutOfRange, i, len(f.FunctionHeaders))
	}
	return f.FunctionHeaders[i], nil
}

// FunctionInfo returns the unpacked header of function i, following the
// overflow pointer to the large header when needed.
func (f *File) FunctionInfo(i uint32) (FunctionInfo, error) {
	h, err := f.header(i)
	if err != nil {
		return FunctionInfo{}, err
	}
	if !h.Flags().Overflowed() {
		return h.Info(), nil
	}
	r, err := (&reader{data: f.data}).at(h.LargeHeaderOffset())
	if err != nil {
		return FunctionInfo{}, fmt.Errorf("function %d large header: %w", i, err)
	}
	info, err := readLargeFunctionInfo(r)
	if err != nil {
		return FunctionInfo{}, fmt.Errorf("function %d large header: %w", i, err)
	}
	return info, nil
}

// Bytecode returns a borrowed view of the instructions of function i.
func (f *File) Bytecode(i uint32) ([]byte, error) {
	info, err := f.FunctionInfo(i)
	if err != nil {
		return nil, err
	}
	r, err := (&reader{data: f.data}).at(info.Offset)
	if err != nil {
		return nil, fmt.Errorf("function %d bytecode: %w", i, err)
	}
	code, err := r.bytes(uint64(info.BytecodeSize))
	if err != nil {
		return nil, fmt.Errorf("function %d bytecode: %w", i, err)
	}
	return code, nil
}

// ExceptionHandlers returns the handler table of function i, or nil when the
// function has none.
func (f *File) ExceptionHandlers(i uint32) ([]ExceptionHandler, error) {
	info, err := f.FunctionInfo(i)
	if err != nil {
		return nil, err
	}
	if !info.Flags.HasExceptionHandler() {
		return nil, nil
	}
	r, err := (&reader{data: f.data}).at(info.InfoOffset)
	if err != nil {
		return nil, fmt.Errorf("function %d exception table: %w", i, err)
	}
	handlers, err := readExceptionHandlers(r)
	if err != nil {
		return nil, fmt.Errorf("function %d exception table: %w", i, err)
	}
	return handlers, nil
}

// FunctionName resolves the name string of function i.
func (f *File) FunctionName(i uint32) (string, error) {
	info, err := f.FunctionInfo(i)
	if err != nil {
		return "", err
	}
	return f.String(info.FunctionName)
}

// RegExpBytecode returns the compiled bytecode of regexp i.
func (f *File) RegExpBytecode(i uint32) ([]byte, error) {
	if i >= uint32(len(f.RegExps)) {
		return nil, fmt.Errorf("%w: regexp %d of %d", ErrIndexOutOfRange, i, len(f.RegExps))
	}
	e := f.RegExps[i]
	if uint64(e.Offset)+uint64(e.Length) > uint64(len(f.RegExpStorage)) {
		return nil, fmt.Errorf("%w: regexp %d spans %d+%d of %d storage bytes", ErrIndexOutOfRange, i, e.Offset, e.Length, len(f.RegExpStorage))
	}
	return f.RegExpStorage[e.Offset : e.Offset+e.Length], nil
}
