// Package ir is the typed intermediate form produced by the instruction
// decoder. Every instruction becomes exactly one Statement; operands keep
// the width they were encoded with so that short and long encodings of the
// same instruction remain distinguishable.
package ir

import (
	"fmt"
	"strconv"
)

// Width is the encoded size of an operand in bytes.
type Width uint8

const (
	Byte  Width = 1
	Word  Width = 2
	Dword Width = 4
)

func (w Width) String() string {
	switch w {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Dword:
		return "dword"
	}
	return fmt.Sprintf("Width(%d)", uint8(w))
}

// Register is a frame register operand. It is also the Expression for a
// plain register copy.
type Register struct {
	Width Width
	Index uint32
}

func ByteReg(i uint8) Register    { return Register{Width: Byte, Index: uint32(i)} }
func DwordReg(i uint32) Register { return Register{Width: Dword, Index: i} }

func (r Register) String() string {
	return fmt.Sprintf("r%d", r.Index)
}

func (Register) expression() {}

// Index is an immediate table index or count: a string id, a function id,
// a literal buffer offset, an environment slot or an argument count.
type Index struct {
	Width Width
	Value uint32
}

func ByteIndex(v uint8) Index   { return Index{Width: Byte, Value: uint32(v)} }
func WordIndex(v uint16) Index  { return Index{Width: Word, Value: uint32(v)} }
func DwordIndex(v uint32) Index { return Index{Width: Dword, Value: v} }

func (i Index) String() string {
	return fmt.Sprintf("%d", i.Value)
}

// StringTable looks up string table entries by index. *hbc.File
// implements it.
type StringTable interface {
	String(i uint32) (string, error)
}

// stringRefs renders string table indices as sN, or as quoted literals
// when table is set and holds the index.
type stringRefs struct {
	table StringTable
}

func (r stringRefs) ref(i uint32) string {
	if r.table != nil {
		if s, err := r.table.String(i); err == nil {
			return strconv.Quote(s)
		}
	}
	return fmt.Sprintf("s%d", i)
}

// refFormatter is implemented by nodes that mention string indices.
type refFormatter interface {
	format(refs stringRefs) string
}

func formatWith(v fmt.Stringer, refs stringRefs) string {
	if f, ok := v.(refFormatter); ok {
		return f.format(refs)
	}
	return v.String()
}
