package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

// cursor reads little-endian operands for a single instruction. The first
// short read records an error and every later read returns zero, so
// routines can read all operands and check err once.
type cursor struct {
	op   opcode.Opcode
	data []byte
	pos  int
	err  error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if len(c.data)-c.pos < n {
		c.err = fmt.Errorf("%w: %s operand at +%d needs %d bytes, have %d",
			ErrTruncated, c.op, c.pos+1, n, len(c.data)-c.pos)
		return nil
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) u8() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *cursor) u16() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *cursor) u32() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (c *cursor) i8() int8   { return int8(c.u8()) }
func (c *cursor) i32() int32 { return int32(c.u32()) }

func (c *cursor) f64() float64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (c *cursor) reg8() ir.Register  { return ir.ByteReg(c.u8()) }
func (c *cursor) reg32() ir.Register { return ir.DwordReg(c.u32()) }

func (c *cursor) byteIndex() ir.Index  { return ir.ByteIndex(c.u8()) }
func (c *cursor) wordIndex() ir.Index  { return ir.WordIndex(c.u16()) }
func (c *cursor) dwordIndex() ir.Index { return ir.DwordIndex(c.u32()) }

// index reads a word or dword index depending on long.
func (c *cursor) index(long bool) ir.Index {
	if long {
		return c.dwordIndex()
	}
	return c.wordIndex()
}
