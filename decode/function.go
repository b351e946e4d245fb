package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/dexter3k/hbcdecomp/ir"
)

// Function decodes a whole function body. Instructions are decoded from
// offset 0 until the end of code or the first switch jump table, whichever
// comes first. A table begins at its SwitchImm offset plus the table offset;
// the entries themselves start at the next 4-byte boundary. Jump tables are
// resolved into the Targets of their SwitchStmt.
func Function(code []byte) (*ir.Function, error) {
	fn := &ir.Function{}
	limit := len(code)
	var switches []int

	for pos := 0; pos < limit; {
		stmt, rest, err := Instruction(code[pos], code[pos+1:limit])
		if err != nil {
			return nil, &InstructionError{Offset: pos, Byte: code[pos], Err: err}
		}
		next := limit - len(rest)

		if sw, ok := stmt.(ir.SwitchStmt); ok {
			end, _, err := tableBounds(pos, sw.TableOffset, len(code))
			if err != nil {
				return nil, &InstructionError{Offset: pos, Byte: code[pos], Err: err}
			}
			if end < next {
				return nil, &InstructionError{Offset: pos, Byte: code[pos],
					Err: fmt.Errorf("%w: table at %06x overlaps its instruction", ErrBadJumpTable, end)}
			}
			if end < limit {
				limit = end
			}
			switches = append(switches, len(fn.Body))
		}

		fn.Body = append(fn.Body, stmt)
		fn.Offsets = append(fn.Offsets, uint32(pos))
		pos = next
	}

	for _, i := range switches {
		at := int(fn.Offsets[i])
		sw, err := resolveSwitch(code, at, fn.Body[i].(ir.SwitchStmt))
		if err != nil {
			return nil, &InstructionError{Offset: at, Byte: code[at], Err: err}
		}
		fn.Body[i] = sw
	}
	return fn, nil
}

// tableBounds returns where the jump table of a SwitchImm at at begins and
// where its first entry is, both relative to the function start.
func tableBounds(at int, offset uint32, size int) (end, start int, err error) {
	e := uint64(at) + uint64(offset)
	s := (e + 3) &^ 3
	if s > uint64(size) {
		return 0, 0, fmt.Errorf("%w: table at %#x is past the end of a %d byte function", ErrBadJumpTable, s, size)
	}
	return int(e), int(s), nil
}

func resolveSwitch(code []byte, at int, sw ir.SwitchStmt) (ir.SwitchStmt, error) {
	if sw.Max < sw.Min {
		return sw, fmt.Errorf("%w: empty range [%d..%d]", ErrBadJumpTable, sw.Min, sw.Max)
	}
	_, start, err := tableBounds(at, sw.TableOffset, len(code))
	if err != nil {
		return sw, err
	}
	n := uint64(sw.Max-sw.Min) + 1
	if uint64(start)+4*n > uint64(len(code)) {
		return sw, fmt.Errorf("%w: %d entries at %06x exceed a %d byte function", ErrBadJumpTable, n, start, len(code))
	}
	sw.Targets = make([]int32, n)
	for i := range sw.Targets {
		sw.Targets[i] = int32(binary.LittleEndian.Uint32(code[start+4*i:]))
	}
	return sw, nil
}
