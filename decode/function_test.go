package decode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

func TestFunctionOffsets(t *testing.T) {
	code := asm(
		opcode.LoadConstUInt8, 0, 1, // 0
		opcode.LoadConstUInt8, 1, 2, // 3
		opcode.Add, 2, 0, 1, // 6
		opcode.JmpTrue, 5, 2, // 10
		opcode.LoadConstZero, 2, // 13
		opcode.Ret, 2, // 15
	)
	fn, err := Function(code)
	require.NoError(t, err)
	require.Len(t, fn.Body, 6)
	assert.Equal(t, []uint32{0, 3, 6, 10, 13, 15}, fn.Offsets)

	branch, ok := fn.Body[3].(ir.BranchStmt)
	require.True(t, ok)
	assert.Equal(t, uint32(fn.Offsets[5]), branch.Target(fn.Offsets[3]))
}

func TestFunctionEmpty(t *testing.T) {
	fn, err := Function(nil)
	require.NoError(t, err)
	assert.Empty(t, fn.Body)
}

func TestFunctionSwitchTable(t *testing.T) {
	code := asm(
		opcode.SwitchImm, 0, uint32(22), int32(18), uint32(1), uint32(2), // 0
		opcode.Ret, 0, // 18
		opcode.Ret, 1, // 20
		0, 0, // padding to the table
		int32(18), int32(20),
	)
	require.Len(t, code, 32)

	fn, err := Function(code)
	require.NoError(t, err)
	require.Len(t, fn.Body, 3)
	assert.Equal(t, []uint32{0, 18, 20}, fn.Offsets)

	sw, ok := fn.Body[0].(ir.SwitchStmt)
	require.True(t, ok)
	assert.Equal(t, []int32{18, 20}, sw.Targets)
	assert.Equal(t, "switch (r0) [1..2] default +18, 1: +18, 2: +20", sw.String())
}

func TestFunctionBadSwitchTable(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"past end", asm(opcode.SwitchImm, 0, uint32(100), int32(0), uint32(0), uint32(0))},
		{"overlaps instruction", asm(opcode.SwitchImm, 0, uint32(4), int32(0), uint32(0), uint32(0), int32(0))},
		{"inverted range", asm(opcode.SwitchImm, 0, uint32(18), int32(0), uint32(3), uint32(1), 0, 0, int32(0))},
		{"short table", asm(opcode.SwitchImm, 0, uint32(18), int32(0), uint32(0), uint32(3), 0, 0, int32(0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Function(tt.code)
			assert.Nil(t, fn)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadJumpTable), err.Error())

			var ie *InstructionError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, 0, ie.Offset)
			assert.Equal(t, byte(opcode.SwitchImm), ie.Byte)
		})
	}
}

func TestFunctionReportsFailingOffset(t *testing.T) {
	code := asm(
		opcode.Mov, 0, 1,
		opcode.LoadConstNull, 2,
		0xfe,
	)
	_, err := Function(code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, opcode.ErrUnknown))

	var ie *InstructionError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 5, ie.Offset)
	assert.Equal(t, byte(0xfe), ie.Byte)
	assert.Contains(t, err.Error(), "000005")
}

func TestFunctionTruncatedTail(t *testing.T) {
	code := asm(opcode.Ret, 0, opcode.GetById, 0, 1)
	_, err := Function(code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncated))

	var ie *InstructionError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 2, ie.Offset)
}
