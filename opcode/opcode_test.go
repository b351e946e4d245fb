package opcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromByteCoversInstructionSet(t *testing.T) {
	for b := 0; b < Count; b++ {
		op, err := FromByte(byte(b))
		require.NoError(t, err, "byte %d", b)
		require.Equal(t, Opcode(b), op)
	}
}

func TestFromByteRejectsUnknown(t *testing.T) {
	for b := Count; b <= 0xff; b++ {
		_, err := FromByte(byte(b))
		require.Error(t, err, "byte %d", b)
		require.True(t, errors.Is(err, ErrUnknown))
	}
}

func TestEveryOpcodeHasInfo(t *testing.T) {
	seen := map[string]Opcode{}
	for b := 0; b < Count; b++ {
		info := GetInfo(Opcode(b))
		require.NotEmpty(t, info.Name, "opcode %d has no name", b)
		if prev, ok := seen[info.Name]; ok {
			t.Fatalf("opcode %d reuses name %q of opcode %d", b, info.Name, prev)
		}
		seen[info.Name] = Opcode(b)
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "Mov", Mov.String())
	require.Equal(t, "CallBuiltin", CallBuiltin.String())
	require.Equal(t, "JStrictNotEqualLong", JStrictNotEqualLong.String())
	require.Equal(t, "JNotGreaterEqualN", JNotGreaterEqualN.String())
	require.Equal(t, "Opcode(200)", Opcode(200).String())
}

func TestInfoSize(t *testing.T) {
	tests := []struct {
		op   Opcode
		size int
	}{
		{Mov, 3},
		{MovLong, 9},
		{LoadConstDouble, 10},
		{NewObjectWithBuffer, 10},
		{NewObjectWithBufferLong, 14},
		{SwitchImm, 18},
		{Jmp, 2},
		{JLessLong, 7},
		{Call4, 7},
		{Debugger, 1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.size, GetInfo(tt.op).Size(), tt.op.String())
	}
}

func TestLongVariants(t *testing.T) {
	require.True(t, GetInfo(MovLong).IsLong())
	require.True(t, GetInfo(CallDirectLongIndex).IsLong())
	require.True(t, GetInfo(StoreNPToEnvironmentL).IsLong())
	require.True(t, GetInfo(PutOwnByIndexL).IsLong())
	require.False(t, GetInfo(Mov).IsLong())
	require.False(t, GetInfo(LoadFromEnvironment).IsLong())

	// A long variant widens operands but never changes their count.
	byName := map[string]Info{}
	for b := 0; b < Count; b++ {
		info := GetInfo(Opcode(b))
		byName[info.Name] = info
	}
	for _, info := range byName {
		if !info.IsLong() {
			continue
		}
		name := strings.TrimSuffix(info.Name, "Index")
		name = strings.TrimSuffix(name, "Long")
		name = strings.TrimSuffix(name, "L")
		short, ok := byName[name]
		require.True(t, ok, "no short form for %s", info.Name)
		require.Len(t, info.Operands, len(short.Operands), info.Name)
	}
}

func TestJumps(t *testing.T) {
	require.True(t, GetInfo(Jmp).IsJump())
	require.True(t, GetInfo(JStrictEqualLong).IsJump())
	require.True(t, GetInfo(SaveGeneratorLong).IsJump())
	require.False(t, GetInfo(SwitchImm).IsJump())
	require.False(t, GetInfo(Ret).IsJump())
}
