package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexter3k/hbcdecomp/builtin"
	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

// asm encodes an instruction stream. Opcodes and ints are written as single
// bytes; other values are written little-endian at their natural size.
func asm(parts ...interface{}) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		switch v := p.(type) {
		case opcode.Opcode:
			buf.WriteByte(byte(v))
		case int:
			buf.WriteByte(byte(v))
		default:
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				panic(err)
			}
		}
	}
	return buf.Bytes()
}

func decodeOne(t *testing.T, code []byte) ir.Statement {
	t.Helper()
	stmt, rest, err := Instruction(code[0], code[1:])
	require.NoError(t, err)
	require.Empty(t, rest, "instruction did not consume all of its operands")
	return stmt
}

func TestInstructionKnownEncodings(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want ir.Statement
	}{
		{"Mov", []byte{7, 2, 5}, ir.ExpressionStmt{Register: ir.ByteReg(2), Expr: ir.ByteReg(5)}},
		{"LoadConstUInt8", []byte{102, 3, 42},
			ir.ExpressionStmt{Register: ir.ByteReg(3), Expr: ir.Number{Kind: ir.NumberUInt8, Value: 42}}},
		{"CallBuiltin", []byte{84, 1, 0, 2},
			ir.ExpressionStmt{Register: ir.ByteReg(1), Expr: ir.FrameCall{
				Kind: ir.CallBuiltin, Builtin: builtin.ArrayIsArray, ArgCount: ir.ByteIndex(2),
			}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, decodeOne(t, tt.code)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInstructionOperandLayouts(t *testing.T) {
	r := ir.ByteReg
	set := func(dst ir.Register, e ir.Expression) ir.Statement { return ir.ExpressionStmt{Register: dst, Expr: e} }
	keys, vals := ir.DwordIndex(70000), ir.DwordIndex(80000)
	arr := ir.WordIndex(9)
	parent := r(4)

	tests := []struct {
		name string
		code []byte
		want ir.Statement
	}{
		{"MovLong", asm(opcode.MovLong, uint32(300), uint32(7)), set(ir.DwordReg(300), ir.DwordReg(7))},
		{"LoadConstZero", asm(opcode.LoadConstZero, 1), set(r(1), ir.Number{Kind: ir.NumberUInt8})},
		{"LoadConstInt", asm(opcode.LoadConstInt, 1, int32(-5)), set(r(1), ir.Number{Kind: ir.NumberInt32, Value: -5})},
		{"LoadConstDouble", asm(opcode.LoadConstDouble, 1, 2.5), set(r(1), ir.Number{Kind: ir.NumberDouble, Value: 2.5})},
		{"LoadConstStringLongIndex", asm(opcode.LoadConstStringLongIndex, 1, uint32(65536)),
			set(r(1), ir.String{Index: ir.DwordIndex(65536)})},
		{"LoadConstNull", asm(opcode.LoadConstNull, 0), set(r(0), ir.Null{})},
		{"CreateRegExp", asm(opcode.CreateRegExp, 2, uint32(10), uint32(11), uint32(3)),
			set(r(2), ir.RegExp{Pattern: 10, Flags: 11, Bytecode: 3})},
		{"TypeOf", asm(opcode.TypeOf, 0, 1), set(r(0), ir.Unary{Op: ir.TypeOf, Arg: r(1)})},
		{"SubN", asm(opcode.SubN, 0, 1, 2), set(r(0), ir.Binary{Op: ir.Subtraction, Left: r(1), Right: r(2), Numeric: true})},
		{"URShift", asm(opcode.URShift, 0, 1, 2), set(r(0), ir.Binary{Op: ir.UnsignedRightShift, Left: r(1), Right: r(2)})},
		{"IsIn", asm(opcode.IsIn, 0, 1, 2), set(r(0), ir.Binary{Op: ir.In, Left: r(1), Right: r(2)})},

		{"ConstructLong", asm(opcode.ConstructLong, 0, 1, uint32(3)),
			set(r(0), ir.FrameCall{Kind: ir.CallConstruct, Callee: r(1), ArgCount: ir.DwordIndex(3)})},
		{"CallDirect", asm(opcode.CallDirect, 0, 2, uint16(17)),
			set(r(0), ir.FrameCall{Kind: ir.CallDirect, ArgCount: ir.ByteIndex(2), Function: ir.WordIndex(17)})},
		{"CallDirectLongIndex", asm(opcode.CallDirectLongIndex, 0, 2, uint32(70000)),
			set(r(0), ir.FrameCall{Kind: ir.CallDirect, ArgCount: ir.ByteIndex(2), Function: ir.DwordIndex(70000)})},
		{"Call3", asm(opcode.Call3, 0, 1, 2, 3, 4), set(r(0), ir.Call{Callee: r(1), Args: []ir.Register{r(2), r(3), r(4)}})},
		{"CreateGeneratorClosureLongIndex", asm(opcode.CreateGeneratorClosureLongIndex, 0, 1, uint32(5)),
			set(r(0), ir.Closure{Kind: ir.ClosureGenerator, Env: r(1), Function: ir.DwordIndex(5)})},
		{"CreateGenerator", asm(opcode.CreateGenerator, 0, 1, uint16(5)),
			set(r(0), ir.Closure{Kind: ir.ClosureGeneratorObject, Env: r(1), Function: ir.WordIndex(5)})},

		{"NewObjectWithParent", asm(opcode.NewObjectWithParent, 0, 4), set(r(0), ir.NewObject{Parent: &parent})},
		{"NewObjectWithBufferLong", asm(opcode.NewObjectWithBufferLong, 0, uint16(3), uint16(2), uint32(70000), uint32(80000)),
			set(r(0), ir.NewObject{SizeHint: 3, StaticElements: 2, Keys: &keys, Values: &vals})},
		{"NewArrayWithBuffer", asm(opcode.NewArrayWithBuffer, 0, uint16(4), uint16(4), uint16(9)),
			set(r(0), ir.NewArray{SizeHint: 4, StaticElements: 4, Buffer: &arr})},
		{"NewArray", asm(opcode.NewArray, 0, uint16(12)), set(r(0), ir.NewArray{SizeHint: 12})},

		{"GetByIdShort", asm(opcode.GetByIdShort, 0, 1, 2, 3),
			set(r(0), ir.Property{Kind: ir.PropertyGet, Object: r(1), Key: ir.StringKey(ir.ByteIndex(3)), Cache: 2})},
		{"TryGetByIdLong", asm(opcode.TryGetByIdLong, 0, 1, 2, uint32(3)),
			set(r(0), ir.Property{Kind: ir.PropertyGet, Object: r(1), Key: ir.StringKey(ir.DwordIndex(3)), Try: true, Cache: 2})},
		{"PutById", asm(opcode.PutById, 1, 2, 3, uint16(4)),
			ir.EffectStmt{Expr: ir.Property{Kind: ir.PropertySet, Object: r(1), Value: r(2), Cache: 3,
				Key: ir.StringKey(ir.WordIndex(4)), Enumerable: true}}},
		{"PutNewOwnNEByIdLong", asm(opcode.PutNewOwnNEByIdLong, 1, 2, uint32(4)),
			ir.EffectStmt{Expr: ir.Property{Kind: ir.PropertySet, Object: r(1), Value: r(2),
				Key: ir.StringKey(ir.DwordIndex(4)), Own: true}}},
		{"PutOwnByIndexL", asm(opcode.PutOwnByIndexL, 1, 2, uint32(100000)),
			ir.EffectStmt{Expr: ir.Property{Kind: ir.PropertySet, Object: r(1), Value: r(2),
				Key: ir.IndexKey(ir.DwordIndex(100000)), Own: true, Enumerable: true}}},
		{"PutOwnByVal", asm(opcode.PutOwnByVal, 1, 2, 3, 0),
			ir.EffectStmt{Expr: ir.Property{Kind: ir.PropertySet, Object: r(1), Value: r(2),
				Key: ir.RegisterKey(r(3)), Own: true}}},
		{"PutByVal", asm(opcode.PutByVal, 1, 2, 3),
			ir.EffectStmt{Expr: ir.Property{Kind: ir.PropertySet, Object: r(1), Key: ir.RegisterKey(r(2)), Value: r(3), Enumerable: true}}},
		{"DelById", asm(opcode.DelById, 0, 1, uint16(6)),
			set(r(0), ir.Property{Kind: ir.PropertyDelete, Object: r(1), Key: ir.StringKey(ir.WordIndex(6))})},
		{"GetByVal", asm(opcode.GetByVal, 0, 1, 2),
			set(r(0), ir.Property{Kind: ir.PropertyGet, Object: r(1), Key: ir.RegisterKey(r(2))})},
		{"PutOwnGetterSetterByVal", asm(opcode.PutOwnGetterSetterByVal, 1, 2, 3, 4, 1),
			ir.EffectStmt{Expr: ir.Property{Kind: ir.PropertyDefine, Object: r(1), Key: ir.RegisterKey(r(2)),
				Getter: r(3), Setter: r(4), Enumerable: true, Own: true}}},

		{"StoreNPToEnvironmentL", asm(opcode.StoreNPToEnvironmentL, 1, uint16(300), 2),
			ir.EffectStmt{Expr: ir.StoreEnv{Env: r(1), Slot: ir.WordIndex(300), Value: r(2), NonPointer: true}}},
		{"LoadFromEnvironment", asm(opcode.LoadFromEnvironment, 0, 1, 5), set(r(0), ir.LoadEnv{Env: r(1), Slot: ir.ByteIndex(5)})},
		{"GetEnvironment", asm(opcode.GetEnvironment, 0, 2), set(r(0), ir.GetEnvironment{Depth: 2})},

		{"CreateThis", asm(opcode.CreateThis, 0, 1, 2), set(r(0), ir.CreateThis{Prototype: r(1), Constructor: r(2)})},
		{"SelectObject", asm(opcode.SelectObject, 0, 1, 2), set(r(0), ir.SelectObject{This: r(1), Result: r(2)})},
		{"LoadParamLong", asm(opcode.LoadParamLong, 0, uint32(300)), set(r(0), ir.LoadParam{Index: ir.DwordIndex(300)})},
		{"AddEmptyString", asm(opcode.AddEmptyString, 0, 1), set(r(0), ir.Convert{Kind: ir.ToString, Value: r(1)})},
		{"GetArgumentsPropByVal", asm(opcode.GetArgumentsPropByVal, 0, 1, 2), set(r(0), ir.ArgumentsProp{Index: r(1), Lazy: r(2)})},
		{"GetNextPName", asm(opcode.GetNextPName, 0, 1, 2, 3, 4),
			set(r(0), ir.NextPropName{List: r(1), Object: r(2), Iterator: r(3), Size: r(4)})},
		{"Catch", asm(opcode.Catch, 3), set(r(3), ir.Catch{})},

		{"Ret", asm(opcode.Ret, 4), ir.ReturnStmt{Value: r(4)}},
		{"ThrowIfUndefinedInst", asm(opcode.ThrowIfUndefinedInst, 4), ir.ThrowStmt{Value: r(4), IfUndefined: true}},
		{"ProfilePoint", asm(opcode.ProfilePoint, uint16(9)), ir.NopStmt{Op: opcode.ProfilePoint, Point: 9}},
		{"DeclareGlobalVar", asm(opcode.DeclareGlobalVar, uint32(12)), ir.DeclarationStmt{Name: ir.DwordIndex(12)}},
		{"SwitchImm", asm(opcode.SwitchImm, 1, uint32(24), int32(-8), uint32(2), uint32(5)),
			ir.SwitchStmt{Value: r(1), TableOffset: 24, Default: -8, Min: 2, Max: 5}},

		{"SaveGeneratorLong", asm(opcode.SaveGeneratorLong, int32(-1000)),
			ir.GeneratorStmt{Kind: ir.GeneratorSave, Offset: -1000, Width: ir.Dword}},
		{"ResumeGenerator", asm(opcode.ResumeGenerator, 0, 1), set(r(0), ir.ResumeGenerator{IsReturn: r(1)})},
		{"IteratorNext", asm(opcode.IteratorNext, 0, 1, 2), set(r(0), ir.IteratorNext{Iterator: r(1), Source: r(2)})},
		{"IteratorClose", asm(opcode.IteratorClose, 2, 1), ir.IteratorCloseStmt{Iterator: r(2), IgnoreInnerException: true}},

		{"Jmp", asm(opcode.Jmp, -4), ir.BranchStmt{Kind: ir.BranchAlways, Offset: -4, Width: ir.Byte}},
		{"JmpFalseLong", asm(opcode.JmpFalseLong, int32(1000), 3),
			ir.BranchStmt{Kind: ir.BranchFalse, Offset: 1000, Width: ir.Dword, Cond: r(3)}},
		{"JmpUndefined", asm(opcode.JmpUndefined, 6, 3), ir.BranchStmt{Kind: ir.BranchUndefined, Offset: 6, Width: ir.Byte, Cond: r(3)}},
		{"JNotLessN", asm(opcode.JNotLessN, 10, 1, 2),
			ir.BranchStmt{Kind: ir.BranchCompare, Offset: 10, Width: ir.Byte, Op: ir.LessThan, Left: r(1), Right: r(2), Negate: true, Numeric: true}},
		{"JGreaterEqualLong", asm(opcode.JGreaterEqualLong, int32(-300), 1, 2),
			ir.BranchStmt{Kind: ir.BranchCompare, Offset: -300, Width: ir.Dword, Op: ir.GreaterThanEqual, Left: r(1), Right: r(2)}},
		{"JStrictNotEqualLong", asm(opcode.JStrictNotEqualLong, int32(8), 1, 2),
			ir.BranchStmt{Kind: ir.BranchCompare, Offset: 8, Width: ir.Dword, Op: ir.NonIdentity, Left: r(1), Right: r(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, decodeOne(t, tt.code)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEveryOpcodeConsumesItsOperands(t *testing.T) {
	for i := 0; i < opcode.Count; i++ {
		op := opcode.Opcode(i)
		require.NotNil(t, dispatch[op], "%s has no decoder", op)

		info := opcode.GetInfo(op)
		operands := make([]byte, info.Size()-1+3)
		stmt, rest, err := Instruction(byte(op), operands)
		require.NoError(t, err, op.String())
		require.NotNil(t, stmt, op.String())
		assert.Len(t, rest, 3, "%s consumed the wrong number of bytes", op)
	}
}

func TestInstructionTruncated(t *testing.T) {
	for i := 0; i < opcode.Count; i++ {
		op := opcode.Opcode(i)
		need := opcode.GetInfo(op).Size() - 1
		if need == 0 {
			continue
		}
		_, rest, err := Instruction(byte(op), make([]byte, need-1))
		require.Error(t, err, op.String())
		assert.True(t, errors.Is(err, ErrTruncated), op.String())
		assert.Contains(t, err.Error(), op.String())
		assert.Len(t, rest, need-1)
	}
}

func TestInstructionUnknownOpcode(t *testing.T) {
	for b := opcode.Count; b < 256; b++ {
		_, _, err := Instruction(byte(b), make([]byte, 32))
		assert.True(t, errors.Is(err, opcode.ErrUnknown), "byte %d", b)
	}
}

func TestInstructionUnknownBuiltin(t *testing.T) {
	_, _, err := Instruction(byte(opcode.CallBuiltin), []byte{1, byte(builtin.Count), 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, builtin.ErrUnknown))
}

func TestRoutineRejectsForeignOpcode(t *testing.T) {
	tests := []struct {
		routine routine
		op      opcode.Opcode
	}{
		{decodeMove, opcode.Add},
		{decodeLiteral, opcode.Mov},
		{decodeUnary, opcode.Add},
		{decodeBinary, opcode.Negate},
		{decodeFrameCall, opcode.Call1},
		{decodeCall, opcode.Call},
		{decodeClosure, opcode.Ret},
		{decodeNew, opcode.GetById},
		{decodeProperty, opcode.NewObject},
		{decodeEnvironment, opcode.LoadParam},
		{decodeFrame, opcode.Ret},
		{decodeControl, opcode.Jmp},
		{decodeGenerator, opcode.Jmp},
		{decodeIterator, opcode.Catch},
		{decodeJump, opcode.SaveGenerator},
		{decodeJump, opcode.Mov},
	}
	for _, tt := range tests {
		c := &cursor{op: tt.op, data: make([]byte, 32)}
		_, err := tt.routine(tt.op, c)
		assert.True(t, errors.Is(err, ErrOpcodeMismatch), "%s: %v", tt.op, err)
	}
}

func TestCursorStickyError(t *testing.T) {
	c := &cursor{op: opcode.LoadConstInt, data: []byte{1, 2}}
	assert.Equal(t, uint8(1), c.u8())
	assert.Zero(t, c.u32())
	assert.Zero(t, c.u8())
	require.Error(t, c.err)
	assert.True(t, errors.Is(c.err, ErrTruncated))
	assert.Equal(t, 1, c.pos)
}
