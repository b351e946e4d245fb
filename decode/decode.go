// Package decode translates Hermes bytecode instructions into ir
// statements. Instruction decodes a single instruction; Function walks a
// whole function body and Program decodes every function of a file.
package decode

import (
	"errors"
	"fmt"

	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

var (
	// ErrOpcodeMismatch means an opcode was routed to a decoder that does
	// not handle it. It indicates a bug in the dispatch table.
	ErrOpcodeMismatch = errors.New("opcode routed to wrong decoder")
	ErrTruncated      = errors.New("truncated instruction")
	ErrBadJumpTable   = errors.New("bad switch jump table")
)

// InstructionError locates a failed instruction within a function body.
type InstructionError struct {
	Offset int
	Byte   byte
	Err    error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction at %06x (opcode 0x%02x): %v", e.Offset, e.Byte, e.Err)
}

func (e *InstructionError) Unwrap() error { return e.Err }

// FunctionError identifies the function that failed to decode.
type FunctionError struct {
	Index uint32
	Err   error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %d: %v", e.Index, e.Err)
}

func (e *FunctionError) Unwrap() error { return e.Err }

// routine decodes the operands of one family of opcodes.
type routine func(op opcode.Opcode, c *cursor) (ir.Statement, error)

var dispatch [opcode.Count]routine

func route(r routine, ops ...opcode.Opcode) {
	for _, op := range ops {
		if dispatch[op] != nil {
			panic(fmt.Sprintf("decode: %s routed twice", op))
		}
		dispatch[op] = r
	}
}

func mismatch(op opcode.Opcode, family string) error {
	return fmt.Errorf("%w: %s is not a %s instruction", ErrOpcodeMismatch, op, family)
}

// Instruction decodes the instruction whose opcode byte is b and whose
// operands start at rest. It returns the statement and the bytes following
// the instruction.
func Instruction(b byte, rest []byte) (ir.Statement, []byte, error) {
	op, err := opcode.FromByte(b)
	if err != nil {
		return nil, rest, err
	}
	if need := opcode.GetInfo(op).Size() - 1; len(rest) < need {
		return nil, rest, fmt.Errorf("%w: %s needs %d operand bytes, have %d", ErrTruncated, op, need, len(rest))
	}
	c := &cursor{op: op, data: rest}
	stmt, err := dispatch[op](op, c)
	if err == nil {
		err = c.err
	}
	if err != nil {
		return nil, rest, err
	}
	return stmt, rest[c.pos:], nil
}

func init() {
	route(decodeMove, opcode.Mov, opcode.MovLong)
	route(decodeLiteral,
		opcode.LoadConstUInt8, opcode.LoadConstInt, opcode.LoadConstDouble,
		opcode.LoadConstString, opcode.LoadConstStringLongIndex,
		opcode.LoadConstUndefined, opcode.LoadConstNull, opcode.LoadConstTrue,
		opcode.LoadConstFalse, opcode.LoadConstZero, opcode.CreateRegExp)
	route(decodeUnary, opcode.Negate, opcode.Not, opcode.BitNot, opcode.TypeOf)
	route(decodeBinary,
		opcode.Eq, opcode.StrictEq, opcode.Neq, opcode.StrictNeq,
		opcode.Less, opcode.LessEq, opcode.Greater, opcode.GreaterEq,
		opcode.Add, opcode.AddN, opcode.Mul, opcode.MulN, opcode.Div, opcode.DivN,
		opcode.Mod, opcode.Sub, opcode.SubN, opcode.LShift, opcode.RShift,
		opcode.URShift, opcode.BitAnd, opcode.BitXor, opcode.BitOr,
		opcode.InstanceOf, opcode.IsIn)
	route(decodeFrameCall,
		opcode.Call, opcode.Construct, opcode.CallLong, opcode.ConstructLong,
		opcode.CallDirect, opcode.CallDirectLongIndex, opcode.CallBuiltin)
	route(decodeCall, opcode.Call1, opcode.Call2, opcode.Call3, opcode.Call4)
	route(decodeNew,
		opcode.NewObject, opcode.NewObjectWithParent, opcode.NewObjectWithBuffer,
		opcode.NewObjectWithBufferLong, opcode.NewArray, opcode.NewArrayWithBuffer,
		opcode.NewArrayWithBufferLong)
	route(decodeProperty,
		opcode.GetByIdShort, opcode.GetById, opcode.GetByIdLong,
		opcode.TryGetById, opcode.TryGetByIdLong,
		opcode.PutById, opcode.PutByIdLong, opcode.TryPutById, opcode.TryPutByIdLong,
		opcode.PutNewOwnByIdShort, opcode.PutNewOwnById, opcode.PutNewOwnByIdLong,
		opcode.PutNewOwnNEById, opcode.PutNewOwnNEByIdLong,
		opcode.PutOwnByIndex, opcode.PutOwnByIndexL, opcode.PutOwnByVal,
		opcode.DelById, opcode.DelByIdLong, opcode.GetByVal, opcode.PutByVal,
		opcode.DelByVal, opcode.PutOwnGetterSetterByVal)
	route(decodeEnvironment,
		opcode.GetEnvironment, opcode.CreateEnvironment,
		opcode.StoreToEnvironment, opcode.StoreToEnvironmentL,
		opcode.StoreNPToEnvironment, opcode.StoreNPToEnvironmentL,
		opcode.LoadFromEnvironment, opcode.LoadFromEnvironmentL)
	route(decodeClosure,
		opcode.CreateClosure, opcode.CreateClosureLongIndex,
		opcode.CreateGeneratorClosure, opcode.CreateGeneratorClosureLongIndex,
		opcode.CreateGenerator, opcode.CreateGeneratorLongIndex)
	route(decodeFrame,
		opcode.GetGlobalObject, opcode.GetNewTarget, opcode.CreateThis,
		opcode.SelectObject, opcode.LoadParam, opcode.LoadParamLong,
		opcode.CoerceThisNS, opcode.LoadThisNS, opcode.ToNumber, opcode.ToInt32,
		opcode.AddEmptyString, opcode.GetArgumentsPropByVal,
		opcode.GetArgumentsLength, opcode.GetPNameList, opcode.GetNextPName,
		opcode.DirectEval, opcode.Catch)
	route(decodeControl,
		opcode.Ret, opcode.Throw, opcode.ThrowIfUndefinedInst, opcode.Debugger,
		opcode.AsyncBreakCheck, opcode.ProfilePoint, opcode.Unreachable,
		opcode.DeclareGlobalVar, opcode.SwitchImm)
	route(decodeGenerator,
		opcode.StartGenerator, opcode.ResumeGenerator, opcode.CompleteGenerator,
		opcode.SaveGenerator, opcode.SaveGeneratorLong)
	route(decodeIterator, opcode.IteratorBegin, opcode.IteratorNext, opcode.IteratorClose)
	route(decodeJump,
		opcode.Jmp, opcode.JmpLong, opcode.JmpTrue, opcode.JmpTrueLong,
		opcode.JmpFalse, opcode.JmpFalseLong, opcode.JmpUndefined, opcode.JmpUndefinedLong)
	for op := opcode.JLess; op <= opcode.JStrictNotEqualLong; op++ {
		route(decodeJump, op)
	}
}
