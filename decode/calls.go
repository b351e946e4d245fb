package decode

import (
	"github.com/dexter3k/hbcdecomp/builtin"
	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

func decodeFrameCall(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	dst := c.reg8()
	var call ir.FrameCall
	switch op {
	case opcode.Call, opcode.Construct:
		call = ir.FrameCall{Callee: c.reg8(), ArgCount: c.byteIndex()}
	case opcode.CallLong, opcode.ConstructLong:
		call = ir.FrameCall{Callee: c.reg8(), ArgCount: c.dwordIndex()}
	case opcode.CallDirect, opcode.CallDirectLongIndex:
		call = ir.FrameCall{Kind: ir.CallDirect, ArgCount: c.byteIndex()}
		call.Function = c.index(op == opcode.CallDirectLongIndex)
	case opcode.CallBuiltin:
		b, err := builtin.FromByte(c.u8())
		if err != nil {
			return nil, err
		}
		call = ir.FrameCall{Kind: ir.CallBuiltin, Builtin: b, ArgCount: c.byteIndex()}
	default:
		return nil, mismatch(op, "frame call")
	}
	if op == opcode.Construct || op == opcode.ConstructLong {
		call.Kind = ir.CallConstruct
	}
	return assign(dst, call), nil
}

func decodeCall(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	var n int
	switch op {
	case opcode.Call1:
		n = 1
	case opcode.Call2:
		n = 2
	case opcode.Call3:
		n = 3
	case opcode.Call4:
		n = 4
	default:
		return nil, mismatch(op, "call")
	}
	dst, callee := c.reg8(), c.reg8()
	args := make([]ir.Register, n)
	for i := range args {
		args[i] = c.reg8()
	}
	return assign(dst, ir.Call{Callee: callee, Args: args}), nil
}

func decodeClosure(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	var kind ir.ClosureKind
	switch op {
	case opcode.CreateClosure, opcode.CreateClosureLongIndex:
		kind = ir.ClosureNormal
	case opcode.CreateGeneratorClosure, opcode.CreateGeneratorClosureLongIndex:
		kind = ir.ClosureGenerator
	case opcode.CreateGenerator, opcode.CreateGeneratorLongIndex:
		kind = ir.ClosureGeneratorObject
	default:
		return nil, mismatch(op, "closure")
	}
	dst, env := c.reg8(), c.reg8()
	fn := c.index(opcode.GetInfo(op).IsLong())
	return assign(dst, ir.Closure{Kind: kind, Env: env, Function: fn}), nil
}
