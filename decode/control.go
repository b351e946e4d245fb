package decode

import (
	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

func decodeFrame(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	dst := c.reg8()
	var e ir.Expression
	switch op {
	case opcode.GetGlobalObject:
		e = ir.GlobalObject{}
	case opcode.GetNewTarget:
		e = ir.NewTarget{}
	case opcode.CreateThis:
		e = ir.CreateThis{Prototype: c.reg8(), Constructor: c.reg8()}
	case opcode.SelectObject:
		e = ir.SelectObject{This: c.reg8(), Result: c.reg8()}
	case opcode.LoadParam:
		e = ir.LoadParam{Index: c.byteIndex()}
	case opcode.LoadParamLong:
		e = ir.LoadParam{Index: c.dwordIndex()}
	case opcode.CoerceThisNS:
		e = ir.CoerceThis{Value: c.reg8()}
	case opcode.LoadThisNS:
		e = ir.LoadThis{}
	case opcode.ToNumber:
		e = ir.Convert{Kind: ir.ToNumber, Value: c.reg8()}
	case opcode.ToInt32:
		e = ir.Convert{Kind: ir.ToInt32, Value: c.reg8()}
	case opcode.AddEmptyString:
		e = ir.Convert{Kind: ir.ToString, Value: c.reg8()}
	case opcode.GetArgumentsPropByVal:
		e = ir.ArgumentsProp{Index: c.reg8(), Lazy: c.reg8()}
	case opcode.GetArgumentsLength:
		e = ir.ArgumentsLength{Lazy: c.reg8()}
	case opcode.GetPNameList:
		e = ir.PropNameList{Object: c.reg8(), Iterator: c.reg8(), Size: c.reg8()}
	case opcode.GetNextPName:
		e = ir.NextPropName{List: c.reg8(), Object: c.reg8(), Iterator: c.reg8(), Size: c.reg8()}
	case opcode.DirectEval:
		e = ir.DirectEval{Value: c.reg8()}
	case opcode.Catch:
		e = ir.Catch{}
	default:
		return nil, mismatch(op, "frame")
	}
	return assign(dst, e), nil
}

func decodeControl(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	switch op {
	case opcode.Ret:
		return ir.ReturnStmt{Value: c.reg8()}, nil
	case opcode.Throw:
		return ir.ThrowStmt{Value: c.reg8()}, nil
	case opcode.ThrowIfUndefinedInst:
		return ir.ThrowStmt{Value: c.reg8(), IfUndefined: true}, nil
	case opcode.Debugger, opcode.AsyncBreakCheck, opcode.Unreachable:
		return ir.NopStmt{Op: op}, nil
	case opcode.ProfilePoint:
		return ir.NopStmt{Op: op, Point: c.u16()}, nil
	case opcode.DeclareGlobalVar:
		return ir.DeclarationStmt{Name: c.dwordIndex()}, nil
	case opcode.SwitchImm:
		return ir.SwitchStmt{
			Value:       c.reg8(),
			TableOffset: c.u32(),
			Default:     c.i32(),
			Min:         c.u32(),
			Max:         c.u32(),
		}, nil
	}
	return nil, mismatch(op, "control")
}

func decodeGenerator(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	switch op {
	case opcode.StartGenerator:
		return ir.GeneratorStmt{Kind: ir.GeneratorStart}, nil
	case opcode.CompleteGenerator:
		return ir.GeneratorStmt{Kind: ir.GeneratorComplete}, nil
	case opcode.SaveGenerator:
		return ir.GeneratorStmt{Kind: ir.GeneratorSave, Offset: int32(c.i8()), Width: ir.Byte}, nil
	case opcode.SaveGeneratorLong:
		return ir.GeneratorStmt{Kind: ir.GeneratorSave, Offset: c.i32(), Width: ir.Dword}, nil
	case opcode.ResumeGenerator:
		dst := c.reg8()
		return assign(dst, ir.ResumeGenerator{IsReturn: c.reg8()}), nil
	}
	return nil, mismatch(op, "generator")
}

func decodeIterator(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	switch op {
	case opcode.IteratorBegin:
		dst := c.reg8()
		return assign(dst, ir.IteratorBegin{Source: c.reg8()}), nil
	case opcode.IteratorNext:
		dst := c.reg8()
		return assign(dst, ir.IteratorNext{Iterator: c.reg8(), Source: c.reg8()}), nil
	case opcode.IteratorClose:
		it := c.reg8()
		return ir.IteratorCloseStmt{Iterator: it, IgnoreInnerException: c.u8() != 0}, nil
	}
	return nil, mismatch(op, "iterator")
}

type compareForm struct {
	op      ir.BinaryOperator
	negate  bool
	numeric bool
}

// compareJumps maps each short compare-and-jump opcode to its condition.
// The long form is always the following opcode.
var compareJumps = map[opcode.Opcode]compareForm{
	opcode.JLess:             {op: ir.LessThan},
	opcode.JNotLess:          {op: ir.LessThan, negate: true},
	opcode.JLessN:            {op: ir.LessThan, numeric: true},
	opcode.JNotLessN:         {op: ir.LessThan, negate: true, numeric: true},
	opcode.JLessEqual:        {op: ir.LessThanEqual},
	opcode.JNotLessEqual:     {op: ir.LessThanEqual, negate: true},
	opcode.JLessEqualN:       {op: ir.LessThanEqual, numeric: true},
	opcode.JNotLessEqualN:    {op: ir.LessThanEqual, negate: true, numeric: true},
	opcode.JGreater:          {op: ir.GreaterThan},
	opcode.JNotGreater:       {op: ir.GreaterThan, negate: true},
	opcode.JGreaterN:         {op: ir.GreaterThan, numeric: true},
	opcode.JNotGreaterN:      {op: ir.GreaterThan, negate: true, numeric: true},
	opcode.JGreaterEqual:     {op: ir.GreaterThanEqual},
	opcode.JNotGreaterEqual:  {op: ir.GreaterThanEqual, negate: true},
	opcode.JGreaterEqualN:    {op: ir.GreaterThanEqual, numeric: true},
	opcode.JNotGreaterEqualN: {op: ir.GreaterThanEqual, negate: true, numeric: true},
	opcode.JEqual:            {op: ir.Equality},
	opcode.JNotEqual:         {op: ir.Inequality},
	opcode.JStrictEqual:      {op: ir.Identity},
	opcode.JStrictNotEqual:   {op: ir.NonIdentity},
}

func decodeJump(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	info := opcode.GetInfo(op)
	if !info.IsJump() {
		return nil, mismatch(op, "jump")
	}
	b := ir.BranchStmt{Width: ir.Byte}
	if info.Operands[0] == opcode.Addr32 {
		b.Width = ir.Dword
		b.Offset = c.i32()
	} else {
		b.Offset = int32(c.i8())
	}
	switch op {
	case opcode.Jmp, opcode.JmpLong:
		b.Kind = ir.BranchAlways
	case opcode.JmpTrue, opcode.JmpTrueLong:
		b.Kind, b.Cond = ir.BranchTrue, c.reg8()
	case opcode.JmpFalse, opcode.JmpFalseLong:
		b.Kind, b.Cond = ir.BranchFalse, c.reg8()
	case opcode.JmpUndefined, opcode.JmpUndefinedLong:
		b.Kind, b.Cond = ir.BranchUndefined, c.reg8()
	default:
		short := op
		if b.Width == ir.Dword {
			short--
		}
		form, ok := compareJumps[short]
		if !ok {
			return nil, mismatch(op, "jump")
		}
		b.Kind = ir.BranchCompare
		b.Op, b.Negate, b.Numeric = form.op, form.negate, form.numeric
		b.Left, b.Right = c.reg8(), c.reg8()
	}
	return b, nil
}
