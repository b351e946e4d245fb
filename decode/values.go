package decode

import (
	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

func assign(dst ir.Register, e ir.Expression) ir.Statement {
	return ir.ExpressionStmt{Register: dst, Expr: e}
}

func decodeMove(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	switch op {
	case opcode.Mov:
		dst, src := c.reg8(), c.reg8()
		return assign(dst, src), nil
	case opcode.MovLong:
		dst, src := c.reg32(), c.reg32()
		return assign(dst, src), nil
	}
	return nil, mismatch(op, "move")
}

func decodeLiteral(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	dst := c.reg8()
	var e ir.Expression
	switch op {
	case opcode.LoadConstZero:
		e = ir.Number{Kind: ir.NumberUInt8}
	case opcode.LoadConstUInt8:
		e = ir.Number{Kind: ir.NumberUInt8, Value: float64(c.u8())}
	case opcode.LoadConstInt:
		e = ir.Number{Kind: ir.NumberInt32, Value: float64(c.i32())}
	case opcode.LoadConstDouble:
		e = ir.Number{Kind: ir.NumberDouble, Value: c.f64()}
	case opcode.LoadConstString:
		e = ir.String{Index: c.wordIndex()}
	case opcode.LoadConstStringLongIndex:
		e = ir.String{Index: c.dwordIndex()}
	case opcode.LoadConstUndefined:
		e = ir.Undefined{}
	case opcode.LoadConstNull:
		e = ir.Null{}
	case opcode.LoadConstTrue:
		e = ir.Boolean{Value: true}
	case opcode.LoadConstFalse:
		e = ir.Boolean{Value: false}
	case opcode.CreateRegExp:
		e = ir.RegExp{Pattern: c.u32(), Flags: c.u32(), Bytecode: c.u32()}
	default:
		return nil, mismatch(op, "literal")
	}
	return assign(dst, e), nil
}

var unaryOperators = map[opcode.Opcode]ir.UnaryOperator{
	opcode.Negate: ir.Negation,
	opcode.Not:    ir.LogicalNot,
	opcode.BitNot: ir.BitwiseNot,
	opcode.TypeOf: ir.TypeOf,
}

func decodeUnary(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	unop, ok := unaryOperators[op]
	if !ok {
		return nil, mismatch(op, "unary")
	}
	dst, arg := c.reg8(), c.reg8()
	return assign(dst, ir.Unary{Op: unop, Arg: arg}), nil
}

type binaryForm struct {
	op      ir.BinaryOperator
	numeric bool
}

var binaryOperators = map[opcode.Opcode]binaryForm{
	opcode.Eq:         {op: ir.Equality},
	opcode.StrictEq:   {op: ir.Identity},
	opcode.Neq:        {op: ir.Inequality},
	opcode.StrictNeq:  {op: ir.NonIdentity},
	opcode.Less:       {op: ir.LessThan},
	opcode.LessEq:     {op: ir.LessThanEqual},
	opcode.Greater:    {op: ir.GreaterThan},
	opcode.GreaterEq:  {op: ir.GreaterThanEqual},
	opcode.Add:        {op: ir.Addition},
	opcode.AddN:       {op: ir.Addition, numeric: true},
	opcode.Mul:        {op: ir.Multiplication},
	opcode.MulN:       {op: ir.Multiplication, numeric: true},
	opcode.Div:        {op: ir.Division},
	opcode.DivN:       {op: ir.Division, numeric: true},
	opcode.Mod:        {op: ir.Remainder},
	opcode.Sub:        {op: ir.Subtraction},
	opcode.SubN:       {op: ir.Subtraction, numeric: true},
	opcode.LShift:     {op: ir.LeftShift},
	opcode.RShift:     {op: ir.RightShift},
	opcode.URShift:    {op: ir.UnsignedRightShift},
	opcode.BitAnd:     {op: ir.BitwiseAnd},
	opcode.BitXor:     {op: ir.BitwiseXor},
	opcode.BitOr:      {op: ir.BitwiseOr},
	opcode.InstanceOf: {op: ir.InstanceOf},
	opcode.IsIn:       {op: ir.In},
}

func decodeBinary(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	form, ok := binaryOperators[op]
	if !ok {
		return nil, mismatch(op, "binary")
	}
	dst, left, right := c.reg8(), c.reg8(), c.reg8()
	return assign(dst, ir.Binary{Op: form.op, Left: left, Right: right, Numeric: form.numeric}), nil
}
