package ir

import (
	"fmt"
	"strings"

	"github.com/dexter3k/hbcdecomp/opcode"
)

// Statement is the decoded form of one instruction. The set of
// implementations is closed; switch on the concrete type.
type Statement interface {
	fmt.Stringer
	statement()
}

// ExpressionStmt stores the value of Expr into Register.
type ExpressionStmt struct {
	Register Register
	Expr     Expression
}

func (s ExpressionStmt) String() string { return s.format(stringRefs{}) }

func (s ExpressionStmt) format(refs stringRefs) string {
	return fmt.Sprintf("%s = %s", s.Register, formatWith(s.Expr, refs))
}

// EffectStmt evaluates Expr for its side effect only.
type EffectStmt struct {
	Expr Expression
}

func (s EffectStmt) String() string                { return s.format(stringRefs{}) }
func (s EffectStmt) format(refs stringRefs) string { return formatWith(s.Expr, refs) }

// DeclarationStmt declares a global variable named by string index.
type DeclarationStmt struct {
	Name Index
}

func (s DeclarationStmt) String() string                { return s.format(stringRefs{}) }
func (s DeclarationStmt) format(refs stringRefs) string { return "var " + refs.ref(s.Name.Value) }

// ReturnStmt returns Value, or undefined when Value is nil.
type ReturnStmt struct {
	Value Expression
}

func (s ReturnStmt) String() string { return s.format(stringRefs{}) }

func (s ReturnStmt) format(refs stringRefs) string {
	if s.Value == nil {
		return "return"
	}
	return "return " + formatWith(s.Value, refs)
}

// NopStmt is an instruction with no effect on program values. Point is the
// profile point id of ProfilePoint.
type NopStmt struct {
	Op    opcode.Opcode
	Point uint16
}

func (s NopStmt) String() string {
	switch s.Op {
	case opcode.ProfilePoint:
		return fmt.Sprintf("profile_point(%d)", s.Point)
	case opcode.Debugger:
		return "debugger"
	case opcode.Unreachable:
		return "unreachable"
	case opcode.AsyncBreakCheck:
		return "async_break_check()"
	}
	return "nop"
}

// ThrowStmt throws Value. With IfUndefined it throws a ReferenceError only
// when Value holds the empty sentinel of an uninitialized binding.
type ThrowStmt struct {
	Value       Register
	IfUndefined bool
}

func (s ThrowStmt) String() string {
	if s.IfUndefined {
		return fmt.Sprintf("if (%s === undefined) throw ReferenceError", s.Value)
	}
	return fmt.Sprintf("throw %s", s.Value)
}

// BranchKind is the condition of a BranchStmt.
type BranchKind uint8

const (
	BranchAlways BranchKind = iota
	BranchTrue
	BranchFalse
	BranchUndefined
	BranchCompare
)

// BranchStmt is a relative jump. Offset is relative to the start of the
// branch instruction. Compare branches test Left Op Right, inverted when
// Negate is set.
type BranchStmt struct {
	Kind    BranchKind
	Offset  int32
	Width   Width
	Cond    Register
	Op      BinaryOperator
	Left    Register
	Right   Register
	Negate  bool
	Numeric bool
}

// Target resolves the branch destination for a branch located at at.
func (s BranchStmt) Target(at uint32) uint32 {
	return at + uint32(s.Offset)
}

// Condition renders the tested expression, or "" for unconditional jumps.
func (s BranchStmt) Condition() string {
	switch s.Kind {
	case BranchTrue:
		return s.Cond.String()
	case BranchFalse:
		return "!" + s.Cond.String()
	case BranchUndefined:
		return fmt.Sprintf("%s === undefined", s.Cond)
	case BranchCompare:
		cond := fmt.Sprintf("%s %s %s", s.Left, s.Op, s.Right)
		if s.Negate {
			cond = "!(" + cond + ")"
		}
		return cond
	}
	return ""
}

func (s BranchStmt) String() string {
	jump := fmt.Sprintf("goto %+d", s.Offset)
	cond := s.Condition()
	if cond == "" {
		return jump
	}
	out := fmt.Sprintf("if (%s) %s", cond, jump)
	if s.Numeric {
		out += " // numeric"
	}
	return out
}

// SwitchStmt is a dense integer switch. Targets holds one relative offset
// per case value in [Min, Max], read from the jump table appended to the
// function body; it is nil until the table has been resolved.
type SwitchStmt struct {
	Value       Register
	TableOffset uint32
	Default     int32
	Min         uint32
	Max         uint32
	Targets     []int32
}

func (s SwitchStmt) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "switch (%s) [%d..%d] default %+d", s.Value, s.Min, s.Max, s.Default)
	for i, t := range s.Targets {
		fmt.Fprintf(&b, ", %d: %+d", s.Min+uint32(i), t)
	}
	return b.String()
}

// GeneratorKind is the generator state transition of a GeneratorStmt.
type GeneratorKind uint8

const (
	GeneratorStart GeneratorKind = iota
	GeneratorComplete
	GeneratorSave
)

// GeneratorStmt changes generator state. Save records the resume point at
// the relative Offset.
type GeneratorStmt struct {
	Kind   GeneratorKind
	Offset int32
	Width  Width
}

func (s GeneratorStmt) String() string {
	switch s.Kind {
	case GeneratorComplete:
		return "complete_generator()"
	case GeneratorSave:
		return fmt.Sprintf("save_generator %+d", s.Offset)
	}
	return "start_generator()"
}

// IteratorCloseStmt closes Iterator, suppressing errors from the iterator's
// return method when IgnoreInnerException is set.
type IteratorCloseStmt struct {
	Iterator             Register
	IgnoreInnerException bool
}

func (s IteratorCloseStmt) String() string {
	return fmt.Sprintf("close(%s, ignore=%t)", s.Iterator, s.IgnoreInnerException)
}

func (ExpressionStmt) statement()    {}
func (EffectStmt) statement()        {}
func (DeclarationStmt) statement()   {}
func (ReturnStmt) statement()        {}
func (NopStmt) statement()           {}
func (ThrowStmt) statement()         {}
func (BranchStmt) statement()        {}
func (SwitchStmt) statement()        {}
func (GeneratorStmt) statement()     {}
func (IteratorCloseStmt) statement() {}
