package opcode

import "strings"

// OperandKind describes how one operand is encoded after the opcode byte.
type OperandKind uint8

const (
	Reg8 OperandKind = iota
	Reg32
	UInt8
	UInt16
	UInt32
	Addr8
	Addr32
	Imm32
	Double
)

// Size returns the encoded width of the operand in bytes.
func (k OperandKind) Size() int {
	switch k {
	case Reg8, UInt8, Addr8:
		return 1
	case UInt16:
		return 2
	case Reg32, UInt32, Addr32, Imm32:
		return 4
	case Double:
		return 8
	}
	return 0
}

func (k OperandKind) String() string {
	switch k {
	case Reg8:
		return "Reg8"
	case Reg32:
		return "Reg32"
	case UInt8:
		return "UInt8"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case Addr8:
		return "Addr8"
	case Addr32:
		return "Addr32"
	case Imm32:
		return "Imm32"
	case Double:
		return "Double"
	}
	return "OperandKind(?)"
}

// Info contains metadata about an opcode.
type Info struct {
	Name     string
	Operands []OperandKind
}

// Size returns the full instruction length, opcode byte included.
func (i Info) Size() int {
	n := 1
	for _, k := range i.Operands {
		n += k.Size()
	}
	return n
}

// IsLong reports whether the opcode is the widened variant of a shorter
// instruction.
func (i Info) IsLong() bool {
	return strings.HasSuffix(i.Name, "Long") ||
		strings.HasSuffix(i.Name, "LongIndex") ||
		strings.HasSuffix(i.Name, "EnvironmentL") ||
		i.Name == "PutOwnByIndexL"
}

// IsJump reports whether the first operand is a relative branch target.
func (i Info) IsJump() bool {
	return len(i.Operands) > 0 && (i.Operands[0] == Addr8 || i.Operands[0] == Addr32)
}

var infos = make([]Info, Count)

// GetInfo returns metadata about the given opcode. Invalid opcodes yield a
// zero Info.
func GetInfo(op Opcode) Info {
	if !op.Valid() {
		return Info{}
	}
	return infos[op]
}

func def(op Opcode, name string, operands ...OperandKind) {
	infos[op] = Info{Name: name, Operands: operands}
}

func init() {
	def(NewObjectWithBuffer, "NewObjectWithBuffer", Reg8, UInt16, UInt16, UInt16, UInt16)
	def(NewObjectWithBufferLong, "NewObjectWithBufferLong", Reg8, UInt16, UInt16, UInt32, UInt32)
	def(NewObject, "NewObject", Reg8)
	def(NewObjectWithParent, "NewObjectWithParent", Reg8, Reg8)
	def(NewArrayWithBuffer, "NewArrayWithBuffer", Reg8, UInt16, UInt16, UInt16)
	def(NewArrayWithBufferLong, "NewArrayWithBufferLong", Reg8, UInt16, UInt16, UInt32)
	def(NewArray, "NewArray", Reg8, UInt16)
	def(Mov, "Mov", Reg8, Reg8)
	def(MovLong, "MovLong", Reg32, Reg32)

	def(Negate, "Negate", Reg8, Reg8)
	def(Not, "Not", Reg8, Reg8)
	def(BitNot, "BitNot", Reg8, Reg8)
	def(TypeOf, "TypeOf", Reg8, Reg8)

	for op, name := range map[Opcode]string{
		Eq: "Eq", StrictEq: "StrictEq", Neq: "Neq", StrictNeq: "StrictNeq",
		Less: "Less", LessEq: "LessEq", Greater: "Greater", GreaterEq: "GreaterEq",
		Add: "Add", AddN: "AddN", Mul: "Mul", MulN: "MulN", Div: "Div", DivN: "DivN",
		Mod: "Mod", Sub: "Sub", SubN: "SubN", LShift: "LShift", RShift: "RShift",
		URShift: "URShift", BitAnd: "BitAnd", BitXor: "BitXor", BitOr: "BitOr",
		InstanceOf: "InstanceOf", IsIn: "IsIn",
	} {
		def(op, name, Reg8, Reg8, Reg8)
	}

	def(GetEnvironment, "GetEnvironment", Reg8, UInt8)
	def(StoreToEnvironment, "StoreToEnvironment", Reg8, UInt8, Reg8)
	def(StoreToEnvironmentL, "StoreToEnvironmentL", Reg8, UInt16, Reg8)
	def(StoreNPToEnvironment, "StoreNPToEnvironment", Reg8, UInt8, Reg8)
	def(StoreNPToEnvironmentL, "StoreNPToEnvironmentL", Reg8, UInt16, Reg8)
	def(LoadFromEnvironment, "LoadFromEnvironment", Reg8, Reg8, UInt8)
	def(LoadFromEnvironmentL, "LoadFromEnvironmentL", Reg8, Reg8, UInt16)
	def(GetGlobalObject, "GetGlobalObject", Reg8)
	def(GetNewTarget, "GetNewTarget", Reg8)
	def(CreateEnvironment, "CreateEnvironment", Reg8)
	def(DeclareGlobalVar, "DeclareGlobalVar", UInt32)

	def(GetByIdShort, "GetByIdShort", Reg8, Reg8, UInt8, UInt8)
	def(GetById, "GetById", Reg8, Reg8, UInt8, UInt16)
	def(GetByIdLong, "GetByIdLong", Reg8, Reg8, UInt8, UInt32)
	def(TryGetById, "TryGetById", Reg8, Reg8, UInt8, UInt16)
	def(TryGetByIdLong, "TryGetByIdLong", Reg8, Reg8, UInt8, UInt32)
	def(PutById, "PutById", Reg8, Reg8, UInt8, UInt16)
	def(PutByIdLong, "PutByIdLong", Reg8, Reg8, UInt8, UInt32)
	def(TryPutById, "TryPutById", Reg8, Reg8, UInt8, UInt16)
	def(TryPutByIdLong, "TryPutByIdLong", Reg8, Reg8, UInt8, UInt32)
	def(PutNewOwnByIdShort, "PutNewOwnByIdShort", Reg8, Reg8, UInt8)
	def(PutNewOwnById, "PutNewOwnById", Reg8, Reg8, UInt16)
	def(PutNewOwnByIdLong, "PutNewOwnByIdLong", Reg8, Reg8, UInt32)
	def(PutNewOwnNEById, "PutNewOwnNEById", Reg8, Reg8, UInt16)
	def(PutNewOwnNEByIdLong, "PutNewOwnNEByIdLong", Reg8, Reg8, UInt32)
	def(PutOwnByIndex, "PutOwnByIndex", Reg8, Reg8, UInt8)
	def(PutOwnByIndexL, "PutOwnByIndexL", Reg8, Reg8, UInt32)
	def(PutOwnByVal, "PutOwnByVal", Reg8, Reg8, Reg8, UInt8)
	def(DelById, "DelById", Reg8, Reg8, UInt16)
	def(DelByIdLong, "DelByIdLong", Reg8, Reg8, UInt32)
	def(GetByVal, "GetByVal", Reg8, Reg8, Reg8)
	def(PutByVal, "PutByVal", Reg8, Reg8, Reg8)
	def(DelByVal, "DelByVal", Reg8, Reg8, Reg8)
	def(PutOwnGetterSetterByVal, "PutOwnGetterSetterByVal", Reg8, Reg8, Reg8, Reg8, UInt8)
	def(GetPNameList, "GetPNameList", Reg8, Reg8, Reg8, Reg8)
	def(GetNextPName, "GetNextPName", Reg8, Reg8, Reg8, Reg8, Reg8)

	def(Call, "Call", Reg8, Reg8, UInt8)
	def(Construct, "Construct", Reg8, Reg8, UInt8)
	def(Call1, "Call1", Reg8, Reg8, Reg8)
	def(CallDirect, "CallDirect", Reg8, UInt8, UInt16)
	def(Call2, "Call2", Reg8, Reg8, Reg8, Reg8)
	def(Call3, "Call3", Reg8, Reg8, Reg8, Reg8, Reg8)
	def(Call4, "Call4", Reg8, Reg8, Reg8, Reg8, Reg8, Reg8)
	def(CallLong, "CallLong", Reg8, Reg8, UInt32)
	def(ConstructLong, "ConstructLong", Reg8, Reg8, UInt32)
	def(CallDirectLongIndex, "CallDirectLongIndex", Reg8, UInt8, UInt32)
	def(CallBuiltin, "CallBuiltin", Reg8, UInt8, UInt8)

	def(Ret, "Ret", Reg8)
	def(Catch, "Catch", Reg8)
	def(DirectEval, "DirectEval", Reg8, Reg8)
	def(Throw, "Throw", Reg8)
	def(ThrowIfUndefinedInst, "ThrowIfUndefinedInst", Reg8)
	def(Debugger, "Debugger")
	def(AsyncBreakCheck, "AsyncBreakCheck")
	def(ProfilePoint, "ProfilePoint", UInt16)
	def(Unreachable, "Unreachable")
	def(CreateClosure, "CreateClosure", Reg8, Reg8, UInt16)
	def(CreateClosureLongIndex, "CreateClosureLongIndex", Reg8, Reg8, UInt32)
	def(CreateGeneratorClosure, "CreateGeneratorClosure", Reg8, Reg8, UInt16)
	def(CreateGeneratorClosureLongIndex, "CreateGeneratorClosureLongIndex", Reg8, Reg8, UInt32)
	def(CreateThis, "CreateThis", Reg8, Reg8, Reg8)
	def(SelectObject, "SelectObject", Reg8, Reg8, Reg8)
	def(LoadParam, "LoadParam", Reg8, UInt8)
	def(LoadParamLong, "LoadParamLong", Reg8, UInt32)

	def(LoadConstUInt8, "LoadConstUInt8", Reg8, UInt8)
	def(LoadConstInt, "LoadConstInt", Reg8, Imm32)
	def(LoadConstDouble, "LoadConstDouble", Reg8, Double)
	def(LoadConstString, "LoadConstString", Reg8, UInt16)
	def(LoadConstStringLongIndex, "LoadConstStringLongIndex", Reg8, UInt32)
	def(LoadConstUndefined, "LoadConstUndefined", Reg8)
	def(LoadConstNull, "LoadConstNull", Reg8)
	def(LoadConstTrue, "LoadConstTrue", Reg8)
	def(LoadConstFalse, "LoadConstFalse", Reg8)
	def(LoadConstZero, "LoadConstZero", Reg8)

	def(CoerceThisNS, "CoerceThisNS", Reg8, Reg8)
	def(LoadThisNS, "LoadThisNS", Reg8)
	def(ToNumber, "ToNumber", Reg8, Reg8)
	def(ToInt32, "ToInt32", Reg8, Reg8)
	def(AddEmptyString, "AddEmptyString", Reg8, Reg8)
	def(GetArgumentsPropByVal, "GetArgumentsPropByVal", Reg8, Reg8, Reg8)
	def(GetArgumentsLength, "GetArgumentsLength", Reg8, Reg8)
	def(CreateRegExp, "CreateRegExp", Reg8, UInt32, UInt32, UInt32)
	def(SwitchImm, "SwitchImm", Reg8, UInt32, Addr32, UInt32, UInt32)

	def(StartGenerator, "StartGenerator")
	def(ResumeGenerator, "ResumeGenerator", Reg8, Reg8)
	def(CompleteGenerator, "CompleteGenerator")
	def(CreateGenerator, "CreateGenerator", Reg8, Reg8, UInt16)
	def(CreateGeneratorLongIndex, "CreateGeneratorLongIndex", Reg8, Reg8, UInt32)
	def(IteratorBegin, "IteratorBegin", Reg8, Reg8)
	def(IteratorNext, "IteratorNext", Reg8, Reg8, Reg8)
	def(IteratorClose, "IteratorClose", Reg8, UInt8)

	def(Jmp, "Jmp", Addr8)
	def(JmpLong, "JmpLong", Addr32)
	def(JmpTrue, "JmpTrue", Addr8, Reg8)
	def(JmpTrueLong, "JmpTrueLong", Addr32, Reg8)
	def(JmpFalse, "JmpFalse", Addr8, Reg8)
	def(JmpFalseLong, "JmpFalseLong", Addr32, Reg8)
	def(JmpUndefined, "JmpUndefined", Addr8, Reg8)
	def(JmpUndefinedLong, "JmpUndefinedLong", Addr32, Reg8)
	def(SaveGenerator, "SaveGenerator", Addr8)
	def(SaveGeneratorLong, "SaveGeneratorLong", Addr32)

	// The compare-and-jump family comes in short/long pairs starting at JLess.
	for i, name := range []string{
		"JLess", "JNotLess", "JLessN", "JNotLessN",
		"JLessEqual", "JNotLessEqual", "JLessEqualN", "JNotLessEqualN",
		"JGreater", "JNotGreater", "JGreaterN", "JNotGreaterN",
		"JGreaterEqual", "JNotGreaterEqual", "JGreaterEqualN", "JNotGreaterEqualN",
		"JEqual", "JNotEqual", "JStrictEqual", "JStrictNotEqual",
	} {
		short := JLess + Opcode(2*i)
		def(short, name, Addr8, Reg8, Reg8)
		def(short+1, name+"Long", Addr32, Reg8, Reg8)
	}
}
