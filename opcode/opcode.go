// Package opcode defines the Hermes bytecode instruction set understood by
// the decoder. Each opcode is a single byte; the numbering follows the
// bytecode version emitted alongside the 128-byte file header.
package opcode

import (
	"errors"
	"fmt"
)

// Opcode identifies one bytecode instruction.
type Opcode uint8

// ErrUnknown is returned by FromByte for bytes that name no instruction.
var ErrUnknown = errors.New("unknown opcode")

const (
	// Object and array construction.
	NewObjectWithBuffer     Opcode = 0
	NewObjectWithBufferLong Opcode = 1
	NewObject               Opcode = 2
	NewObjectWithParent     Opcode = 3
	NewArrayWithBuffer      Opcode = 4
	NewArrayWithBufferLong  Opcode = 5
	NewArray                Opcode = 6

	// Register copies.
	Mov     Opcode = 7
	MovLong Opcode = 8

	// Unary operators: dst = op src.
	Negate Opcode = 9
	Not    Opcode = 10
	BitNot Opcode = 11
	TypeOf Opcode = 12

	// Binary operators: dst = lhs op rhs. The N forms assume numbers.
	Eq         Opcode = 13
	StrictEq   Opcode = 14
	Neq        Opcode = 15
	StrictNeq  Opcode = 16
	Less       Opcode = 17
	LessEq     Opcode = 18
	Greater    Opcode = 19
	GreaterEq  Opcode = 20
	Add        Opcode = 21
	AddN       Opcode = 22
	Mul        Opcode = 23
	MulN       Opcode = 24
	Div        Opcode = 25
	DivN       Opcode = 26
	Mod        Opcode = 27
	Sub        Opcode = 28
	SubN       Opcode = 29
	LShift     Opcode = 30
	RShift     Opcode = 31
	URShift    Opcode = 32
	BitAnd     Opcode = 33
	BitXor     Opcode = 34
	BitOr      Opcode = 35
	InstanceOf Opcode = 36
	IsIn       Opcode = 37

	// Environments (closure scopes).
	GetEnvironment        Opcode = 38
	StoreToEnvironment    Opcode = 39
	StoreToEnvironmentL   Opcode = 40
	StoreNPToEnvironment  Opcode = 41
	StoreNPToEnvironmentL Opcode = 42
	LoadFromEnvironment   Opcode = 43
	LoadFromEnvironmentL  Opcode = 44

	GetGlobalObject   Opcode = 45
	GetNewTarget      Opcode = 46
	CreateEnvironment Opcode = 47
	DeclareGlobalVar  Opcode = 48

	// Property access by string table id.
	GetByIdShort        Opcode = 49
	GetById             Opcode = 50
	GetByIdLong         Opcode = 51
	TryGetById          Opcode = 52
	TryGetByIdLong      Opcode = 53
	PutById             Opcode = 54
	PutByIdLong         Opcode = 55
	TryPutById          Opcode = 56
	TryPutByIdLong      Opcode = 57
	PutNewOwnByIdShort  Opcode = 58
	PutNewOwnById       Opcode = 59
	PutNewOwnByIdLong   Opcode = 60
	PutNewOwnNEById     Opcode = 61
	PutNewOwnNEByIdLong Opcode = 62

	// Property access by index or by value.
	PutOwnByIndex           Opcode = 63
	PutOwnByIndexL          Opcode = 64
	PutOwnByVal             Opcode = 65
	DelById                 Opcode = 66
	DelByIdLong             Opcode = 67
	GetByVal                Opcode = 68
	PutByVal                Opcode = 69
	DelByVal                Opcode = 70
	PutOwnGetterSetterByVal Opcode = 71

	// for..in support.
	GetPNameList Opcode = 72
	GetNextPName Opcode = 73

	// Calls.
	Call                Opcode = 74
	Construct           Opcode = 75
	Call1               Opcode = 76
	CallDirect          Opcode = 77
	Call2               Opcode = 78
	Call3               Opcode = 79
	Call4               Opcode = 80
	CallLong            Opcode = 81
	ConstructLong       Opcode = 82
	CallDirectLongIndex Opcode = 83
	CallBuiltin         Opcode = 84

	Ret                  Opcode = 85
	Catch                Opcode = 86
	DirectEval           Opcode = 87
	Throw                Opcode = 88
	ThrowIfUndefinedInst Opcode = 89
	Debugger             Opcode = 90
	AsyncBreakCheck      Opcode = 91
	ProfilePoint         Opcode = 92
	Unreachable          Opcode = 93

	// Closures and frames.
	CreateClosure                   Opcode = 94
	CreateClosureLongIndex          Opcode = 95
	CreateGeneratorClosure          Opcode = 96
	CreateGeneratorClosureLongIndex Opcode = 97
	CreateThis                      Opcode = 98
	SelectObject                    Opcode = 99
	LoadParam                       Opcode = 100
	LoadParamLong                   Opcode = 101

	// Constants.
	LoadConstUInt8           Opcode = 102
	LoadConstInt             Opcode = 103
	LoadConstDouble          Opcode = 104
	LoadConstString          Opcode = 105
	LoadConstStringLongIndex Opcode = 106
	LoadConstUndefined       Opcode = 107
	LoadConstNull            Opcode = 108
	LoadConstTrue            Opcode = 109
	LoadConstFalse           Opcode = 110
	LoadConstZero            Opcode = 111

	CoerceThisNS          Opcode = 112
	LoadThisNS            Opcode = 113
	ToNumber              Opcode = 114
	ToInt32               Opcode = 115
	AddEmptyString        Opcode = 116
	GetArgumentsPropByVal Opcode = 117
	GetArgumentsLength    Opcode = 118
	CreateRegExp          Opcode = 119
	SwitchImm             Opcode = 120

	// Generators and iterators.
	StartGenerator           Opcode = 121
	ResumeGenerator          Opcode = 122
	CompleteGenerator        Opcode = 123
	CreateGenerator          Opcode = 124
	CreateGeneratorLongIndex Opcode = 125
	IteratorBegin            Opcode = 126
	IteratorNext             Opcode = 127
	IteratorClose            Opcode = 128

	// Jumps. Short forms carry a signed 8-bit offset, Long forms 32 bits.
	Jmp                   Opcode = 129
	JmpLong               Opcode = 130
	JmpTrue               Opcode = 131
	JmpTrueLong           Opcode = 132
	JmpFalse              Opcode = 133
	JmpFalseLong          Opcode = 134
	JmpUndefined          Opcode = 135
	JmpUndefinedLong      Opcode = 136
	SaveGenerator         Opcode = 137
	SaveGeneratorLong     Opcode = 138
	JLess                 Opcode = 139
	JLessLong             Opcode = 140
	JNotLess              Opcode = 141
	JNotLessLong          Opcode = 142
	JLessN                Opcode = 143
	JLessNLong            Opcode = 144
	JNotLessN             Opcode = 145
	JNotLessNLong         Opcode = 146
	JLessEqual            Opcode = 147
	JLessEqualLong        Opcode = 148
	JNotLessEqual         Opcode = 149
	JNotLessEqualLong     Opcode = 150
	JLessEqualN           Opcode = 151
	JLessEqualNLong       Opcode = 152
	JNotLessEqualN        Opcode = 153
	JNotLessEqualNLong    Opcode = 154
	JGreater              Opcode = 155
	JGreaterLong          Opcode = 156
	JNotGreater           Opcode = 157
	JNotGreaterLong       Opcode = 158
	JGreaterN             Opcode = 159
	JGreaterNLong         Opcode = 160
	JNotGreaterN          Opcode = 161
	JNotGreaterNLong      Opcode = 162
	JGreaterEqual         Opcode = 163
	JGreaterEqualLong     Opcode = 164
	JNotGreaterEqual      Opcode = 165
	JNotGreaterEqualLong  Opcode = 166
	JGreaterEqualN        Opcode = 167
	JGreaterEqualNLong    Opcode = 168
	JNotGreaterEqualN     Opcode = 169
	JNotGreaterEqualNLong Opcode = 170
	JEqual                Opcode = 171
	JEqualLong            Opcode = 172
	JNotEqual             Opcode = 173
	JNotEqualLong         Opcode = 174
	JStrictEqual          Opcode = 175
	JStrictEqualLong      Opcode = 176
	JStrictNotEqual       Opcode = 177
	JStrictNotEqualLong   Opcode = 178
)

// Count is the number of defined opcodes. Valid opcodes are 0..Count-1.
const Count = 179

// FromByte converts a raw byte into an Opcode, rejecting bytes outside the
// instruction set.
func FromByte(b byte) (Opcode, error) {
	if int(b) >= Count {
		return 0, fmt.Errorf("%w: %d (0x%02x)", ErrUnknown, b, b)
	}
	return Opcode(b), nil
}

// Valid reports whether op names a defined instruction.
func (op Opcode) Valid() bool {
	return int(op) < Count
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
	return infos[op].Name
}
