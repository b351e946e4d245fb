// Package builtin enumerates the runtime builtins reachable through the
// CallBuiltin instruction.
package builtin

import (
	"errors"
	"fmt"
)

// Builtin is the index operand of CallBuiltin.
type Builtin uint8

// ErrUnknown is returned by FromByte for indices past the builtin table.
var ErrUnknown = errors.New("unknown builtin")

const (
	ArrayIsArray Builtin = iota
	ArrayBufferIsView
	DateUTC
	DateNow
	DateParse
	JSONParse
	JSONStringify
	MathAbs
	MathAcos
	MathAsin
	MathAtan
	MathAtan2
	MathCeil
	MathCos
	MathExp
	MathFloor
	MathHypot
	MathImul
	MathLog
	MathMax
	MathMin
	MathPow
	MathRandom
	MathRound
	MathSin
	MathSqrt
	MathTan
	MathTrunc
	ObjectCreate
	ObjectDefineProperties
	ObjectDefineProperty
	ObjectFreeze
	ObjectGetOwnPropertyDescriptor
	ObjectGetOwnPropertyNames
	ObjectGetPrototypeOf
	ObjectIsExtensible
	ObjectIsFrozen
	ObjectKeys
	ObjectSeal
	StringFromCharCode
	HermesBuiltinSilentSetPrototypeOf
	HermesBuiltinRequireFast
	HermesBuiltinGetTemplateObject
	HermesBuiltinEnsureObject
	HermesBuiltinThrowTypeError
	HermesBuiltinGeneratorSetDelegated
	HermesBuiltinCopyDataProperties
	HermesBuiltinCopyRestArgs
	HermesBuiltinArraySpread
	HermesBuiltinApply
	HermesBuiltinExportAll
	HermesBuiltinExponentiationOperator
)

// Count is the number of known builtins.
const Count = 52

var names = [Count]string{
	"Array.isArray",
	"ArrayBuffer.isView",
	"Date.UTC",
	"Date.now",
	"Date.parse",
	"JSON.parse",
	"JSON.stringify",
	"Math.abs",
	"Math.acos",
	"Math.asin",
	"Math.atan",
	"Math.atan2",
	"Math.ceil",
	"Math.cos",
	"Math.exp",
	"Math.floor",
	"Math.hypot",
	"Math.imul",
	"Math.log",
	"Math.max",
	"Math.min",
	"Math.pow",
	"Math.random",
	"Math.round",
	"Math.sin",
	"Math.sqrt",
	"Math.tan",
	"Math.trunc",
	"Object.create",
	"Object.defineProperties",
	"Object.defineProperty",
	"Object.freeze",
	"Object.getOwnPropertyDescriptor",
	"Object.getOwnPropertyNames",
	"Object.getPrototypeOf",
	"Object.isExtensible",
	"Object.isFrozen",
	"Object.keys",
	"Object.seal",
	"String.fromCharCode",
	"HermesBuiltin.silentSetPrototypeOf",
	"HermesBuiltin.requireFast",
	"HermesBuiltin.getTemplateObject",
	"HermesBuiltin.ensureObject",
	"HermesBuiltin.throwTypeError",
	"HermesBuiltin.generatorSetDelegated",
	"HermesBuiltin.copyDataProperties",
	"HermesBuiltin.copyRestArgs",
	"HermesBuiltin.arraySpread",
	"HermesBuiltin.apply",
	"HermesBuiltin.exportAll",
	"HermesBuiltin.exponentiationOperator",
}

// FromByte converts a CallBuiltin index into a Builtin.
func FromByte(b byte) (Builtin, error) {
	if int(b) >= Count {
		return 0, fmt.Errorf("%w: %d", ErrUnknown, b)
	}
	return Builtin(b), nil
}

// Name returns the dotted JavaScript name, e.g. "Math.max".
func (b Builtin) Name() string {
	if int(b) >= Count {
		return ""
	}
	return names[b]
}

func (b Builtin) String() string {
	if int(b) >= Count {
		return fmt.Sprintf("Builtin(%d)", uint8(b))
	}
	return names[b]
}

// Lookup finds a builtin by its dotted name.
func Lookup(name string) (Builtin, bool) {
	for i, n := range names {
		if n == name {
			return Builtin(i), true
		}
	}
	return 0, false
}
