package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dexter3k/hbcdecomp/builtin"
)

// Expression is a value-producing form. The set of implementations is
// closed; switch on the concrete type.
type Expression interface {
	fmt.Stringer
	expression()
}

// NumberKind records which constant-load encoding produced a Number.
type NumberKind uint8

const (
	NumberUInt8 NumberKind = iota
	NumberInt32
	NumberDouble
)

// Number is a numeric literal. UInt8 and Int32 values are exact.
type Number struct {
	Kind  NumberKind
	Value float64
}

func (n Number) String() string {
	if n.Kind == NumberDouble {
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	}
	return strconv.FormatInt(int64(n.Value), 10)
}

// String is a string literal referenced by string table index.
type String struct {
	Index Index
}

func (s String) String() string                { return s.format(stringRefs{}) }
func (s String) format(refs stringRefs) string { return refs.ref(s.Index.Value) }

type Boolean struct {
	Value bool
}

func (b Boolean) String() string { return strconv.FormatBool(b.Value) }

type Null struct{}

func (Null) String() string { return "null" }

type Undefined struct{}

func (Undefined) String() string { return "undefined" }

// RegExp is a regular expression literal: pattern and flags are string
// indices, Bytecode indexes the regexp table.
type RegExp struct {
	Pattern  uint32
	Flags    uint32
	Bytecode uint32
}

func (r RegExp) String() string { return r.format(stringRefs{}) }

func (r RegExp) format(refs stringRefs) string {
	return fmt.Sprintf("regexp(pattern=%s, flags=%s, code=%d)", refs.ref(r.Pattern), refs.ref(r.Flags), r.Bytecode)
}

// NewObject creates an object, optionally with a prototype parent or
// initialized from the object key/value literal buffers.
type NewObject struct {
	SizeHint       uint16
	StaticElements uint16
	Keys           *Index
	Values         *Index
	Parent         *Register
}

func (o NewObject) String() string {
	switch {
	case o.Parent != nil:
		return fmt.Sprintf("new_object_with_parent(%s)", o.Parent)
	case o.Keys != nil && o.Values != nil:
		return fmt.Sprintf("new_object_with_buffer(size_hint=%d, elements=%d, keys=%d, vals=%d)",
			o.SizeHint, o.StaticElements, o.Keys.Value, o.Values.Value)
	}
	return "{}"
}

// NewArray creates an array of a given size, or from the array literal
// buffer when Buffer is set.
type NewArray struct {
	SizeHint       uint16
	StaticElements uint16
	Buffer         *Index
}

func (a NewArray) String() string {
	if a.Buffer != nil {
		return fmt.Sprintf("new_array_with_buffer(size_hint=%d, elements=%d, index=%d)",
			a.SizeHint, a.StaticElements, a.Buffer.Value)
	}
	return fmt.Sprintf("new Array(%d)", a.SizeHint)
}

// LoadEnv reads a slot of a closure environment.
type LoadEnv struct {
	Env  Register
	Slot Index
}

func (l LoadEnv) String() string {
	return fmt.Sprintf("environment(%s)[%d]", l.Env, l.Slot.Value)
}

// StoreEnv writes a slot of a closure environment. NonPointer marks stores
// of values known not to be heap pointers.
type StoreEnv struct {
	Env        Register
	Slot       Index
	Value      Register
	NonPointer bool
}

func (s StoreEnv) String() string {
	out := fmt.Sprintf("environment(%s)[%d] = %s", s.Env, s.Slot.Value, s.Value)
	if s.NonPointer {
		out += " // non-pointer"
	}
	return out
}

// GetEnvironment walks Depth levels up the environment chain.
type GetEnvironment struct {
	Depth uint8
}

func (g GetEnvironment) String() string { return fmt.Sprintf("environment(%d)", g.Depth) }

type CreateEnvironment struct{}

func (CreateEnvironment) String() string { return "create_environment()" }

// PropertyKind is the operation a Property expression performs.
type PropertyKind uint8

const (
	PropertyGet PropertyKind = iota
	PropertySet
	PropertyDelete
	PropertyDefine
)

// KeyKind says how a property key is encoded.
type KeyKind uint8

const (
	KeyString KeyKind = iota
	KeyIndex
	KeyRegister
)

// Key is a property key: a string table index, an array index immediate
// or a register holding the key.
type Key struct {
	Kind     KeyKind
	Index    Index
	Register Register
}

func StringKey(i Index) Key      { return Key{Kind: KeyString, Index: i} }
func IndexKey(i Index) Key       { return Key{Kind: KeyIndex, Index: i} }
func RegisterKey(r Register) Key { return Key{Kind: KeyRegister, Register: r} }

func (k Key) String() string { return k.format(stringRefs{}) }

func (k Key) format(refs stringRefs) string {
	switch k.Kind {
	case KeyString:
		return refs.ref(k.Index.Value)
	case KeyIndex:
		return strconv.FormatUint(uint64(k.Index.Value), 10)
	}
	return k.Register.String()
}

// Property is a property access on Object. Get and Delete carry only the
// object and key; Set adds Value; Define adds a getter/setter pair.
type Property struct {
	Kind       PropertyKind
	Object     Register
	Key        Key
	Value      Register
	Getter     Register
	Setter     Register
	Enumerable bool
	// Own marks definitions of own properties, as in object literals.
	Own bool
	// Try marks accesses that throw on unresolvable global names.
	Try   bool
	Cache uint8
}

func (p Property) String() string { return p.format(stringRefs{}) }

func (p Property) format(refs stringRefs) string {
	target := fmt.Sprintf("%s[%s]", p.Object, p.Key.format(refs))
	var notes []string
	if p.Cache != 0 {
		notes = append(notes, fmt.Sprintf("cache=%d", p.Cache))
	}
	if p.Try {
		notes = append(notes, "try")
	}
	var out string
	switch p.Kind {
	case PropertyGet:
		out = target
	case PropertyDelete:
		out = "delete " + target
	case PropertySet:
		out = fmt.Sprintf("%s = %s", target, p.Value)
		if p.Own {
			notes = append(notes, "own")
		}
		if p.Own && !p.Enumerable {
			notes = append(notes, "non-enumerable")
		}
	case PropertyDefine:
		out = fmt.Sprintf("define %s(get=%s, set=%s)", target, p.Getter, p.Setter)
		if p.Enumerable {
			notes = append(notes, "enumerable")
		}
	}
	if len(notes) > 0 {
		out += " // " + strings.Join(notes, ", ")
	}
	return out
}

type Unary struct {
	Op  UnaryOperator
	Arg Register
}

func (u Unary) String() string {
	if u.Op == TypeOf {
		return fmt.Sprintf("typeof %s", u.Arg)
	}
	return fmt.Sprintf("%s%s", u.Op, u.Arg)
}

// Binary is an infix operation. Numeric is set when the operands are known
// to be numbers.
type Binary struct {
	Op      BinaryOperator
	Left    Register
	Right   Register
	Numeric bool
}

func (b Binary) String() string {
	out := fmt.Sprintf("%s %s %s", b.Left, b.Op, b.Right)
	if b.Numeric {
		out += " // numeric"
	}
	return out
}

type Update struct {
	Op     UpdateOperator
	Arg    Register
	Prefix bool
}

func (u Update) String() string {
	if u.Prefix {
		return fmt.Sprintf("%s%s", u.Op, u.Arg)
	}
	return fmt.Sprintf("%s%s", u.Arg, u.Op)
}

// CallKind is the flavor of a FrameCall.
type CallKind uint8

const (
	CallNormal CallKind = iota
	CallConstruct
	CallDirect
	CallBuiltin
)

// FrameCall calls with arguments already laid out in the outgoing frame.
// Callee is set for normal and construct calls, Function for direct calls
// and Builtin for builtin calls.
type FrameCall struct {
	Kind     CallKind
	Callee   Register
	Function Index
	Builtin  builtin.Builtin
	ArgCount Index
}

func (c FrameCall) String() string {
	switch c.Kind {
	case CallConstruct:
		return fmt.Sprintf("construct(closure=%s, %d args)", c.Callee, c.ArgCount.Value)
	case CallDirect:
		return fmt.Sprintf("call_direct(function=%d, %d args)", c.Function.Value, c.ArgCount.Value)
	case CallBuiltin:
		return fmt.Sprintf("%s(%d args)", c.Builtin.Name(), c.ArgCount.Value)
	}
	return fmt.Sprintf("call(closure=%s, %d args)", c.Callee, c.ArgCount.Value)
}

// Call calls Callee with explicit argument registers; the first argument is
// the this value.
type Call struct {
	Callee Register
	Args   []Register
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(args, ", "))
}

type GlobalObject struct{}

func (GlobalObject) String() string { return "globalThis" }

type NewTarget struct{}

func (NewTarget) String() string { return "new.target" }

// ClosureKind distinguishes the closure-creating instructions.
type ClosureKind uint8

const (
	ClosureNormal ClosureKind = iota
	ClosureGenerator
	// ClosureGeneratorObject creates the generator object inside a
	// generator function's outer body.
	ClosureGeneratorObject
)

// Closure binds function Function to environment Env.
type Closure struct {
	Kind     ClosureKind
	Env      Register
	Function Index
}

func (c Closure) String() string {
	name := "closure"
	switch c.Kind {
	case ClosureGenerator:
		name = "generator_closure"
	case ClosureGeneratorObject:
		name = "generator"
	}
	return fmt.Sprintf("%s(%s, %d)", name, c.Env, c.Function.Value)
}

type CreateThis struct {
	Prototype   Register
	Constructor Register
}

func (c CreateThis) String() string {
	return fmt.Sprintf("Object.create(%s, {constructor: {value: %s}})", c.Prototype, c.Constructor)
}

// SelectObject picks the constructor result if it is an object, else this.
type SelectObject struct {
	This   Register
	Result Register
}

func (s SelectObject) String() string {
	return fmt.Sprintf("%s instanceof Object ? %s : %s", s.Result, s.Result, s.This)
}

// LoadParam reads parameter Index; parameter 0 is this.
type LoadParam struct {
	Index Index
}

func (l LoadParam) String() string {
	if l.Index.Value == 0 {
		return "this"
	}
	return fmt.Sprintf("a%d", l.Index.Value-1)
}

type LoadThis struct{}

func (LoadThis) String() string { return "this" }

type CoerceThis struct {
	Value Register
}

func (c CoerceThis) String() string { return fmt.Sprintf("coerce_to_object(%s)", c.Value) }

// ConvertKind names a value conversion.
type ConvertKind uint8

const (
	ToNumber ConvertKind = iota
	ToInt32
	ToString
)

type Convert struct {
	Kind  ConvertKind
	Value Register
}

func (c Convert) String() string {
	switch c.Kind {
	case ToInt32:
		return fmt.Sprintf("%s | 0", c.Value)
	case ToString:
		return fmt.Sprintf(`"" + %s`, c.Value)
	}
	return fmt.Sprintf("ToNumber(%s)", c.Value)
}

// ArgumentsProp reads arguments[Index] without materializing the
// arguments object unless Lazy already holds it.
type ArgumentsProp struct {
	Index Register
	Lazy  Register
}

func (a ArgumentsProp) String() string {
	return fmt.Sprintf("arguments[%s] // lazy=%s", a.Index, a.Lazy)
}

type ArgumentsLength struct {
	Lazy Register
}

func (a ArgumentsLength) String() string {
	return fmt.Sprintf("arguments.length // lazy=%s", a.Lazy)
}

// PropNameList starts a for-in enumeration of Object.
type PropNameList struct {
	Object   Register
	Iterator Register
	Size     Register
}

func (p PropNameList) String() string {
	return fmt.Sprintf("get_prop_name_list(obj=%s, it=%s, size=%s)", p.Object, p.Iterator, p.Size)
}

type NextPropName struct {
	List     Register
	Object   Register
	Iterator Register
	Size     Register
}

func (n NextPropName) String() string {
	return fmt.Sprintf("get_next_prop_name(list=%s, obj=%s, it=%s, size=%s)", n.List, n.Object, n.Iterator, n.Size)
}

type DirectEval struct {
	Value Register
}

func (d DirectEval) String() string { return fmt.Sprintf("eval(%s)", d.Value) }

// Catch yields the pending exception at the start of a handler.
type Catch struct{}

func (Catch) String() string { return "catch()" }

type IteratorBegin struct {
	Source Register
}

func (i IteratorBegin) String() string { return fmt.Sprintf("iterator(%s)", i.Source) }

type IteratorNext struct {
	Iterator Register
	Source   Register
}

func (i IteratorNext) String() string {
	return fmt.Sprintf("next(%s, %s)", i.Iterator, i.Source)
}

// ResumeGenerator yields the value sent into a generator; IsReturn receives
// whether the generator was resumed by return().
type ResumeGenerator struct {
	IsReturn Register
}

func (r ResumeGenerator) String() string {
	return fmt.Sprintf("resume_generator(is_return=%s)", r.IsReturn)
}

func (Number) expression()            {}
func (String) expression()            {}
func (Boolean) expression()           {}
func (Null) expression()              {}
func (Undefined) expression()         {}
func (RegExp) expression()            {}
func (NewObject) expression()         {}
func (NewArray) expression()          {}
func (LoadEnv) expression()           {}
func (StoreEnv) expression()          {}
func (GetEnvironment) expression()    {}
func (CreateEnvironment) expression() {}
func (Property) expression()          {}
func (Unary) expression()             {}
func (Binary) expression()            {}
func (Update) expression()            {}
func (FrameCall) expression()         {}
func (Call) expression()              {}
func (GlobalObject) expression()      {}
func (NewTarget) expression()         {}
func (Closure) expression()           {}
func (CreateThis) expression()        {}
func (SelectObject) expression()      {}
func (LoadParam) expression()         {}
func (LoadThis) expression()          {}
func (CoerceThis) expression()        {}
func (Convert) expression()           {}
func (ArgumentsProp) expression()     {}
func (ArgumentsLength) expression()   {}
func (PropNameList) expression()      {}
func (NextPropName) expression()      {}
func (DirectEval) expression()        {}
func (Catch) expression()             {}
func (IteratorBegin) expression()     {}
func (IteratorNext) expression()      {}
func (ResumeGenerator) expression()   {}
