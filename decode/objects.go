package decode

import (
	"github.com/dexter3k/hbcdecomp/ir"
	"github.com/dexter3k/hbcdecomp/opcode"
)

func effect(e ir.Expression) ir.Statement { return ir.EffectStmt{Expr: e} }

func decodeNew(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	dst := c.reg8()
	switch op {
	case opcode.NewObject:
		return assign(dst, ir.NewObject{}), nil
	case opcode.NewObjectWithParent:
		parent := c.reg8()
		return assign(dst, ir.NewObject{Parent: &parent}), nil
	case opcode.NewObjectWithBuffer, opcode.NewObjectWithBufferLong:
		long := op == opcode.NewObjectWithBufferLong
		hint, static := c.u16(), c.u16()
		keys := c.index(long)
		vals := c.index(long)
		return assign(dst, ir.NewObject{SizeHint: hint, StaticElements: static, Keys: &keys, Values: &vals}), nil
	case opcode.NewArray:
		return assign(dst, ir.NewArray{SizeHint: c.u16()}), nil
	case opcode.NewArrayWithBuffer, opcode.NewArrayWithBufferLong:
		hint, static := c.u16(), c.u16()
		buf := c.index(op == opcode.NewArrayWithBufferLong)
		return assign(dst, ir.NewArray{SizeHint: hint, StaticElements: static, Buffer: &buf}), nil
	}
	return nil, mismatch(op, "object construction")
}

func decodeProperty(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	switch op {
	case opcode.GetByIdShort, opcode.GetById, opcode.GetByIdLong,
		opcode.TryGetById, opcode.TryGetByIdLong:
		dst, obj, cache := c.reg8(), c.reg8(), c.u8()
		var name ir.Index
		switch op {
		case opcode.GetByIdShort:
			name = c.byteIndex()
		case opcode.GetByIdLong, opcode.TryGetByIdLong:
			name = c.dwordIndex()
		default:
			name = c.wordIndex()
		}
		try := op == opcode.TryGetById || op == opcode.TryGetByIdLong
		return assign(dst, ir.Property{Kind: ir.PropertyGet, Object: obj, Key: ir.StringKey(name), Try: try, Cache: cache}), nil

	case opcode.PutById, opcode.PutByIdLong, opcode.TryPutById, opcode.TryPutByIdLong:
		obj, val, cache := c.reg8(), c.reg8(), c.u8()
		name := c.index(op == opcode.PutByIdLong || op == opcode.TryPutByIdLong)
		try := op == opcode.TryPutById || op == opcode.TryPutByIdLong
		return effect(ir.Property{
			Kind: ir.PropertySet, Object: obj, Key: ir.StringKey(name), Value: val,
			Enumerable: true, Try: try, Cache: cache,
		}), nil

	case opcode.PutNewOwnByIdShort, opcode.PutNewOwnById, opcode.PutNewOwnByIdLong,
		opcode.PutNewOwnNEById, opcode.PutNewOwnNEByIdLong:
		obj, val := c.reg8(), c.reg8()
		var name ir.Index
		switch op {
		case opcode.PutNewOwnByIdShort:
			name = c.byteIndex()
		case opcode.PutNewOwnByIdLong, opcode.PutNewOwnNEByIdLong:
			name = c.dwordIndex()
		default:
			name = c.wordIndex()
		}
		enumerable := op != opcode.PutNewOwnNEById && op != opcode.PutNewOwnNEByIdLong
		return effect(ir.Property{
			Kind: ir.PropertySet, Object: obj, Key: ir.StringKey(name), Value: val,
			Enumerable: enumerable, Own: true,
		}), nil

	case opcode.PutOwnByIndex, opcode.PutOwnByIndexL:
		obj, val := c.reg8(), c.reg8()
		idx := c.byteIndex
		if op == opcode.PutOwnByIndexL {
			idx = c.dwordIndex
		}
		return effect(ir.Property{
			Kind: ir.PropertySet, Object: obj, Key: ir.IndexKey(idx()), Value: val,
			Enumerable: true, Own: true,
		}), nil

	case opcode.PutOwnByVal:
		obj, val, key, enumerable := c.reg8(), c.reg8(), c.reg8(), c.u8()
		return effect(ir.Property{
			Kind: ir.PropertySet, Object: obj, Key: ir.RegisterKey(key), Value: val,
			Enumerable: enumerable != 0, Own: true,
		}), nil

	case opcode.DelById, opcode.DelByIdLong:
		dst, obj := c.reg8(), c.reg8()
		name := c.index(op == opcode.DelByIdLong)
		return assign(dst, ir.Property{Kind: ir.PropertyDelete, Object: obj, Key: ir.StringKey(name)}), nil

	case opcode.GetByVal:
		dst, obj, key := c.reg8(), c.reg8(), c.reg8()
		return assign(dst, ir.Property{Kind: ir.PropertyGet, Object: obj, Key: ir.RegisterKey(key)}), nil

	case opcode.DelByVal:
		dst, obj, key := c.reg8(), c.reg8(), c.reg8()
		return assign(dst, ir.Property{Kind: ir.PropertyDelete, Object: obj, Key: ir.RegisterKey(key)}), nil

	case opcode.PutByVal:
		obj, key, val := c.reg8(), c.reg8(), c.reg8()
		return effect(ir.Property{
			Kind: ir.PropertySet, Object: obj, Key: ir.RegisterKey(key), Value: val, Enumerable: true,
		}), nil

	case opcode.PutOwnGetterSetterByVal:
		obj, key, getter, setter, enumerable := c.reg8(), c.reg8(), c.reg8(), c.reg8(), c.u8()
		return effect(ir.Property{
			Kind: ir.PropertyDefine, Object: obj, Key: ir.RegisterKey(key),
			Getter: getter, Setter: setter, Enumerable: enumerable != 0, Own: true,
		}), nil
	}
	return nil, mismatch(op, "property")
}

func decodeEnvironment(op opcode.Opcode, c *cursor) (ir.Statement, error) {
	switch op {
	case opcode.GetEnvironment:
		dst := c.reg8()
		return assign(dst, ir.GetEnvironment{Depth: c.u8()}), nil
	case opcode.CreateEnvironment:
		return assign(c.reg8(), ir.CreateEnvironment{}), nil
	case opcode.StoreToEnvironment, opcode.StoreToEnvironmentL,
		opcode.StoreNPToEnvironment, opcode.StoreNPToEnvironmentL:
		env := c.reg8()
		var slot ir.Index
		if op == opcode.StoreToEnvironmentL || op == opcode.StoreNPToEnvironmentL {
			slot = c.wordIndex()
		} else {
			slot = c.byteIndex()
		}
		val := c.reg8()
		np := op == opcode.StoreNPToEnvironment || op == opcode.StoreNPToEnvironmentL
		return effect(ir.StoreEnv{Env: env, Slot: slot, Value: val, NonPointer: np}), nil
	case opcode.LoadFromEnvironment, opcode.LoadFromEnvironmentL:
		dst, env := c.reg8(), c.reg8()
		var slot ir.Index
		if op == opcode.LoadFromEnvironmentL {
			slot = c.wordIndex()
		} else {
			slot = c.byteIndex()
		}
		return assign(dst, ir.LoadEnv{Env: env, Slot: slot}), nil
	}
	return nil, mismatch(op, "environment")
}
