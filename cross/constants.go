// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// NamedConstant reports whether a constant is declared as a global rather
// than written inline: specialization constants, constant operations, and
// array or struct composites.
func (e *Emitter) NamedConstant(id ir.ID) bool {
	c := e.Module.MustConstant(id)
	if c.Spec || c.Kind == ir.ConstOp {
		return true
	}
	if _, ok := e.Module.BuiltIn(id); ok {
		return true
	}
	switch c.Kind {
	case ir.ConstComposite, ir.ConstNull:
		return e.Module.IsArray(c.Type) || e.Module.IsStruct(c.Type)
	}
	return false
}

func (e *Emitter) constantExpr(id ir.ID) *Expr {
	c := e.Module.MustConstant(id)
	var text string
	if e.NamedConstant(id) {
		text = e.Name(id)
	} else {
		text = e.InlineConstant(c)
	}
	return &Expr{Text: text, Type: c.Type, Atomic: isAtomic(text), Storage: spirv.StorageClassPrivate}
}

// InlineConstant renders a scalar, vector or matrix constant as an
// expression.
func (e *Emitter) InlineConstant(c *ir.Constant) string {
	switch c.Kind {
	case ir.ConstNull:
		return e.Dialect.Zero(e, c.Type)
	case ir.ConstComposite:
		args := make([]string, len(c.Constituents))
		for i, part := range c.Constituents {
			args[i] = e.Text(part)
		}
		text, _ := e.Dialect.Construct(e, c.Type, args)
		return text
	}
	return e.Dialect.ScalarLiteral(e, c.Type, c)
}

// ConstantInitializer renders the value of a named constant. Arrays and
// structs use brace lists.
func (e *Emitter) ConstantInitializer(id ir.ID) string {
	c := e.Module.MustConstant(id)
	switch {
	case c.Kind == ir.ConstOp:
		return e.ConstantOp(c)
	case c.Kind == ir.ConstNull:
		return e.ZeroInitializer(c.Type)
	case c.Kind == ir.ConstComposite && (e.Module.IsArray(c.Type) || e.Module.IsStruct(c.Type)):
		parts := make([]string, len(c.Constituents))
		for i, part := range c.Constituents {
			pc := e.Module.MustConstant(part)
			if e.NamedConstant(part) && (pc.Spec || pc.Kind == ir.ConstOp) {
				parts[i] = e.Name(part)
			} else if e.NamedConstant(part) {
				parts[i] = e.ConstantInitializer(part)
			} else {
				parts[i] = e.InlineConstant(pc)
			}
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return e.InlineConstant(c)
}

// ZeroInitializer renders the zero value of t, with brace lists for
// arrays and structs.
func (e *Emitter) ZeroInitializer(t ir.ID) string {
	m := e.Module
	switch inner := m.Inner(t).(type) {
	case ir.ArrayType:
		n, _ := m.ArrayLength(t)
		elem := e.ZeroInitializer(inner.Element)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = elem
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case ir.StructType:
		parts := make([]string, len(inner.Members))
		for i, mt := range inner.Members {
			parts[i] = e.ZeroInitializer(mt)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return e.Dialect.Zero(e, t)
}

// SpecScalars returns the scalar specialization constants in declaration
// order.
func (e *Emitter) SpecScalars() []ir.ID {
	var out []ir.ID
	for _, id := range e.Module.GlobalOrder {
		if e.Module.KindOf(id) != ir.KindConstant {
			continue
		}
		c := e.Module.MustConstant(id)
		if c.Spec && c.Kind == ir.ConstScalar {
			out = append(out, id)
		}
	}
	return out
}

// CompositeConstants returns the remaining named constants in declaration
// order: spec composites, constant operations and array or struct
// literals.
func (e *Emitter) CompositeConstants() []ir.ID {
	var out []ir.ID
	for _, id := range e.Module.GlobalOrder {
		if e.Module.KindOf(id) != ir.KindConstant || !e.NamedConstant(id) {
			continue
		}
		c := e.Module.MustConstant(id)
		if c.Spec && c.Kind == ir.ConstScalar {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SpecDefault returns the default value of a scalar specialization
// constant.
func (e *Emitter) SpecDefault(id ir.ID) string {
	c := e.Module.MustConstant(id)
	return e.Dialect.ScalarLiteral(e, c.Type, c)
}

// SpecID returns the SpecId of a specialization constant.
func (e *Emitter) SpecID(id ir.ID) (uint32, bool) {
	return e.Module.Decoration(id, spirv.DecorationSpecID)
}

var specBinary = map[spirv.Op]string{
	spirv.OpIAdd: "+", spirv.OpISub: "-", spirv.OpIMul: "*",
	spirv.OpUDiv: "/", spirv.OpSDiv: "/", spirv.OpUMod: "%", spirv.OpSRem: "%",
	spirv.OpShiftLeftLogical: "<<", spirv.OpShiftRightLogical: ">>", spirv.OpShiftRightArithmetic: ">>",
	spirv.OpBitwiseAnd: "&", spirv.OpBitwiseOr: "|", spirv.OpBitwiseXor: "^",
	spirv.OpLogicalAnd: "&&", spirv.OpLogicalOr: "||",
	spirv.OpLogicalEqual: "==", spirv.OpLogicalNotEqual: "!=",
	spirv.OpIEqual: "==", spirv.OpINotEqual: "!=",
	spirv.OpULessThan: "<", spirv.OpSLessThan: "<", spirv.OpUGreaterThan: ">", spirv.OpSGreaterThan: ">",
	spirv.OpULessThanEqual: "<=", spirv.OpSLessThanEqual: "<=",
	spirv.OpUGreaterThanEqual: ">=", spirv.OpSGreaterThanEqual: ">=",
}

// ConstantOp renders an OpSpecConstantOp.
func (e *Emitter) ConstantOp(c *ir.Constant) string {
	arg := func(i int) string { return e.Text(ir.ID(c.Operands[i])) }
	if op, ok := specBinary[c.Op]; ok {
		return Binary(op, arg(0), arg(1))
	}
	switch c.Op {
	case spirv.OpSNegate:
		return Unary("-", arg(0))
	case spirv.OpNot:
		return Unary("~", arg(0))
	case spirv.OpLogicalNot:
		return Unary("!", arg(0))
	case spirv.OpSelect:
		return e.Dialect.Select(e, c.Type, arg(0), arg(1), arg(2))
	case spirv.OpSConvert, spirv.OpUConvert, spirv.OpFConvert:
		return e.Dialect.Cast(e, c.Type, arg(0))
	case spirv.OpQuantizeToF16:
		return e.Dialect.Cast(e, c.Type, arg(0))
	case spirv.OpCompositeExtract:
		text := arg(0)
		t := e.TypeOf(ir.ID(c.Operands[0]))
		for _, lit := range c.Operands[1:] {
			text, t = e.extractText(text, t, lit)
		}
		return text
	case spirv.OpVectorShuffle:
		return e.shuffleText(c.Type, ir.ID(c.Operands[0]), ir.ID(c.Operands[1]), c.Operands[2:])
	}
	ir.RaiseAt(ir.ErrUnsupportedOpcode, c.ID, c.Op, "specialization constant operation")
	return ""
}

// FloatLiteral formats a float with a mandatory fractional part. Non-finite
// values become constant divisions.
func FloatLiteral(v float64, bits int, suffix string) string {
	switch {
	case math.IsInf(v, 1):
		return "(1.0" + suffix + " / 0.0" + suffix + ")"
	case math.IsInf(v, -1):
		return "(-1.0" + suffix + " / 0.0" + suffix + ")"
	case math.IsNaN(v):
		return "(0.0" + suffix + " / 0.0" + suffix + ")"
	}
	abs := math.Abs(v)
	var s string
	if abs != 0 && (abs >= 1e16 || abs < 1e-6) {
		s = strconv.FormatFloat(v, 'e', -1, bits)
		mant, exp, _ := strings.Cut(s, "e")
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		s = mant + "e" + exp
	} else {
		s = strconv.FormatFloat(v, 'f', -1, bits)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
	}
	return s + suffix
}

// ScalarValue returns the literal of a scalar constant. Floats carry
// floatSuffix; integer suffixes are left to the caller.
func ScalarValue(m *ir.Module, c *ir.Constant, floatSuffix string) (text string, kind ir.ScalarKind) {
	s := m.ScalarOf(c.Type)
	switch s.Kind {
	case ir.ScalarBool:
		if c.Bool() {
			return "true", s.Kind
		}
		return "false", s.Kind
	case ir.ScalarSint:
		if s.Width == 64 {
			return strconv.FormatInt(int64(c.U64()), 10), s.Kind
		}
		return strconv.FormatInt(int64(c.I32()), 10), s.Kind
	case ir.ScalarUint:
		if s.Width == 64 {
			return strconv.FormatUint(c.U64(), 10), s.Kind
		}
		return strconv.FormatUint(uint64(c.U32()), 10), s.Kind
	case ir.ScalarFloat:
		switch s.Width {
		case 64:
			return FloatLiteral(c.F64(), 64, floatSuffix), s.Kind
		case 16:
			return FloatLiteral(float64(halfToFloat(uint16(c.U32()))), 32, floatSuffix), s.Kind
		}
		return FloatLiteral(float64(c.F32()), 32, floatSuffix), s.Kind
	}
	return "0", s.Kind
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff
	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		v := float32(frac) / 1024 / 16384
		if sign != 0 {
			return -v
		}
		return v
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
}
