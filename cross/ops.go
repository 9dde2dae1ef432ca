// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// emitInstruction lowers one instruction of a block.
func (e *Emitter) emitInstruction(inst *ir.Instruction) {
	e.memoryRead = false
	if e.Dialect.Instruction(e, inst) {
		return
	}
	m := e.Module
	switch op := inst.Op; op {
	case spirv.OpAccessChain, spirv.OpInBoundsAccessChain, spirv.OpPtrAccessChain, spirv.OpInBoundsPtrAccessChain:
		e.accessChain(inst)
	case spirv.OpLoad:
		e.load(inst)
	case spirv.OpStore:
		e.store(inst)
	case spirv.OpCopyMemory:
		e.copyMemory(inst)
	case spirv.OpCopyObject, spirv.OpCopyLogical:
		e.copyObject(inst)

	case spirv.OpSNegate, spirv.OpFNegate:
		e.Bind(inst, Unary("-", e.Text(inst.Arg(0))))
	case spirv.OpNot:
		e.Bind(inst, Unary("~", e.Text(inst.Arg(0))))
	case spirv.OpLogicalNot:
		e.Bind(inst, Unary("!", e.Text(inst.Arg(0))))
	case spirv.OpFAdd, spirv.OpFSub, spirv.OpFMul, spirv.OpFDiv,
		spirv.OpVectorTimesScalar, spirv.OpMatrixTimesScalar:
		e.Bind(inst, Binary(floatOps[op], e.Text(inst.Arg(0)), e.Text(inst.Arg(1))))
	case spirv.OpFRem:
		e.Bind(inst, Call(e.Dialect.Intrinsic("fmod"), e.Text(inst.Arg(0)), e.Text(inst.Arg(1))))
	case spirv.OpFMod:
		e.Bind(inst, e.polyCall(PolyMod, "", e.Text(inst.Arg(0)), e.Text(inst.Arg(1))))
	case spirv.OpIAdd, spirv.OpISub, spirv.OpIMul, spirv.OpBitwiseAnd, spirv.OpBitwiseOr, spirv.OpBitwiseXor:
		t := inst.ResultType
		e.Bind(inst, Binary(intOps[op], e.signed(inst.Arg(0), t), e.signed(inst.Arg(1), t)))
	case spirv.OpUDiv, spirv.OpUMod:
		e.bindSigned(inst, ir.ScalarUint, intOps[op])
	case spirv.OpSDiv, spirv.OpSRem:
		e.bindSigned(inst, ir.ScalarSint, intOps[op])
	case spirv.OpSMod:
		st := e.Retype(inst.ResultType, ir.ScalarSint)
		text := e.polyCall(PolySMod, "", e.signed(inst.Arg(0), st), e.signed(inst.Arg(1), st))
		e.Bind(inst, e.fromType(text, st, inst.ResultType))
	case spirv.OpShiftLeftLogical:
		e.Bind(inst, Binary("<<", e.signed(inst.Arg(0), inst.ResultType), e.Text(inst.Arg(1))))
	case spirv.OpShiftRightLogical:
		ut := e.Retype(inst.ResultType, ir.ScalarUint)
		e.Bind(inst, e.fromType(Binary(">>", e.signed(inst.Arg(0), ut), e.Text(inst.Arg(1))), ut, inst.ResultType))
	case spirv.OpShiftRightArithmetic:
		st := e.Retype(inst.ResultType, ir.ScalarSint)
		e.Bind(inst, e.fromType(Binary(">>", e.signed(inst.Arg(0), st), e.Text(inst.Arg(1))), st, inst.ResultType))

	case spirv.OpLogicalAnd, spirv.OpLogicalOr, spirv.OpLogicalEqual, spirv.OpLogicalNotEqual,
		spirv.OpFOrdEqual, spirv.OpFOrdNotEqual, spirv.OpFOrdLessThan, spirv.OpFOrdGreaterThan,
		spirv.OpFOrdLessThanEqual, spirv.OpFOrdGreaterThanEqual:
		e.Bind(inst, e.compare(compareOps[op], inst.Arg(0), inst.Arg(1)))
	case spirv.OpFUnordEqual, spirv.OpFUnordNotEqual, spirv.OpFUnordLessThan, spirv.OpFUnordGreaterThan,
		spirv.OpFUnordLessThanEqual, spirv.OpFUnordGreaterThanEqual:
		e.Bind(inst, Unary("!", e.compare(unorderedOps[op], inst.Arg(0), inst.Arg(1))))
	case spirv.OpIEqual, spirv.OpINotEqual:
		t := e.TypeOf(inst.Arg(0))
		e.Bind(inst, e.compare(compareOps[op], inst.Arg(0), inst.Arg(1), t))
	case spirv.OpULessThan, spirv.OpUGreaterThan, spirv.OpULessThanEqual, spirv.OpUGreaterThanEqual:
		t := e.Retype(e.TypeOf(inst.Arg(0)), ir.ScalarUint)
		e.Bind(inst, e.compare(compareOps[op], inst.Arg(0), inst.Arg(1), t))
	case spirv.OpSLessThan, spirv.OpSGreaterThan, spirv.OpSLessThanEqual, spirv.OpSGreaterThanEqual:
		t := e.Retype(e.TypeOf(inst.Arg(0)), ir.ScalarSint)
		e.Bind(inst, e.compare(compareOps[op], inst.Arg(0), inst.Arg(1), t))
	case spirv.OpSelect:
		if m.IsPointer(inst.ResultType) {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, inst.Result, op, "select of pointers")
		}
		e.Bind(inst, e.Dialect.Select(e, inst.ResultType, e.Text(inst.Arg(0)), e.Text(inst.Arg(1)), e.Text(inst.Arg(2))))

	case spirv.OpConvertFToU, spirv.OpConvertFToS, spirv.OpFConvert:
		e.Bind(inst, e.Dialect.Cast(e, inst.ResultType, e.Text(inst.Arg(0))))
	case spirv.OpConvertSToF, spirv.OpSConvert:
		st := e.Retype(e.TypeOf(inst.Arg(0)), ir.ScalarSint)
		e.Bind(inst, e.Dialect.Cast(e, inst.ResultType, e.signed(inst.Arg(0), st)))
	case spirv.OpConvertUToF, spirv.OpUConvert:
		ut := e.Retype(e.TypeOf(inst.Arg(0)), ir.ScalarUint)
		e.Bind(inst, e.Dialect.Cast(e, inst.ResultType, e.signed(inst.Arg(0), ut)))
	case spirv.OpBitcast:
		if m.IsPointer(inst.ResultType) {
			ir.RaiseAt(ir.ErrUnsupportedAccessPattern, inst.Result, op, "pointer bitcast")
		}
		e.Bind(inst, e.Dialect.Bitcast(e, e.TypeOf(inst.Arg(0)), inst.ResultType, e.Text(inst.Arg(0))))
	case spirv.OpQuantizeToF16:
		e.Bind(inst, e.polyCall(PolyQuantizeF16, "", e.Text(inst.Arg(0))))

	case spirv.OpDot:
		e.Bind(inst, Call(e.Dialect.Intrinsic("dot"), e.Text(inst.Arg(0)), e.Text(inst.Arg(1))))
	case spirv.OpVectorTimesMatrix, spirv.OpMatrixTimesVector, spirv.OpMatrixTimesMatrix:
		e.Bind(inst, e.Dialect.MatrixMul(e, op, e.Text(inst.Arg(0)), e.Text(inst.Arg(1))))
	case spirv.OpOuterProduct:
		e.Bind(inst, e.polyCall(PolyOuterProduct, "outerProduct", e.Text(inst.Arg(0)), e.Text(inst.Arg(1))))
	case spirv.OpTranspose:
		e.Bind(inst, Call(e.Dialect.Intrinsic("transpose"), e.Text(inst.Arg(0))))

	case spirv.OpCompositeConstruct:
		e.compositeConstruct(inst)
	case spirv.OpCompositeExtract:
		text, t := e.Operand(inst.Arg(0)), e.TypeOf(inst.Arg(0))
		for _, lit := range inst.Operands[1:] {
			text, t = e.extractText(text, t, lit)
		}
		x := e.Value(inst.Arg(0))
		e.bindExpr(inst, &Expr{Text: text, Type: inst.ResultType, Storage: x.Storage, Memory: x.Memory})
	case spirv.OpCompositeInsert:
		name := e.DeclareResult(inst.Result, inst.ResultType)
		e.AssignExpr(name, spirv.StorageClassFunction, e.Value(inst.Arg(1)), inst.ResultType)
		path, t := name, inst.ResultType
		for _, lit := range inst.Operands[2:] {
			path, t = e.extractText(path, t, lit)
		}
		e.AssignExpr(path, spirv.StorageClassFunction, e.Value(inst.Arg(0)), t)
	case spirv.OpVectorExtractDynamic:
		e.Bind(inst, e.Operand(inst.Arg(0))+"["+e.Text(inst.Arg(1))+"]")
	case spirv.OpVectorInsertDynamic:
		vec, comp, idx := e.Text(inst.Arg(0)), e.Text(inst.Arg(1)), e.Text(inst.Arg(2))
		name := e.DeclareResult(inst.Result, inst.ResultType)
		e.Out.Line("%s = %s;", name, vec)
		e.Out.Line("%s[%s] = %s;", name, idx, comp)
	case spirv.OpVectorShuffle:
		e.Bind(inst, e.shuffleText(inst.ResultType, inst.Arg(0), inst.Arg(1), inst.Operands[2:]))

	case spirv.OpAny, spirv.OpAll, spirv.OpIsNan, spirv.OpIsInf, spirv.OpIsFinite,
		spirv.OpDPdx, spirv.OpDPdy, spirv.OpFwidth, spirv.OpDPdxFine, spirv.OpDPdyFine, spirv.OpFwidthFine,
		spirv.OpDPdxCoarse, spirv.OpDPdyCoarse, spirv.OpFwidthCoarse, spirv.OpBitCount, spirv.OpBitReverse:
		e.Bind(inst, Call(e.Dialect.Intrinsic(unaryIntrinsics[op]), e.Text(inst.Arg(0))))
	case spirv.OpBitFieldInsert:
		args := e.texts(inst.IDOperands())
		e.Bind(inst, e.polyCall(PolyBitfieldInsert, "bitfieldInsert", args...))
	case spirv.OpBitFieldSExtract:
		args := e.texts(inst.IDOperands())
		e.Bind(inst, e.polyCall(PolyBitfieldSExtract, "bitfieldSExtract", args...))
	case spirv.OpBitFieldUExtract:
		args := e.texts(inst.IDOperands())
		e.Bind(inst, e.polyCall(PolyBitfieldUExtract, "bitfieldUExtract", args...))
	case spirv.OpIAddCarry, spirv.OpISubBorrow:
		e.carry(inst)
	case spirv.OpUMulExtended, spirv.OpSMulExtended:
		ir.RaiseAt(ir.ErrUnsupportedOpcode, inst.Result, op, "extended multiplication")

	case spirv.OpFunctionCall:
		e.call(inst)
	case spirv.OpExtInst:
		e.extInst(inst)

	case spirv.OpSampledImage:
		img, smp := e.Value(inst.Arg(0)), e.Value(inst.Arg(1))
		e.exprs[inst.Result] = &Expr{Text: img.Text, Type: inst.ResultType, Atomic: img.Atomic, Sampler: smp.Text}
	case spirv.OpImage:
		x := e.Value(inst.Arg(0))
		e.exprs[inst.Result] = &Expr{Text: x.Text, Type: inst.ResultType, Atomic: x.Atomic}
	case spirv.OpImageTexelPointer:
		e.texelPointer(inst)
	case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleExplicitLod,
		spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod,
		spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjExplicitLod,
		spirv.OpImageSampleProjDrefImplicitLod, spirv.OpImageSampleProjDrefExplicitLod,
		spirv.OpImageFetch, spirv.OpImageGather, spirv.OpImageDrefGather, spirv.OpImageRead, spirv.OpImageWrite,
		spirv.OpImageQuerySizeLod, spirv.OpImageQuerySize, spirv.OpImageQueryLod,
		spirv.OpImageQueryLevels, spirv.OpImageQuerySamples:
		e.Dialect.Image(e, e.parseImageOp(inst))
		if op == spirv.OpImageWrite {
			e.Invalidate()
		}

	case spirv.OpAtomicLoad, spirv.OpAtomicStore, spirv.OpAtomicExchange, spirv.OpAtomicCompareExchange,
		spirv.OpAtomicCompareExchangeWeak, spirv.OpAtomicIIncrement, spirv.OpAtomicIDecrement,
		spirv.OpAtomicIAdd, spirv.OpAtomicISub, spirv.OpAtomicSMin, spirv.OpAtomicUMin,
		spirv.OpAtomicSMax, spirv.OpAtomicUMax, spirv.OpAtomicAnd, spirv.OpAtomicOr, spirv.OpAtomicXor:
		e.Dialect.Atomic(e, inst, e.Resolve(inst.Arg(0)))
		e.Invalidate()
	case spirv.OpControlBarrier, spirv.OpMemoryBarrier:
		e.Dialect.Barrier(e, inst)
		e.Invalidate()

	case spirv.OpEmitVertex, spirv.OpEndPrimitive:
		ir.RaiseAt(ir.ErrUnsupportedOpcode, inst.Result, op, "geometry stream output")
	case spirv.OpNop, spirv.OpLine, spirv.OpNoLine:
	default:
		if analysis.IsSubgroupOp(op) {
			e.Dialect.Subgroup(e, inst)
			return
		}
		ir.RaiseAt(ir.ErrUnsupportedOpcode, inst.Result, op, "no lowering for %s", op)
	}
}

var floatOps = map[spirv.Op]string{
	spirv.OpFAdd: "+", spirv.OpFSub: "-", spirv.OpFMul: "*", spirv.OpFDiv: "/",
	spirv.OpVectorTimesScalar: "*", spirv.OpMatrixTimesScalar: "*",
}

var intOps = map[spirv.Op]string{
	spirv.OpIAdd: "+", spirv.OpISub: "-", spirv.OpIMul: "*",
	spirv.OpUDiv: "/", spirv.OpSDiv: "/", spirv.OpUMod: "%", spirv.OpSRem: "%",
	spirv.OpBitwiseAnd: "&", spirv.OpBitwiseOr: "|", spirv.OpBitwiseXor: "^",
}

var compareOps = map[spirv.Op]string{
	spirv.OpLogicalAnd: "&&", spirv.OpLogicalOr: "||",
	spirv.OpLogicalEqual: "==", spirv.OpLogicalNotEqual: "!=",
	spirv.OpIEqual: "==", spirv.OpINotEqual: "!=",
	spirv.OpULessThan: "<", spirv.OpSLessThan: "<", spirv.OpFOrdLessThan: "<",
	spirv.OpUGreaterThan: ">", spirv.OpSGreaterThan: ">", spirv.OpFOrdGreaterThan: ">",
	spirv.OpULessThanEqual: "<=", spirv.OpSLessThanEqual: "<=", spirv.OpFOrdLessThanEqual: "<=",
	spirv.OpUGreaterThanEqual: ">=", spirv.OpSGreaterThanEqual: ">=", spirv.OpFOrdGreaterThanEqual: ">=",
	spirv.OpFOrdEqual: "==", spirv.OpFOrdNotEqual: "!=",
}

// unorderedOps holds the negated ordered comparison of each unordered one.
var unorderedOps = map[spirv.Op]string{
	spirv.OpFUnordEqual: "!=", spirv.OpFUnordNotEqual: "==",
	spirv.OpFUnordLessThan: ">=", spirv.OpFUnordGreaterThan: "<=",
	spirv.OpFUnordLessThanEqual: ">", spirv.OpFUnordGreaterThanEqual: "<",
}

var unaryIntrinsics = map[spirv.Op]string{
	spirv.OpAny: "any", spirv.OpAll: "all",
	spirv.OpIsNan: "isnan", spirv.OpIsInf: "isinf", spirv.OpIsFinite: "isfinite",
	spirv.OpDPdx: "dFdx", spirv.OpDPdy: "dFdy", spirv.OpFwidth: "fwidth",
	spirv.OpDPdxFine: "dFdxFine", spirv.OpDPdyFine: "dFdyFine", spirv.OpFwidthFine: "fwidthFine",
	spirv.OpDPdxCoarse: "dFdxCoarse", spirv.OpDPdyCoarse: "dFdyCoarse", spirv.OpFwidthCoarse: "fwidthCoarse",
	spirv.OpBitCount: "bitCount", spirv.OpBitReverse: "bitfieldReverse",
}

func (e *Emitter) texts(ids []ir.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = e.Text(id)
	}
	return out
}

// polyCall calls the target intrinsic for name, or the polyfill p when
// the target has none.
func (e *Emitter) polyCall(p Polyfill, name string, args ...string) string {
	if name != "" {
		if fn := e.Dialect.Intrinsic(name); fn != "" {
			return Call(fn, args...)
		}
	}
	e.Require(p)
	return Call(p.Func(), args...)
}

// Retype returns t with its scalar kind replaced, keeping width and
// shape.
func (e *Emitter) Retype(t ir.ID, kind ir.ScalarKind) ir.ID {
	m := e.Module
	s := m.ScalarOf(t)
	if s.Kind == kind {
		return t
	}
	var scalar ir.ID
	switch kind {
	case ir.ScalarSint, ir.ScalarUint:
		scalar = m.AddType(ir.IntType{Width: s.Width, Signed: kind == ir.ScalarSint})
	case ir.ScalarFloat:
		scalar = m.AddType(ir.FloatType{Width: s.Width})
	default:
		scalar = m.AddType(ir.BoolType{})
	}
	if n := m.VectorSize(t); m.IsVector(t) {
		return m.AddType(ir.VectorType{Component: scalar, Count: n})
	}
	return scalar
}

// signed returns the text of id converted bitwise to the signedness of t.
func (e *Emitter) signed(id, t ir.ID) string {
	from := e.TypeOf(id)
	fs, ts := e.Module.ScalarOf(from), e.Module.ScalarOf(t)
	if fs.Kind == ts.Kind || fs.Kind == ir.ScalarBool || fs.Kind == ir.ScalarFloat {
		return e.Text(id)
	}
	return e.Dialect.Bitcast(e, from, e.Retype(from, ts.Kind), e.Text(id))
}

// fromType converts text of type from to type to when their signedness
// differs.
func (e *Emitter) fromType(text string, from, to ir.ID) string {
	if e.Module.ScalarOf(from).Kind == e.Module.ScalarOf(to).Kind {
		return text
	}
	return e.Dialect.Bitcast(e, from, to, text)
}

func (e *Emitter) bindSigned(inst *ir.Instruction, kind ir.ScalarKind, op string) {
	t := e.Retype(inst.ResultType, kind)
	text := Binary(op, e.signed(inst.Arg(0), t), e.signed(inst.Arg(1), t))
	e.Bind(inst, e.fromType(text, t, inst.ResultType))
}

// compare renders a binary comparison. With a type, integer operands are
// first converted to its signedness.
func (e *Emitter) compare(op string, a, b ir.ID, t ...ir.ID) string {
	if len(t) > 0 {
		return Binary(op, e.signed(a, t[0]), e.signed(b, t[0]))
	}
	return Binary(op, e.Text(a), e.Text(b))
}

func (e *Emitter) copyObject(inst *ir.Instruction) {
	src := inst.Arg(0)
	if e.Module.IsPointer(inst.ResultType) {
		e.ptrs[inst.Result] = e.PointerOf(src)
		return
	}
	x := e.Value(src)
	if e.Module.IsOpaque(inst.ResultType) {
		e.exprs[inst.Result] = &Expr{Text: x.Text, Type: inst.ResultType, Atomic: x.Atomic, Sampler: x.Sampler}
		return
	}
	e.bindExpr(inst, &Expr{Text: x.Text, Type: inst.ResultType, Storage: x.Storage, Memory: x.Memory})
}

// extractText indexes text of type t by a literal.
func (e *Emitter) extractText(text string, t ir.ID, lit uint32) (string, ir.ID) {
	m := e.Module
	base := Enclose(text)
	switch inner := m.Inner(t).(type) {
	case ir.StructType:
		return base + "." + e.MemberName(t, lit), inner.Members[lit]
	case ir.VectorType:
		if lit < 4 {
			return base + "." + swizzleNames[lit:lit+1], inner.Component
		}
	}
	return fmt.Sprintf("%s[%d]", base, lit), m.ElementType(t)
}

// shuffleText renders OpVectorShuffle as a swizzle of one operand, or a
// constructor over components of both.
func (e *Emitter) shuffleText(t, a, b ir.ID, comps []uint32) string {
	m := e.Module
	na := m.VectorSize(e.TypeOf(a))
	fromA, fromB := true, true
	for _, c := range comps {
		if c == 0xffffffff {
			continue
		}
		if c < na {
			fromB = false
		} else {
			fromA = false
		}
	}
	swizzle := func(x *Expr, offset uint32) string {
		var sb strings.Builder
		identity := ir.Index(len(comps)) == m.VectorSize(x.Type)
		for i, c := range comps {
			if c == 0xffffffff {
				c = offset
			}
			if c-offset != ir.Index(i) {
				identity = false
			}
			sb.WriteByte(swizzleNames[c-offset])
		}
		if identity {
			return x.Text
		}
		return x.Operand() + "." + sb.String()
	}
	if fromA {
		return swizzle(e.Value(a), 0)
	}
	if fromB {
		return swizzle(e.Value(b), na)
	}
	xa, xb := e.Value(a), e.Value(b)
	args := make([]string, len(comps))
	for i, c := range comps {
		switch {
		case c == 0xffffffff || c < na:
			if c == 0xffffffff {
				c = 0
			}
			args[i] = e.component(xa, c)
		default:
			args[i] = e.component(xb, c-na)
		}
	}
	text, _ := e.Dialect.Construct(e, t, args)
	return text
}

func (e *Emitter) component(x *Expr, i uint32) string {
	if !e.Module.IsVector(x.Type) {
		return x.Text
	}
	return x.Operand() + "." + swizzleNames[i:i+1]
}

func (e *Emitter) compositeConstruct(inst *ir.Instruction) {
	m := e.Module
	t := inst.ResultType
	parts := inst.IDOperands()
	args := make([]string, len(parts))
	for i, id := range parts {
		x := e.Value(id)
		args[i] = x.Text
	}
	if m.IsVector(t) && len(parts) == 1 && m.IsScalar(e.TypeOf(parts[0])) && m.VectorSize(t) > 1 {
		args = []string{args[0]}
	}
	if text, ok := e.Dialect.Construct(e, t, args); ok {
		e.Bind(inst, text)
		return
	}
	init := "{ " + strings.Join(args, ", ") + " }"
	name := e.LocalName(inst.Result)
	if e.place.IsHoisted(inst.Result) {
		tmp := e.FreshLocal("_init")
		e.Out.Line("%s = %s;", e.Decl(t, tmp), init)
		e.AssignExpr(name, spirv.StorageClassFunction, &Expr{Text: tmp, Type: t, Atomic: true}, t)
	} else {
		e.Out.Line("%s = %s;", e.DeclTemp(inst.Result, t, name), init)
		e.tempDecls++
	}
	e.exprs[inst.Result] = &Expr{Text: name, Type: t, Atomic: true, Storage: spirv.StorageClassFunction}
}

// carry lowers OpIAddCarry and OpISubBorrow into a result struct.
func (e *Emitter) carry(inst *ir.Instruction) {
	t := inst.ResultType
	a, b := e.Text(inst.Arg(0)), e.Text(inst.Arg(1))
	name := e.DeclareResult(inst.Result, t)
	lo := name + "." + e.MemberName(t, 0)
	hi := name + "." + e.MemberName(t, 1)
	ht := e.Module.MemberType(t, 1)
	if inst.Op == spirv.OpIAddCarry {
		e.Out.Line("%s = %s;", lo, Binary("+", a, b))
		e.Out.Line("%s = %s;", hi, e.Dialect.Cast(e, ht, Binary("<", lo, a)))
		return
	}
	e.Out.Line("%s = %s;", lo, Binary("-", a, b))
	e.Out.Line("%s = %s;", hi, e.Dialect.Cast(e, ht, Binary("<", a, b)))
}

// call lowers OpFunctionCall. Pointer arguments pass the lvalue and
// combined image-samplers pass both halves.
func (e *Emitter) call(inst *ir.Instruction) {
	m := e.Module
	callee := inst.Arg(0)
	var args []string
	for _, id := range inst.IDOperands()[1:] {
		t := e.TypeOf(id)
		switch {
		case m.IsPointer(t) && !m.IsOpaque(m.Pointee(t)):
			args = append(args, e.Lvalue(e.Resolve(id)))
		default:
			x := e.Value(id)
			args = append(args, x.Text)
			if x.Sampler != "" {
				args = append(args, x.Sampler)
			}
		}
	}
	args = append(args, e.Dialect.CallArgs(e, callee)...)
	text := Call(e.Name(callee), args...)
	if _, void := m.Inner(inst.ResultType).(ir.VoidType); void {
		e.Statement("%s;", text)
		return
	}
	e.Bind(inst, text)
	e.Invalidate()
}

// TexelPointer addresses one texel of a storage image for atomics.
type TexelPointer struct {
	Image  string
	Coord  string
	Sample string
	// ImageType is the type of the image variable.
	ImageType ir.ID
}

func (e *Emitter) texelPointer(inst *ir.Instruction) {
	base := e.PointerOf(inst.Arg(0))
	tp := &TexelPointer{
		Image:     e.Lvalue(e.Resolve(inst.Arg(0))),
		Coord:     e.Text(inst.Arg(1)),
		ImageType: base.Type,
	}
	if !e.isZero(inst.Arg(2)) {
		tp.Sample = e.Text(inst.Arg(2))
	}
	e.ptrs[inst.Result] = &Pointer{
		Root: base.Root, Base: tp.Image, Storage: spirv.StorageClassImage,
		BaseType: base.Type, Type: e.Module.Pointee(inst.ResultType), Texel: tp,
	}
}
