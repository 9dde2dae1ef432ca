// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cross

import (
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// glslCalls maps GLSL.std.450 instructions to generic intrinsic names.
// The dialect translates each name to its own spelling.
var glslCalls = map[spirv.GLSLStd450]string{
	spirv.GLSLRound: "round", spirv.GLSLRoundEven: "roundEven", spirv.GLSLTrunc: "trunc",
	spirv.GLSLFAbs: "abs", spirv.GLSLSAbs: "abs", spirv.GLSLSSign: "sign",
	spirv.GLSLFloor: "floor", spirv.GLSLCeil: "ceil", spirv.GLSLFract: "fract",
	spirv.GLSLRadians: "radians", spirv.GLSLDegrees: "degrees",
	spirv.GLSLSin: "sin", spirv.GLSLCos: "cos", spirv.GLSLTan: "tan",
	spirv.GLSLAsin: "asin", spirv.GLSLAcos: "acos", spirv.GLSLAtan: "atan",
	spirv.GLSLSinh: "sinh", spirv.GLSLCosh: "cosh", spirv.GLSLTanh: "tanh",
	spirv.GLSLAsinh: "asinh", spirv.GLSLAcosh: "acosh", spirv.GLSLAtanh: "atanh",
	spirv.GLSLAtan2: "atan2", spirv.GLSLPow: "pow",
	spirv.GLSLExp: "exp", spirv.GLSLLog: "log", spirv.GLSLExp2: "exp2", spirv.GLSLLog2: "log2",
	spirv.GLSLSqrt: "sqrt", spirv.GLSLInverseSqrt: "inversesqrt", spirv.GLSLDeterminant: "determinant",
	spirv.GLSLFMin: "min", spirv.GLSLFMax: "max", spirv.GLSLFClamp: "clamp",
	spirv.GLSLNMin: "min", spirv.GLSLNMax: "max", spirv.GLSLNClamp: "clamp",
	spirv.GLSLFMix: "mix", spirv.GLSLStep: "step", spirv.GLSLSmoothStep: "smoothstep",
	spirv.GLSLFma: "fma", spirv.GLSLLdexp: "ldexp",
	spirv.GLSLLength: "length", spirv.GLSLDistance: "distance", spirv.GLSLCross: "cross",
	spirv.GLSLNormalize: "normalize",
	spirv.GLSLInterpolateAtCentroid: "interpolateAtCentroid",
	spirv.GLSLInterpolateAtSample:   "interpolateAtSample",
	spirv.GLSLInterpolateAtOffset:   "interpolateAtOffset",
}

// glslSigned lists integer instructions whose operands take a fixed
// signedness.
var glslSigned = map[spirv.GLSLStd450]struct {
	name string
	kind ir.ScalarKind
}{
	spirv.GLSLUMin: {"min", ir.ScalarUint}, spirv.GLSLSMin: {"min", ir.ScalarSint},
	spirv.GLSLUMax: {"max", ir.ScalarUint}, spirv.GLSLSMax: {"max", ir.ScalarSint},
	spirv.GLSLUClamp: {"clamp", ir.ScalarUint}, spirv.GLSLSClamp: {"clamp", ir.ScalarSint},
}

var glslPolyfills = map[spirv.GLSLStd450]struct {
	poly Polyfill
	name string
}{
	spirv.GLSLPackHalf2x16:    {PolyPackHalf2x16, "packHalf2x16"},
	spirv.GLSLUnpackHalf2x16:  {PolyUnpackHalf2x16, "unpackHalf2x16"},
	spirv.GLSLPackUnorm4x8:    {PolyPackUnorm4x8, "packUnorm4x8"},
	spirv.GLSLUnpackUnorm4x8:  {PolyUnpackUnorm4x8, "unpackUnorm4x8"},
	spirv.GLSLPackSnorm4x8:    {PolyPackSnorm4x8, "packSnorm4x8"},
	spirv.GLSLUnpackSnorm4x8:  {PolyUnpackSnorm4x8, "unpackSnorm4x8"},
	spirv.GLSLPackUnorm2x16:   {PolyPackUnorm2x16, "packUnorm2x16"},
	spirv.GLSLUnpackUnorm2x16: {PolyUnpackUnorm2x16, "unpackUnorm2x16"},
	spirv.GLSLPackSnorm2x16:   {PolyPackSnorm2x16, "packSnorm2x16"},
	spirv.GLSLUnpackSnorm2x16: {PolyUnpackSnorm2x16, "unpackSnorm2x16"},
	spirv.GLSLFindILsb:        {PolyFindLSB, "findLSB"},
}

// extInst lowers OpExtInst. Non-semantic sets are dropped.
func (e *Emitter) extInst(inst *ir.Instruction) {
	set, err := e.Module.ExtInstImport(inst.Arg(0))
	if err != nil {
		panic(err)
	}
	switch {
	case set == spirv.GLSLStd450ImportName:
		e.glsl(inst)
	case strings.HasPrefix(set, "NonSemantic."):
	default:
		ir.RaiseAt(ir.ErrUnsupportedOpcode, inst.Result, inst.Op, "extended instruction set %q", set)
	}
}

func (e *Emitter) glsl(inst *ir.Instruction) {
	m := e.Module
	op := spirv.GLSLStd450(inst.Literal(1))
	ids := inst.IDOperands()
	t := inst.ResultType
	if name, ok := glslCalls[op]; ok {
		fn := e.Dialect.Intrinsic(name)
		if fn == "" {
			ir.RaiseAt(ir.ErrUnsupportedOpcode, inst.Result, inst.Op, "GLSL.std.450 %s has no equivalent", name)
		}
		e.Bind(inst, Call(fn, e.texts(ids)...))
		return
	}
	if s, ok := glslSigned[op]; ok {
		st := e.Retype(t, s.kind)
		args := make([]string, len(ids))
		for i, id := range ids {
			args[i] = e.signed(id, st)
		}
		e.Bind(inst, e.fromType(Call(e.Dialect.Intrinsic(s.name), args...), st, t))
		return
	}
	if p, ok := glslPolyfills[op]; ok {
		e.Bind(inst, e.polyCall(p.poly, p.name, e.texts(ids)...))
		return
	}
	switch op {
	case spirv.GLSLFSign:
		e.Bind(inst, e.Dialect.Cast(e, t, Call(e.Dialect.Intrinsic("sign"), e.Text(ids[0]))))
	case spirv.GLSLFindSMsb, spirv.GLSLFindUMsb:
		kind := ir.ScalarUint
		if op == spirv.GLSLFindSMsb {
			kind = ir.ScalarSint
		}
		st := e.Retype(e.TypeOf(ids[0]), kind)
		text := e.polyCall(PolyFindMSB, "findMSB", e.signed(ids[0], st))
		e.Bind(inst, e.fromType(text, e.Retype(t, ir.ScalarSint), t))
	case spirv.GLSLMatrixInverse:
		poly := PolyInverse4
		switch m.Columns(t) {
		case 2:
			poly = PolyInverse2
		case 3:
			poly = PolyInverse3
		}
		e.Bind(inst, e.polyCall(poly, "", e.Text(ids[0])))
	case spirv.GLSLReflect, spirv.GLSLRefract, spirv.GLSLFaceForward:
		e.Bind(inst, e.vectorOrScalar(op, t, e.texts(ids)))
	case spirv.GLSLIMix:
		e.Bind(inst, e.Dialect.Select(e, t, e.Text(ids[2]), e.Text(ids[1]), e.Text(ids[0])))
	case spirv.GLSLModf, spirv.GLSLFrexp:
		name := "modf"
		if op == spirv.GLSLFrexp {
			name = "frexp"
		}
		out := e.Lvalue(e.Resolve(ids[1]))
		e.Bind(inst, Call(e.Dialect.Intrinsic(name), e.Text(ids[0]), out))
		e.Invalidate()
	case spirv.GLSLModfStruct, spirv.GLSLFrexpStruct:
		name := "modf"
		if op == spirv.GLSLFrexpStruct {
			name = "frexp"
		}
		x := e.Text(ids[0])
		res := e.DeclareResult(inst.Result, t)
		e.Out.Line("%s.%s = %s;", res, e.MemberName(t, 0),
			Call(e.Dialect.Intrinsic(name), x, res+"."+e.MemberName(t, 1)))
	default:
		ir.RaiseAt(ir.ErrUnsupportedOpcode, inst.Result, inst.Op, "GLSL.std.450 instruction %d", op)
	}
}

// vectorOrScalar lowers reflect, refract and faceforward, which targets
// only define for vectors.
func (e *Emitter) vectorOrScalar(op spirv.GLSLStd450, t ir.ID, args []string) string {
	name, poly := "reflect", PolyReflectScalar
	switch op {
	case spirv.GLSLRefract:
		name, poly = "refract", PolyRefractScalar
	case spirv.GLSLFaceForward:
		name, poly = "faceforward", PolyFaceForwardScalar
	}
	if e.Module.IsVector(t) {
		return Call(e.Dialect.Intrinsic(name), args...)
	}
	e.Require(poly)
	return Call(poly.Func(), args...)
}
