// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/spvcross/analysis"
	"github.com/gogpu/spvcross/cross"
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// Instruction implements cross.Dialect. It lowers the instructions whose
// HLSL form differs from the shared lowering.
func (w *writer) Instruction(e *cross.Emitter, inst *ir.Instruction) bool {
	switch inst.Op {
	case spirv.OpExtInst:
		return w.extInst(e, inst)
	case spirv.OpArrayLength:
		w.arrayLength(e, inst)
		return true
	case spirv.OpCopyMemory:
		dst, src := e.Resolve(inst.Arg(0)), e.Resolve(inst.Arg(1))
		if !w.byteAddress[dst.Root] && !w.byteAddress[src.Root] {
			return false
		}
		w.copyBuffer(e, inst, dst, src)
		return true
	case spirv.OpIsHelperInvocationEXT:
		w.need(ShaderModel.SupportsHelperLane, 0, "IsHelperLane")
		e.Bind(inst, "IsHelperLane()")
		return true
	case spirv.OpDemoteToHelperInvocation:
		e.Out.Line("discard;")
		return true
	}
	return false
}

// copyBuffer lowers OpCopyMemory touching a byte address buffer through
// a temporary.
func (w *writer) copyBuffer(e *cross.Emitter, inst *ir.Instruction, dst, src *cross.Pointer) {
	tmp := e.FreshLocal("_copy")
	e.Out.Line("%s;", e.Decl(src.Type, tmp))
	if w.byteAddress[src.Root] {
		l := w.bufferLayout(src.Root)
		off, leaf := e.BufferOffset(src, l)
		if w.m.IsStruct(src.Type) || w.m.IsArray(src.Type) {
			w.readInto(e, tmp, src.Base, off, src.Type, leaf, l)
		} else {
			e.Out.Line("%s = %s;", tmp, w.readValue(e, src.Base, off, src.Type, leaf, l))
		}
	} else {
		e.Out.Line("%s = %s;", tmp, e.LoadText(src))
	}
	if w.byteAddress[dst.Root] {
		l := w.bufferLayout(dst.Root)
		off, leaf := e.BufferOffset(dst, l)
		w.writeFrom(e, dst.Base, off, dst.Type, leaf, l, tmp)
	} else {
		e.StoreText(dst, &cross.Expr{Text: tmp, Type: src.Type, Atomic: true})
	}
	e.Invalidate()
}

// extInst lowers the GLSL.std.450 instructions HLSL has no intrinsic
// for.
func (w *writer) extInst(e *cross.Emitter, inst *ir.Instruction) bool {
	m := w.m
	set, err := m.ExtInstImport(inst.Arg(0))
	if err != nil || set != spirv.GLSLStd450ImportName {
		return false
	}
	ids := inst.IDOperands()
	t := inst.ResultType
	one := func() string { return w.literal(m.ScalarOf(t), 1) }
	switch spirv.GLSLStd450(inst.Literal(1)) {
	case spirv.GLSLAsinh:
		x := e.Operand(ids[0])
		e.Bind(inst, fmt.Sprintf("log(%s + sqrt(%s * %s + %s))", x, x, x, one()))
	case spirv.GLSLAcosh:
		x := e.Operand(ids[0])
		e.Bind(inst, fmt.Sprintf("log(%s + sqrt(%s * %s - %s))", x, x, x, one()))
	case spirv.GLSLAtanh:
		x := e.Operand(ids[0])
		half := fmt.Sprintf("0.5%s", w.floatSuffix(m.ScalarOf(t).Width))
		e.Bind(inst, fmt.Sprintf("%s * log((%s + %s) / (%s - %s))", half, one(), x, one(), x))
	case spirv.GLSLInterpolateAtOffset:
		n := m.VectorSize(e.TypeOf(ids[1]))
		if n == 0 {
			n = 1
		}
		offset := fmt.Sprintf("int%d(%s * 16.0f)", n, e.Operand(ids[1]))
		e.Bind(inst, cross.Call("EvaluateAttributeSnapped", e.Text(ids[0]), offset))
	case spirv.GLSLFrexp:
		exp := e.FreshLocal("_exp")
		e.Out.Line("%s %s;", w.TypeName(e, t), exp)
		res := e.DeclareResult(inst.Result, t)
		e.Out.Line("%s = frexp(%s, %s);", res, e.Text(ids[0]), exp)
		ptr := e.Resolve(ids[1])
		e.StoreText(ptr, &cross.Expr{Text: w.Cast(e, ptr.Type, exp), Type: ptr.Type, Atomic: true})
		e.Invalidate()
	case spirv.GLSLFrexpStruct:
		res := e.DeclareResult(inst.Result, t)
		exp := e.FreshLocal("_exp")
		e.Out.Line("%s %s;", w.TypeName(e, m.MemberType(t, 0)), exp)
		e.Out.Line("%s.%s = frexp(%s, %s);", res, e.MemberName(t, 0), e.Text(ids[0]), exp)
		e.Out.Line("%s.%s = %s;", res, e.MemberName(t, 1), w.Cast(e, m.MemberType(t, 1), exp))
	default:
		return false
	}
	return true
}

// =============================================================================
// Images
// =============================================================================

// Image implements cross.Dialect.
func (w *writer) Image(e *cross.Emitter, o *cross.ImageOp) {
	m := w.m
	img := o.Info(m)
	inst := o.Inst
	switch o.Op {
	case spirv.OpImageFetch:
		e.BindMemory(inst, w.fetch(o, img))
	case spirv.OpImageRead:
		if img.Multisampled {
			unsupported(inst, "reads of multisampled storage images")
		}
		text := fmt.Sprintf("%s[%s]", o.Image, o.Coord)
		e.BindMemory(inst, w.widen(e, text, w.imageComponents(o, img), inst.ResultType))
	case spirv.OpImageWrite:
		texel := o.Texel
		n := w.imageComponents(o, img)
		if got := m.VectorSize(m.TypeOf(o.TexelID)); ir.Position(got) > n {
			texel = cross.Enclose(texel) + "." + "xyzw"[:n]
		}
		e.Out.Line("%s[%s] = %s;", o.Image, o.Coord, texel)
	case spirv.OpImageGather, spirv.OpImageDrefGather:
		e.BindMemory(inst, w.gather(o))
	case spirv.OpImageQuerySize, spirv.OpImageQuerySizeLod, spirv.OpImageQueryLevels, spirv.OpImageQuerySamples:
		w.query(e, o, img)
	case spirv.OpImageQueryLod:
		if o.Sampler == "" {
			unsupported(inst, "level of detail query without a sampler")
		}
		e.BindMemory(inst, fmt.Sprintf("float2(%s.CalculateLevelOfDetail(%s, %s), %s.CalculateLevelOfDetailUnclamped(%s, %s))",
			o.Image, o.Sampler, o.Coord, o.Image, o.Sampler, o.Coord))
	default:
		e.BindMemory(inst, w.sample(o, img))
	}
}

// sample lowers the OpImageSample* family.
func (w *writer) sample(o *cross.ImageOp, img ir.ImageType) string {
	if o.Sampler == "" {
		unsupported(o.Inst, "sampling an image without a sampler")
	}
	coord, dref := o.Coord, o.Dref
	if o.Proj() {
		head, last := cross.Split(cross.CoordComponents(img))
		c := cross.Enclose(coord)
		coord = fmt.Sprintf("%s.%s / %s.%s", c, head, c, last)
		if dref != "" {
			dref = fmt.Sprintf("%s / %s.%s", cross.Enclose(dref), c, last)
		}
	}
	args := []string{o.Sampler, coord}
	method := "Sample"
	switch {
	case dref != "":
		args = append(args, dref)
		method = "SampleCmp"
		if o.Lod != "" {
			method = "SampleCmpLevelZero"
		}
	case o.Bias != "":
		method = "SampleBias"
		args = append(args, o.Bias)
	case o.Lod != "":
		method = "SampleLevel"
		args = append(args, o.Lod)
	case o.GradX != "":
		method = "SampleGrad"
		args = append(args, o.GradX, o.GradY)
	}
	offset := o.Offset
	if offset == "" && o.MinLod != "" {
		offset = zeroOffset(img)
	}
	if offset != "" {
		args = append(args, offset)
	}
	if o.MinLod != "" {
		args = append(args, o.MinLod)
	}
	return o.Image + "." + cross.Call(method, args...)
}

func zeroOffset(img ir.ImageType) string {
	switch n := cross.CoordComponents(img); {
	case img.Arrayed && n == 2, !img.Arrayed && n == 1:
		return "0"
	case img.Arrayed:
		return fmt.Sprintf("int%d(0)", n-1)
	default:
		return fmt.Sprintf("int%d(0)", n)
	}
}

// fetch lowers OpImageFetch to Load with the mip level or sample packed
// as the documented operands.
func (w *writer) fetch(o *cross.ImageOp, img ir.ImageType) string {
	var args []string
	switch {
	case img.Dim == spirv.DimBuffer:
		args = []string{o.Coord}
	case img.Multisampled:
		args = []string{o.Coord, o.Sample}
	default:
		lod := o.Lod
		if lod == "" {
			lod = "0"
		}
		args = []string{fmt.Sprintf("int%d(%s, %s)", cross.CoordComponents(img)+1, o.Coord, lod)}
	}
	if o.Offset != "" {
		args = append(args, o.Offset)
	}
	return o.Image + "." + cross.Call("Load", args...)
}

var gatherMethods = [4]string{"GatherRed", "GatherGreen", "GatherBlue", "GatherAlpha"}

func (w *writer) gather(o *cross.ImageOp) string {
	if o.Sampler == "" {
		unsupported(o.Inst, "gather without a sampler")
	}
	args := []string{o.Sampler, o.Coord}
	method := "GatherCmp"
	if o.Dref != "" {
		args = append(args, o.Dref)
	} else {
		c := w.m.MustConstant(o.Inst.Arg(2))
		k := c.U32()
		if k > 3 {
			unsupported(o.Inst, "gather component %d", k)
		}
		method = gatherMethods[k]
	}
	switch {
	case o.ConstOffsets != "":
		for i := range 4 {
			args = append(args, fmt.Sprintf("%s[%d]", o.ConstOffsets, i))
		}
	case o.Offset != "":
		args = append(args, o.Offset)
	}
	return o.Image + "." + cross.Call(method, args...)
}

// imageComponents returns the channel count of a storage image's texel.
func (w *writer) imageComponents(o *cross.ImageOp, img ir.ImageType) int {
	if img.Sampled != 2 || w.srvHandle[analysis.BaseVariable(w.m, o.ImageID)] {
		return 4
	}
	return img.Format.Components()
}

// widen pads a texel of n channels to the four-channel result of a read.
func (w *writer) widen(e *cross.Emitter, text string, n int, t ir.ID) string {
	m := w.m
	if n >= 4 || !m.IsVector(t) || ir.Position(m.VectorSize(t)) <= n {
		return text
	}
	s := m.ScalarOf(t)
	args := []string{text}
	for i := n; i < ir.Position(m.VectorSize(t)); i++ {
		if i == 3 {
			args = append(args, w.literal(s, 1))
		} else {
			args = append(args, w.literal(s, 0))
		}
	}
	out, _ := w.Construct(e, t, args)
	return out
}

// query lowers size, level and sample count queries to GetDimensions,
// which writes its results through out parameters.
func (w *writer) query(e *cross.Emitter, o *cross.ImageOp, img ir.ImageType) {
	inst := o.Inst
	rw := img.Sampled == 2 && !w.srvHandle[analysis.BaseVariable(w.m, o.ImageID)]
	mips := !rw && !img.Multisampled && img.Dim != spirv.DimBuffer
	n := cross.SizeComponents(img)
	if img.Dim == spirv.DimBuffer {
		n = 1
	}
	dims := e.FreshLocal("_dims")
	e.Out.Line("uint4 %s;", dims)
	var args []string
	if mips {
		lod := "0u"
		if o.Lod != "" {
			lod = w.Cast(e, w.m.AddType(ir.IntType{Width: 32, Signed: false}), o.Lod)
		}
		args = append(args, lod)
	}
	for i := range n {
		args = append(args, dims+"."+"xyzw"[i:i+1])
	}
	extra := dims + "." + "xyzw"[n:n+1]
	switch {
	case mips, img.Multisampled:
		args = append(args, extra)
	case o.Op == spirv.OpImageQueryLevels:
		unsupported(inst, "mip level query of a storage image")
	}
	if o.Op == spirv.OpImageQuerySamples && !img.Multisampled {
		unsupported(inst, "sample count query of a single-sampled image")
	}
	e.Out.Line("%s.%s;", o.Image, cross.Call("GetDimensions", args...))
	text := dims + "." + "xyzw"[:n]
	switch o.Op {
	case spirv.OpImageQueryLevels, spirv.OpImageQuerySamples:
		text = extra
	}
	e.BindTemp(inst.Result, inst.ResultType, w.Cast(e, inst.ResultType, text))
}

// =============================================================================
// Subgroups
// =============================================================================

var waveReductions = map[spirv.Op][2]string{
	spirv.OpGroupNonUniformIAdd:       {"WaveActiveSum", "WavePrefixSum"},
	spirv.OpGroupNonUniformFAdd:       {"WaveActiveSum", "WavePrefixSum"},
	spirv.OpGroupNonUniformIMul:       {"WaveActiveProduct", "WavePrefixProduct"},
	spirv.OpGroupNonUniformFMul:       {"WaveActiveProduct", "WavePrefixProduct"},
	spirv.OpGroupNonUniformSMin:       {"WaveActiveMin", ""},
	spirv.OpGroupNonUniformUMin:       {"WaveActiveMin", ""},
	spirv.OpGroupNonUniformFMin:       {"WaveActiveMin", ""},
	spirv.OpGroupNonUniformSMax:       {"WaveActiveMax", ""},
	spirv.OpGroupNonUniformUMax:       {"WaveActiveMax", ""},
	spirv.OpGroupNonUniformFMax:       {"WaveActiveMax", ""},
	spirv.OpGroupNonUniformBitwiseAnd: {"WaveActiveBitAnd", ""},
	spirv.OpGroupNonUniformBitwiseOr:  {"WaveActiveBitOr", ""},
	spirv.OpGroupNonUniformBitwiseXor: {"WaveActiveBitXor", ""},
	spirv.OpGroupNonUniformLogicalAnd: {"WaveActiveAllTrue", ""},
	spirv.OpGroupNonUniformLogicalOr:  {"WaveActiveAnyTrue", ""},
}

var scanOps = map[spirv.Op]string{
	spirv.OpGroupNonUniformIAdd: "+", spirv.OpGroupNonUniformFAdd: "+",
	spirv.OpGroupNonUniformIMul: "*", spirv.OpGroupNonUniformFMul: "*",
}

// Subgroup implements cross.Dialect with the SM 6.0 wave intrinsics.
func (w *writer) Subgroup(e *cross.Emitter, inst *ir.Instruction) {
	m := w.m
	w.needSubgroup(inst.Op.String())
	ids := inst.IDOperands()
	arg := func(i int) string { return e.Text(ids[i]) }
	lane := "WaveGetLaneIndex()"
	var text string
	switch inst.Op {
	case spirv.OpGroupNonUniformElect:
		text = "WaveIsFirstLane()"
	case spirv.OpGroupNonUniformAll:
		text = cross.Call("WaveActiveAllTrue", arg(1))
	case spirv.OpGroupNonUniformAny:
		text = cross.Call("WaveActiveAnyTrue", arg(1))
	case spirv.OpGroupNonUniformAllEqual:
		text = cross.Call("WaveActiveAllEqual", arg(1))
		if m.IsVector(e.TypeOf(ids[1])) {
			text = cross.Call("all", text)
		}
	case spirv.OpGroupNonUniformBroadcast, spirv.OpGroupNonUniformShuffle:
		text = cross.Call("WaveReadLaneAt", arg(1), arg(2))
	case spirv.OpGroupNonUniformBroadcastFirst:
		text = cross.Call("WaveReadLaneFirst", arg(1))
	case spirv.OpGroupNonUniformShuffleXor:
		text = cross.Call("WaveReadLaneAt", arg(1), lane+" ^ "+e.Operand(ids[2]))
	case spirv.OpGroupNonUniformShuffleUp:
		text = cross.Call("WaveReadLaneAt", arg(1), lane+" - "+e.Operand(ids[2]))
	case spirv.OpGroupNonUniformShuffleDown:
		text = cross.Call("WaveReadLaneAt", arg(1), lane+" + "+e.Operand(ids[2]))
	case spirv.OpGroupNonUniformBallot:
		text = cross.Call("WaveActiveBallot", arg(1))
	case spirv.OpGroupNonUniformInverseBallot:
		text = ballotBit(e.Operand(ids[1]), lane)
	case spirv.OpGroupNonUniformBallotBitExtract:
		text = ballotBit(e.Operand(ids[1]), e.Operand(ids[2]))
	case spirv.OpGroupNonUniformBallotBitCount:
		if g, _ := inst.GroupOperation(); g != spirv.GroupOperationReduce {
			unsupported(inst, "ballot bit count scans")
		}
		v := e.Operand(ids[1])
		text = fmt.Sprintf("countbits(%s.x) + countbits(%s.y) + countbits(%s.z) + countbits(%s.w)", v, v, v, v)
	case spirv.OpGroupNonUniformBallotFindLSB:
		v := e.Operand(ids[1])
		text = fmt.Sprintf("(%s.x != 0u ? firstbitlow(%s.x) : %s.y != 0u ? 32u + firstbitlow(%s.y) : %s.z != 0u ? 64u + firstbitlow(%s.z) : 96u + firstbitlow(%s.w))",
			v, v, v, v, v, v, v)
	case spirv.OpGroupNonUniformBallotFindMSB:
		v := e.Operand(ids[1])
		text = fmt.Sprintf("(%s.w != 0u ? 96u + firstbithigh(%s.w) : %s.z != 0u ? 64u + firstbithigh(%s.z) : %s.y != 0u ? 32u + firstbithigh(%s.y) : firstbithigh(%s.x))",
			v, v, v, v, v, v, v)
	case spirv.OpGroupNonUniformQuadBroadcast:
		text = cross.Call("QuadReadLaneAt", arg(1), arg(2))
	case spirv.OpGroupNonUniformQuadSwap:
		dir := m.MustConstant(ids[2]).U32()
		fns := [3]string{"QuadReadAcrossX", "QuadReadAcrossY", "QuadReadAcrossDiagonal"}
		if dir > 2 {
			unsupported(inst, "quad swap direction %d", dir)
		}
		text = cross.Call(fns[dir], arg(1))
	default:
		fns, ok := waveReductions[inst.Op]
		if !ok {
			unsupported(inst, "%s", inst.Op)
		}
		g, _ := inst.GroupOperation()
		switch g {
		case spirv.GroupOperationReduce:
			text = cross.Call(fns[0], arg(1))
		case spirv.GroupOperationExclusiveScan, spirv.GroupOperationInclusiveScan:
			if fns[1] == "" {
				unsupported(inst, "%s scans", inst.Op)
			}
			text = cross.Call(fns[1], arg(1))
			if g == spirv.GroupOperationInclusiveScan {
				text = text + " " + scanOps[inst.Op] + " " + e.Operand(ids[1])
			}
		default:
			unsupported(inst, "clustered %s", inst.Op)
		}
	}
	e.BindTemp(inst.Result, inst.ResultType, text)
}

// ballotBit tests bit index of a uint4 ballot.
func ballotBit(ballot, index string) string {
	i := cross.Enclose(index)
	return fmt.Sprintf("((%s[%s / 32u] >> (%s %% 32u)) & 1u) != 0u", ballot, i, i)
}
