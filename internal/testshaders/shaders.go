// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package testshaders

import (
	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/parser"
	"github.com/gogpu/spvcross/spirv"
)

// Fixture is a named test module.
type Fixture struct {
	Name  string
	Stage spirv.ExecutionModel
	Words []uint32
	// HLSL and MSL report whether the backend accepts the module with
	// default options.
	HLSL, MSL bool
}

// Module parses the fixture.
func (f Fixture) Module() *ir.Module {
	m, err := parser.Parse(f.Words)
	if err != nil {
		panic(f.Name + ": " + err.Error())
	}
	return m
}

// All returns every fixture in a fixed order.
func All() []Fixture {
	v, fr, cs := spirv.ExecutionModelVertex, spirv.ExecutionModelFragment, spirv.ExecutionModelGLCompute
	return []Fixture{
		{"vertex_passthrough", v, VertexPassthrough(), true, true},
		{"num_workgroups", cs, NumWorkgroups(), true, true},
		{"readonly_ssbo", fr, ReadonlySSBO(), true, true},
		{"argument_buffers", fr, ArgumentBuffers(), true, true},
		{"combined_sampler", fr, CombinedSampler(), true, true},
		{"loop_phi", fr, LoopPhi(), true, true},
		{"push_constants", fr, PushConstants(), true, true},
		{"matrix_input", v, MatrixInput(), true, true},
		{"subgroup", cs, Subgroup(), false, true},
		{"quad", fr, Quad(), false, true},
		{"sample_mask", fr, SampleMask(), true, true},
		{"array_copy_2", cs, ArrayCopy(2), true, true},
		{"switch_fallthrough", fr, SwitchFallthrough(), true, true},
		{"spec_constant", fr, SpecConstant(), true, true},
		{"tess_control", spirv.ExecutionModelTessellationControl, TessControl(), false, true},
		{"tess_eval", spirv.ExecutionModelTessellationEvaluation, TessEval(), false, true},
		{"structured_buffer", cs, StructuredBuffer(), true, true},
		{"row_major_ubo", v, RowMajorUBO(), true, true},
		{"storage_image", cs, StorageImage(), true, true},
		{"dynamic_offsets", cs, DynamicOffsets(), true, true},
		{"helper_invocation", fr, HelperInvocation(), false, false},
		{"draw_parameters", v, DrawParameters(), true, true},
		{"function_call", fr, FunctionCall(), true, true},
		{"texture_variants", fr, TextureVariants(), true, true},
		{"atomics", cs, Atomics(), true, true},
	}
}

// VertexPassthrough copies a vec4 input at location 0 to the position.
func VertexPassthrough() []uint32 {
	b := NewBuilder()
	in := b.Input(b.Vec4, 0, "v")
	pos := b.Builtin(spirv.StorageClassOutput, b.Vec4, spirv.BuiltInPosition, "gl_Position")
	b.Entry(spirv.ExecutionModelVertex, in, pos)
	x := b.AddLoad(b.Vec4, in)
	b.AddStore(pos, x)
	b.End()
	return b.Words()
}

// NumWorkgroups writes the x dispatch size to a storage buffer.
func NumWorkgroups() []uint32 {
	b := NewBuilder()
	nwg := b.Builtin(spirv.StorageClassInput, b.UVec3, spirv.BuiltInNumWorkgroups, "gl_NumWorkGroups")
	st := b.Block("Out", []Member{{Name: "data", Type: b.RuntimeArray(b.Uint, 4)}})
	out := b.Var(spirv.StorageClassStorageBuffer, st, "_out")
	b.Bind(out, 0, 0)
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute, nwg)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 8, 1, 1)
	v := b.AddLoad(b.UVec3, nwg)
	x := b.AddCompositeExtract(b.Uint, v, 0)
	p := b.AddAccessChain(b.Ptr(spirv.StorageClassStorageBuffer, b.Uint), out, b.I(0), b.U(0))
	b.AddStore(p, x)
	b.End()
	return b.Words()
}

// ReadonlySSBO reads a color from a NonWritable storage buffer at set 0,
// binding 1.
func ReadonlySSBO() []uint32 {
	b := NewBuilder()
	st := b.Block("Data", []Member{{Name: "color", Type: b.Vec4}})
	buf := b.Var(spirv.StorageClassStorageBuffer, st, "data")
	b.Bind(buf, 0, 1)
	b.AddDecorate(buf, spirv.DecorationNonWritable)
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, out)
	p := b.AddAccessChain(b.Ptr(spirv.StorageClassStorageBuffer, b.Vec4), buf, b.I(0))
	x := b.AddLoad(b.Vec4, p)
	b.AddStore(out, x)
	b.End()
	return b.Words()
}

// ArgumentBuffers samples textures from two descriptor sets. Set 1 leaves
// bindings 1 and 2 unused.
func ArgumentBuffers() []uint32 {
	b := NewBuilder()
	img := b.AddTypeImage(spirv.ImageDesc{SampledType: b.Float, Dim: spirv.Dim2D, Sampled: 1})
	sampler := b.AddTypeSampler()
	sampled := b.AddTypeSampledImage(img)

	params := b.Block("Params", []Member{{Name: "tint", Type: b.Vec4}})
	ubo := b.Var(spirv.StorageClassUniform, params, "params")
	b.Bind(ubo, 0, 0)
	tex := b.Var(spirv.StorageClassUniformConstant, img, "tex")
	b.Bind(tex, 0, 1)
	samp := b.Var(spirv.StorageClassUniformConstant, sampler, "samp")
	b.Bind(samp, 0, 2)

	extra := b.Block("Extra", []Member{{Name: "bias", Type: b.Vec4}})
	ssbo := b.Var(spirv.StorageClassStorageBuffer, extra, "extra")
	b.Bind(ssbo, 1, 0)
	b.AddDecorate(ssbo, spirv.DecorationNonWritable)
	tex2 := b.Var(spirv.StorageClassUniformConstant, img, "detail")
	b.Bind(tex2, 1, 3)

	uv := b.Input(b.Vec2, 0, "uv")
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, uv, out)
	coord := b.AddLoad(b.Vec2, uv)
	s := b.AddLoad(sampler, samp)
	si := b.AddOp(spirv.OpSampledImage, sampled, b.AddLoad(img, tex), s)
	c := b.AddOp(spirv.OpImageSampleImplicitLod, b.Vec4, si, coord)
	si2 := b.AddOp(spirv.OpSampledImage, sampled, b.AddLoad(img, tex2), s)
	c2 := b.AddOp(spirv.OpImageSampleImplicitLod, b.Vec4, si2, coord)
	tint := b.AddLoad(b.Vec4, b.AddAccessChain(b.Ptr(spirv.StorageClassUniform, b.Vec4), ubo, b.I(0)))
	bias := b.AddLoad(b.Vec4, b.AddAccessChain(b.Ptr(spirv.StorageClassStorageBuffer, b.Vec4), ssbo, b.I(0)))
	r := b.AddBinaryOp(spirv.OpFMul, b.Vec4, c, tint)
	r = b.AddBinaryOp(spirv.OpFAdd, b.Vec4, r, bias)
	r = b.AddBinaryOp(spirv.OpFAdd, b.Vec4, r, c2)
	b.AddStore(out, r)
	b.End()
	return b.Words()
}

// CombinedSampler samples a combined image-sampler at set 0, binding 0.
func CombinedSampler() []uint32 {
	b := NewBuilder()
	img := b.AddTypeImage(spirv.ImageDesc{SampledType: b.Float, Dim: spirv.Dim2D, Sampled: 1})
	sampled := b.AddTypeSampledImage(img)
	tex := b.Var(spirv.StorageClassUniformConstant, sampled, "ycbcr")
	b.Bind(tex, 0, 0)
	uv := b.Input(b.Vec2, 0, "uv")
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, uv, out)
	si := b.AddLoad(sampled, tex)
	c := b.AddOp(spirv.OpImageSampleImplicitLod, b.Vec4, si, b.AddLoad(b.Vec2, uv))
	b.AddStore(out, c)
	b.End()
	return b.Words()
}

// LoopPhi sums 1.0 four times through loop-carried phis.
func LoopPhi() []uint32 {
	b := NewBuilder()
	out := b.Output(b.Float, 0, "result")
	_, entry := b.Entry(spirv.ExecutionModelFragment, out)
	header, body, cont, merge := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	i, sum, iNext, sumNext := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	b.AddName(i, "i")
	b.AddName(sum, "sum")
	b.AddBranch(header)

	b.AddLabelID(header)
	b.AddPhiID(b.Int, i, spirv.PhiEdge{Value: b.I(0), Parent: entry}, spirv.PhiEdge{Value: iNext, Parent: cont})
	b.AddPhiID(b.Float, sum, spirv.PhiEdge{Value: b.F(0), Parent: entry}, spirv.PhiEdge{Value: sumNext, Parent: cont})
	cond := b.AddBinaryOp(spirv.OpSLessThan, b.Bool, i, b.I(4))
	b.AddLoopMerge(merge, cont, spirv.LoopControlNone)
	b.AddBranchConditional(cond, body, merge)

	b.AddLabelID(body)
	b.AddOpID(spirv.OpFAdd, b.Float, sumNext, sum, b.F(1))
	b.AddBranch(cont)

	b.AddLabelID(cont)
	b.AddOpID(spirv.OpIAdd, b.Int, iNext, i, b.I(1))
	b.AddBranch(header)

	b.AddLabelID(merge)
	b.AddStore(out, sum)
	b.End()
	return b.Words()
}

// PushConstants reads a push constant block of two vectors and a scale.
func PushConstants() []uint32 {
	b := NewBuilder()
	st := b.Block("Push", []Member{
		{Name: "a", Type: b.Vec4, Offset: 0},
		{Name: "b", Type: b.Vec4, Offset: 16},
		{Name: "scale", Type: b.Float, Offset: 32},
	})
	pc := b.Var(spirv.StorageClassPushConstant, st, "push")
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, out)
	vp := b.Ptr(spirv.StorageClassPushConstant, b.Vec4)
	a := b.AddLoad(b.Vec4, b.AddAccessChain(vp, pc, b.I(0)))
	c := b.AddLoad(b.Vec4, b.AddAccessChain(vp, pc, b.I(1)))
	s := b.AddLoad(b.Float, b.AddAccessChain(b.Ptr(spirv.StorageClassPushConstant, b.Float), pc, b.I(2)))
	r := b.AddBinaryOp(spirv.OpVectorTimesScalar, b.Vec4, b.AddBinaryOp(spirv.OpFAdd, b.Vec4, a, c), s)
	b.AddStore(out, r)
	b.End()
	return b.Words()
}

// MatrixInput transforms a position by a mat4 vertex input at location 0.
func MatrixInput() []uint32 {
	b := NewBuilder()
	mvp := b.Input(b.Mat4, 0, "mvp")
	pos := b.Input(b.Vec4, 4, "pos")
	out := b.Builtin(spirv.StorageClassOutput, b.Vec4, spirv.BuiltInPosition, "gl_Position")
	b.Entry(spirv.ExecutionModelVertex, mvp, pos, out)
	r := b.AddBinaryOp(spirv.OpMatrixTimesVector, b.Vec4, b.AddLoad(b.Mat4, mvp), b.AddLoad(b.Vec4, pos))
	b.AddStore(out, r)
	b.End()
	return b.Words()
}

// Subgroup reduces buffer values across the subgroup and stores the
// subgroup size.
func Subgroup() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityGroupNonUniform)
	b.AddCapability(spirv.CapabilityGroupNonUniformArithmetic)
	st := b.Block("Data", []Member{
		{Name: "size", Type: b.Uint, Offset: 0},
		{Name: "values", Type: b.RuntimeArray(b.Uint, 4), Offset: 4},
	})
	buf := b.Var(spirv.StorageClassStorageBuffer, st, "data")
	b.Bind(buf, 0, 0)
	gid := b.Builtin(spirv.StorageClassInput, b.UVec3, spirv.BuiltInGlobalInvocationID, "gl_GlobalInvocationID")
	size := b.Builtin(spirv.StorageClassInput, b.Uint, spirv.BuiltInSubgroupSize, "gl_SubgroupSize")
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute, gid, size)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 64, 1, 1)
	up := b.Ptr(spirv.StorageClassStorageBuffer, b.Uint)
	x := b.AddCompositeExtract(b.Uint, b.AddLoad(b.UVec3, gid), 0)
	p := b.AddAccessChain(up, buf, b.I(1), x)
	v := b.AddLoad(b.Uint, p)
	s := b.AddOp(spirv.OpGroupNonUniformIAdd, b.Uint, b.U(uint32(spirv.ScopeSubgroup)),
		uint32(spirv.GroupOperationReduce), v)
	b.AddStore(p, s)
	b.AddStore(b.AddAccessChain(up, buf, b.I(0)), b.AddLoad(b.Uint, size))
	b.End()
	return b.Words()
}

// Quad broadcasts a fragment input from the first lane of the quad.
func Quad() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityGroupNonUniform)
	b.AddCapability(spirv.CapabilityGroupNonUniformQuad)
	in := b.Input(b.Float, 0, "x")
	out := b.Output(b.Float, 0, "result")
	b.Entry(spirv.ExecutionModelFragment, in, out)
	v := b.AddOp(spirv.OpGroupNonUniformQuadBroadcast, b.Float, b.U(uint32(spirv.ScopeSubgroup)),
		b.AddLoad(b.Float, in), b.U(0))
	w := b.AddOp(spirv.OpGroupNonUniformQuadSwap, b.Float, b.U(uint32(spirv.ScopeSubgroup)), v, b.U(0))
	b.AddStore(out, w)
	b.End()
	return b.Words()
}

// SampleMask masks the incoming coverage with 1 and writes it back.
func SampleMask() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilitySampleRateShading)
	arr := b.Array(b.Int, 1, 0)
	in := b.Builtin(spirv.StorageClassInput, arr, spirv.BuiltInSampleMask, "gl_SampleMaskIn")
	out := b.Builtin(spirv.StorageClassOutput, arr, spirv.BuiltInSampleMask, "gl_SampleMask")
	b.Entry(spirv.ExecutionModelFragment, in, out)
	v := b.AddLoad(b.Int, b.AddAccessChain(b.Ptr(spirv.StorageClassInput, b.Int), in, b.I(0)))
	m := b.AddBinaryOp(spirv.OpBitwiseAnd, b.Int, v, b.I(1))
	b.AddStore(b.AddAccessChain(b.Ptr(spirv.StorageClassOutput, b.Int), out, b.I(0)), m)
	b.End()
	return b.Words()
}

// ArrayCopy copies a workgroup array nested depth times into a function
// local.
func ArrayCopy(depth int) []uint32 {
	b := NewBuilder()
	t := b.Float
	for range depth {
		t = b.Array(t, 2, 0)
	}
	shared := b.Var(spirv.StorageClassWorkgroup, t, "shared_data")
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 1, 1, 1)
	local := b.AddLocalVariable(b.Ptr(spirv.StorageClassFunction, t))
	b.AddName(local, "local_copy")
	b.AddStore(local, b.AddLoad(t, shared))
	b.End()
	return b.Words()
}

// SwitchFallthrough falls from case 0 into case 1.
func SwitchFallthrough() []uint32 {
	b := NewBuilder()
	sel := b.Input(b.Int, 0, "sel")
	b.AddDecorate(sel, spirv.DecorationFlat)
	out := b.Output(b.Float, 0, "result")
	b.Entry(spirv.ExecutionModelFragment, sel, out)
	c0, c1, def, merge := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	s := b.AddLoad(b.Int, sel)
	b.AddSelectionMerge(merge, spirv.SelectionControlNone)
	b.AddSwitch(s, def, spirv.SwitchCase{Value: 0, Target: c0}, spirv.SwitchCase{Value: 1, Target: c1})

	b.AddLabelID(c0)
	b.AddStore(out, b.F(1))
	b.AddBranch(c1)

	b.AddLabelID(c1)
	b.AddStore(out, b.F(2))
	b.AddBranch(merge)

	b.AddLabelID(def)
	b.AddStore(out, b.F(0))
	b.AddBranch(merge)

	b.AddLabelID(merge)
	b.End()
	return b.Words()
}

// SpecConstant scales a specialization constant with ID 3.
func SpecConstant() []uint32 {
	b := NewBuilder()
	spec := b.AddSpecConstant(b.Float, 0x40000000)
	b.AddName(spec, "scale")
	b.AddDecorate(spec, spirv.DecorationSpecID, 3)
	out := b.Output(b.Float, 0, "result")
	b.Entry(spirv.ExecutionModelFragment, out)
	b.AddStore(out, b.AddBinaryOp(spirv.OpFMul, b.Float, spec, b.F(0.5)))
	b.End()
	return b.Words()
}

func perVertexBlock(b *Builder) uint32 {
	st := b.AddTypeStruct(b.Vec4)
	b.AddName(st, "gl_PerVertex")
	b.AddMemberName(st, 0, "gl_Position")
	b.AddDecorate(st, spirv.DecorationBlock)
	b.AddMemberDecorate(st, 0, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
	return st
}

// TessControl passes positions and a color through a three-vertex patch and
// sets constant tessellation levels.
func TessControl() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityTessellation)
	pv := perVertexBlock(b)
	glIn := b.Var(spirv.StorageClassInput, b.Array(pv, 32, 0), "gl_in")
	glOut := b.Var(spirv.StorageClassOutput, b.Array(pv, 3, 0), "gl_out")
	inColor := b.Input(b.Array(b.Vec4, 32, 0), 0, "inColor")
	outColor := b.Output(b.Array(b.Vec4, 3, 0), 0, "vColor")
	invocation := b.Builtin(spirv.StorageClassInput, b.Int, spirv.BuiltInInvocationID, "gl_InvocationID")
	outer := b.Builtin(spirv.StorageClassOutput, b.Array(b.Float, 4, 0), spirv.BuiltInTessLevelOuter, "gl_TessLevelOuter")
	b.AddDecorate(outer, spirv.DecorationPatch)
	inner := b.Builtin(spirv.StorageClassOutput, b.Array(b.Float, 2, 0), spirv.BuiltInTessLevelInner, "gl_TessLevelInner")
	b.AddDecorate(inner, spirv.DecorationPatch)
	fn, _ := b.Entry(spirv.ExecutionModelTessellationControl, glIn, glOut, inColor, outColor, invocation, outer, inner)
	b.AddExecutionMode(fn, spirv.ExecutionModeOutputVertices, 3)
	b.AddExecutionMode(fn, spirv.ExecutionModeTriangles)

	id := b.AddLoad(b.Int, invocation)
	p := b.AddLoad(b.Vec4, b.AddAccessChain(b.Ptr(spirv.StorageClassInput, b.Vec4), glIn, id, b.I(0)))
	b.AddStore(b.AddAccessChain(b.Ptr(spirv.StorageClassOutput, b.Vec4), glOut, id, b.I(0)), p)
	c := b.AddLoad(b.Vec4, b.AddAccessChain(b.Ptr(spirv.StorageClassInput, b.Vec4), inColor, id))
	b.AddStore(b.AddAccessChain(b.Ptr(spirv.StorageClassOutput, b.Vec4), outColor, id), c)
	fp := b.Ptr(spirv.StorageClassOutput, b.Float)
	for k := range int32(3) {
		b.AddStore(b.AddAccessChain(fp, outer, b.I(k)), b.F(1))
	}
	b.AddStore(b.AddAccessChain(fp, inner, b.I(0)), b.F(1))
	b.End()
	return b.Words()
}

// TessEval interpolates control point positions by the tessellation
// coordinate.
func TessEval() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityTessellation)
	pv := perVertexBlock(b)
	glIn := b.Var(spirv.StorageClassInput, b.Array(pv, 32, 0), "gl_in")
	inColor := b.Input(b.Array(b.Vec4, 32, 0), 0, "vColor")
	coord := b.Builtin(spirv.StorageClassInput, b.Vec3, spirv.BuiltInTessCoord, "gl_TessCoord")
	pos := b.Builtin(spirv.StorageClassOutput, b.Vec4, spirv.BuiltInPosition, "gl_Position")
	color := b.Output(b.Vec4, 0, "color")
	fn, _ := b.Entry(spirv.ExecutionModelTessellationEvaluation, glIn, inColor, coord, pos, color)
	b.AddExecutionMode(fn, spirv.ExecutionModeTriangles)
	b.AddExecutionMode(fn, spirv.ExecutionModeSpacingEqual)
	b.AddExecutionMode(fn, spirv.ExecutionModeVertexOrderCcw)

	tc := b.AddLoad(b.Vec3, coord)
	vp := b.Ptr(spirv.StorageClassInput, b.Vec4)
	var acc uint32
	for k := range int32(3) {
		p := b.AddLoad(b.Vec4, b.AddAccessChain(vp, glIn, b.I(k), b.I(0)))
		w := b.AddCompositeExtract(b.Float, tc, uint32(k))
		term := b.AddBinaryOp(spirv.OpVectorTimesScalar, b.Vec4, p, w)
		if acc == 0 {
			acc = term
		} else {
			acc = b.AddBinaryOp(spirv.OpFAdd, b.Vec4, acc, term)
		}
	}
	b.AddStore(pos, acc)
	b.AddStore(color, b.AddLoad(b.Vec4, b.AddAccessChain(vp, inColor, b.I(0))))
	b.End()
	return b.Words()
}

// StructuredBuffer doubles particle positions from a read-only structured
// buffer into a writable one. Both buffers carry UserTypeGOOGLE.
func StructuredBuffer() []uint32 {
	b := NewBuilder()
	b.AddExtension("SPV_GOOGLE_hlsl_functionality1")
	b.AddExtension("SPV_GOOGLE_user_type")
	elem := b.AddTypeStruct(b.Vec4, b.Float)
	b.AddName(elem, "Particle")
	b.AddMemberName(elem, 0, "pos")
	b.AddMemberName(elem, 1, "w")
	b.AddMemberDecorate(elem, 0, spirv.DecorationOffset, 0)
	b.AddMemberDecorate(elem, 1, spirv.DecorationOffset, 16)
	rt := b.RuntimeArray(elem, 32)
	dstBlock := b.Block("Particles", []Member{{Name: "items", Type: rt}})
	srcBlock := b.Block("Sources", []Member{{Name: "items", Type: rt, NonWritable: true}})
	dst := b.Var(spirv.StorageClassStorageBuffer, dstBlock, "particles")
	b.Bind(dst, 0, 0)
	b.AddDecorateString(dst, spirv.DecorationUserTypeGOOGLE, "rwstructuredbuffer:<Particle>")
	src := b.Var(spirv.StorageClassStorageBuffer, srcBlock, "sources")
	b.Bind(src, 0, 1)
	b.AddDecorate(src, spirv.DecorationNonWritable)
	b.AddDecorateString(src, spirv.DecorationUserTypeGOOGLE, "structuredbuffer:<Particle>")
	gid := b.Builtin(spirv.StorageClassInput, b.UVec3, spirv.BuiltInGlobalInvocationID, "gl_GlobalInvocationID")
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute, gid)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 64, 1, 1)
	x := b.AddCompositeExtract(b.Uint, b.AddLoad(b.UVec3, gid), 0)
	vp := b.Ptr(spirv.StorageClassStorageBuffer, b.Vec4)
	p := b.AddLoad(b.Vec4, b.AddAccessChain(vp, src, b.I(0), x, b.I(0)))
	b.AddStore(b.AddAccessChain(vp, dst, b.I(0), x, b.I(0)), b.AddBinaryOp(spirv.OpVectorTimesScalar, b.Vec4, p, b.F(2)))
	b.End()
	return b.Words()
}

// RowMajorUBO transforms a position by a row-major uniform matrix.
func RowMajorUBO() []uint32 {
	b := NewBuilder()
	st := b.Block("Transforms", []Member{{Name: "mvp", Type: b.Mat4, MatrixStride: 16, RowMajor: true}})
	ubo := b.Var(spirv.StorageClassUniform, st, "transforms")
	b.Bind(ubo, 0, 0)
	in := b.Input(b.Vec4, 0, "pos")
	out := b.Builtin(spirv.StorageClassOutput, b.Vec4, spirv.BuiltInPosition, "gl_Position")
	b.Entry(spirv.ExecutionModelVertex, in, out)
	m := b.AddLoad(b.Mat4, b.AddAccessChain(b.Ptr(spirv.StorageClassUniform, b.Mat4), ubo, b.I(0)))
	b.AddStore(out, b.AddBinaryOp(spirv.OpMatrixTimesVector, b.Vec4, m, b.AddLoad(b.Vec4, in)))
	b.End()
	return b.Words()
}

// StorageImage copies texels from a NonWritable storage image into a
// writable one.
func StorageImage() []uint32 {
	b := NewBuilder()
	img := b.AddTypeImage(spirv.ImageDesc{SampledType: b.Float, Dim: spirv.Dim2D, Sampled: 2, Format: spirv.ImageFormatRgba8})
	src := b.Var(spirv.StorageClassUniformConstant, img, "src")
	b.Bind(src, 0, 0)
	b.AddDecorate(src, spirv.DecorationNonWritable)
	dst := b.Var(spirv.StorageClassUniformConstant, img, "dst")
	b.Bind(dst, 0, 1)
	b.AddDecorate(dst, spirv.DecorationNonReadable)
	gid := b.Builtin(spirv.StorageClassInput, b.UVec3, spirv.BuiltInGlobalInvocationID, "gl_GlobalInvocationID")
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute, gid)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 8, 8, 1)
	uvec2 := b.AddTypeVector(b.Uint, 2)
	xy := b.AddVectorShuffle(uvec2, b.AddLoad(b.UVec3, gid), b.AddLoad(b.UVec3, gid), []uint32{0, 1})
	coord := b.AddUnaryOp(spirv.OpBitcast, b.IVec2, xy)
	texel := b.AddOp(spirv.OpImageRead, b.Vec4, b.AddLoad(img, src), coord)
	b.AddStatement(spirv.OpImageWrite, b.AddLoad(img, dst), coord, texel)
	b.End()
	return b.Words()
}

// DynamicOffsets scales storage buffer entries by a uniform.
func DynamicOffsets() []uint32 {
	b := NewBuilder()
	data := b.Block("Data", []Member{{Name: "v", Type: b.RuntimeArray(b.Vec4, 16)}})
	buf := b.Var(spirv.StorageClassStorageBuffer, data, "data")
	b.Bind(buf, 0, 0)
	params := b.Block("Params", []Member{{Name: "scale", Type: b.Vec4}})
	ubo := b.Var(spirv.StorageClassUniform, params, "params")
	b.Bind(ubo, 0, 1)
	gid := b.Builtin(spirv.StorageClassInput, b.UVec3, spirv.BuiltInGlobalInvocationID, "gl_GlobalInvocationID")
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute, gid)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 64, 1, 1)
	x := b.AddCompositeExtract(b.Uint, b.AddLoad(b.UVec3, gid), 0)
	p := b.AddAccessChain(b.Ptr(spirv.StorageClassStorageBuffer, b.Vec4), buf, b.I(0), x)
	s := b.AddLoad(b.Vec4, b.AddAccessChain(b.Ptr(spirv.StorageClassUniform, b.Vec4), ubo, b.I(0)))
	b.AddStore(p, b.AddBinaryOp(spirv.OpFMul, b.Vec4, b.AddLoad(b.Vec4, p), s))
	b.End()
	return b.Words()
}

// HelperInvocation discards helper lanes and writes 1.0 otherwise.
func HelperInvocation() []uint32 {
	b := NewBuilder()
	helper := b.Builtin(spirv.StorageClassInput, b.Bool, spirv.BuiltInHelperInvocation, "gl_HelperInvocation")
	out := b.Output(b.Float, 0, "result")
	b.Entry(spirv.ExecutionModelFragment, helper, out)
	kill, merge := b.AllocID(), b.AllocID()
	h := b.AddLoad(b.Bool, helper)
	b.AddSelectionMerge(merge, spirv.SelectionControlNone)
	b.AddBranchConditional(h, kill, merge)
	b.AddLabelID(kill)
	b.AddKill()
	b.AddLabelID(merge)
	b.AddStore(out, b.F(1))
	b.End()
	return b.Words()
}

// DrawParameters encodes the vertex and instance index in the position.
func DrawParameters() []uint32 {
	b := NewBuilder()
	vi := b.Builtin(spirv.StorageClassInput, b.Int, spirv.BuiltInVertexIndex, "gl_VertexIndex")
	ii := b.Builtin(spirv.StorageClassInput, b.Int, spirv.BuiltInInstanceIndex, "gl_InstanceIndex")
	pos := b.Builtin(spirv.StorageClassOutput, b.Vec4, spirv.BuiltInPosition, "gl_Position")
	b.Entry(spirv.ExecutionModelVertex, vi, ii, pos)
	x := b.AddUnaryOp(spirv.OpConvertSToF, b.Float, b.AddLoad(b.Int, vi))
	y := b.AddUnaryOp(spirv.OpConvertSToF, b.Float, b.AddLoad(b.Int, ii))
	b.AddStore(pos, b.AddCompositeConstruct(b.Vec4, x, y, b.F(0), b.F(1)))
	b.End()
	return b.Words()
}

// FunctionCall shades through a helper function that reads a uniform
// buffer.
func FunctionCall() []uint32 {
	b := NewBuilder()
	params := b.Block("Material", []Member{{Name: "albedo", Type: b.Vec4}})
	ubo := b.Var(spirv.StorageClassUniform, params, "material")
	b.Bind(ubo, 0, 0)
	in := b.Input(b.Vec4, 0, "light")
	out := b.Output(b.Vec4, 0, "FragColor")
	fnType := b.AddTypeFunction(b.Vec4, b.Vec4)

	shade := b.AddFunction(fnType, b.Vec4, spirv.FunctionControlNone)
	b.AddName(shade, "shade")
	l := b.AddFunctionParameter(b.Vec4)
	b.AddName(l, "l")
	b.AddLabel()
	a := b.AddLoad(b.Vec4, b.AddAccessChain(b.Ptr(spirv.StorageClassUniform, b.Vec4), ubo, b.I(0)))
	n := b.AddExtInst(b.Vec4, b.GLSL, uint32(spirv.GLSLNormalize), l)
	b.AddReturnValue(b.AddBinaryOp(spirv.OpFMul, b.Vec4, a, n))
	b.AddFunctionEnd()

	b.Entry(spirv.ExecutionModelFragment, in, out)
	c := b.AddFunctionCall(b.Vec4, shade, b.AddLoad(b.Vec4, in))
	b.AddStore(out, c)
	b.End()
	return b.Words()
}

// TextureVariants exercises explicit LOD, depth comparison, fetch and size
// queries.
func TextureVariants() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityImageQuery)
	img := b.AddTypeImage(spirv.ImageDesc{SampledType: b.Float, Dim: spirv.Dim2D, Sampled: 1})
	depth := b.AddTypeImage(spirv.ImageDesc{SampledType: b.Float, Dim: spirv.Dim2D, Depth: 1, Sampled: 1})
	sampled := b.AddTypeSampledImage(img)
	shadowSampled := b.AddTypeSampledImage(depth)
	tex := b.Var(spirv.StorageClassUniformConstant, sampled, "tex")
	b.Bind(tex, 0, 0)
	shadow := b.Var(spirv.StorageClassUniformConstant, shadowSampled, "shadow")
	b.Bind(shadow, 0, 1)
	uv := b.Input(b.Vec2, 0, "uv")
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, uv, out)
	coord := b.AddLoad(b.Vec2, uv)
	si := b.AddLoad(sampled, tex)
	lod := b.AddOp(spirv.OpImageSampleExplicitLod, b.Vec4, si, coord, uint32(spirv.ImageOperandsLod), b.F(0))
	cmp := b.AddOp(spirv.OpImageSampleDrefImplicitLod, b.Float, b.AddLoad(shadowSampled, shadow), coord, b.F(0.5))
	image := b.AddOp(spirv.OpImage, img, si)
	size := b.AddOp(spirv.OpImageQuerySizeLod, b.IVec2, image, b.I(0))
	fetched := b.AddOp(spirv.OpImageFetch, b.Vec4, image, size, uint32(spirv.ImageOperandsLod), b.I(0))
	r := b.AddBinaryOp(spirv.OpVectorTimesScalar, b.Vec4, b.AddBinaryOp(spirv.OpFAdd, b.Vec4, lod, fetched), cmp)
	b.AddStore(out, r)
	b.End()
	return b.Words()
}

// Atomics counts invocations in a storage buffer and a workgroup counter.
func Atomics() []uint32 {
	b := NewBuilder()
	st := b.Block("Counter", []Member{{Name: "count", Type: b.Uint}})
	buf := b.Var(spirv.StorageClassStorageBuffer, st, "counter")
	b.Bind(buf, 0, 0)
	shared := b.Var(spirv.StorageClassWorkgroup, b.Uint, "local_count")
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 32, 1, 1)
	device, relaxed := b.U(uint32(spirv.ScopeDevice)), b.U(0)
	old := b.AddOp(spirv.OpAtomicIAdd, b.Uint, shared, b.U(uint32(spirv.ScopeWorkgroup)), relaxed, b.U(1))
	b.AddStatement(spirv.OpControlBarrier, b.U(uint32(spirv.ScopeWorkgroup)), b.U(uint32(spirv.ScopeWorkgroup)),
		b.U(uint32(spirv.MemorySemanticsWorkgroupMemory|spirv.MemorySemanticsAcquireRelease)))
	p := b.AddAccessChain(b.Ptr(spirv.StorageClassStorageBuffer, b.Uint), buf, b.I(0))
	b.AddOp(spirv.OpAtomicIAdd, b.Uint, p, device, relaxed, old)
	b.End()
	return b.Words()
}
