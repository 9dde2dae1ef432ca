// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package testshaders

import "github.com/gogpu/spvcross/spirv"

// The modules below exercise target options and stay out of All.

// CubeArray samples and gathers a cube map array and scales the result by
// its layer count.
func CubeArray() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityImageQuery)
	ivec3 := b.AddTypeVector(b.Int, 3)
	img := b.AddTypeImage(spirv.ImageDesc{SampledType: b.Float, Dim: spirv.DimCube, Arrayed: true, Sampled: 1})
	sampled := b.AddTypeSampledImage(img)
	tex := b.Var(spirv.StorageClassUniformConstant, sampled, "sky")
	b.Bind(tex, 0, 0)
	dir := b.Input(b.Vec4, 0, "dir")
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, dir, out)
	si := b.AddLoad(sampled, tex)
	coord := b.AddLoad(b.Vec4, dir)
	c := b.AddOp(spirv.OpImageSampleImplicitLod, b.Vec4, si, coord)
	g := b.AddOp(spirv.OpImageGather, b.Vec4, si, coord, b.I(1))
	size := b.AddOp(spirv.OpImageQuerySizeLod, ivec3, b.AddOp(spirv.OpImage, img, si), b.I(0))
	layers := b.AddUnaryOp(spirv.OpConvertSToF, b.Float, b.AddCompositeExtract(b.Int, size, 2))
	r := b.AddBinaryOp(spirv.OpVectorTimesScalar, b.Vec4, b.AddBinaryOp(spirv.OpFAdd, b.Vec4, c, g), layers)
	b.AddStore(out, r)
	b.End()
	return b.Words()
}

// MultiviewVertex encodes the view and instance index in the position.
func MultiviewVertex() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityMultiView)
	view := b.Builtin(spirv.StorageClassInput, b.Uint, spirv.BuiltInViewIndex, "gl_ViewIndex")
	inst := b.Builtin(spirv.StorageClassInput, b.Int, spirv.BuiltInInstanceIndex, "gl_InstanceIndex")
	pos := b.Builtin(spirv.StorageClassOutput, b.Vec4, spirv.BuiltInPosition, "gl_Position")
	b.Entry(spirv.ExecutionModelVertex, view, inst, pos)
	x := b.AddUnaryOp(spirv.OpConvertUToF, b.Float, b.AddLoad(b.Uint, view))
	y := b.AddUnaryOp(spirv.OpConvertSToF, b.Float, b.AddLoad(b.Int, inst))
	b.AddStore(pos, b.AddCompositeConstruct(b.Vec4, x, y, b.F(0), b.F(1)))
	b.End()
	return b.Words()
}

// ViewIndexFragment writes the view index as the red channel.
func ViewIndexFragment() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityMultiView)
	view := b.Builtin(spirv.StorageClassInput, b.Uint, spirv.BuiltInViewIndex, "gl_ViewIndex")
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, view, out)
	x := b.AddUnaryOp(spirv.OpConvertUToF, b.Float, b.AddLoad(b.Uint, view))
	b.AddStore(out, b.AddCompositeConstruct(b.Vec4, x, b.F(0), b.F(0), b.F(1)))
	b.End()
	return b.Words()
}

// DispatchIDs stores the y workgroup ID at the x global invocation ID.
func DispatchIDs() []uint32 {
	b := NewBuilder()
	gid := b.Builtin(spirv.StorageClassInput, b.UVec3, spirv.BuiltInGlobalInvocationID, "gl_GlobalInvocationID")
	wg := b.Builtin(spirv.StorageClassInput, b.UVec3, spirv.BuiltInWorkgroupID, "gl_WorkGroupID")
	st := b.Block("Out", []Member{{Name: "data", Type: b.RuntimeArray(b.Uint, 4)}})
	out := b.Var(spirv.StorageClassStorageBuffer, st, "_out")
	b.Bind(out, 0, 0)
	fn, _ := b.Entry(spirv.ExecutionModelGLCompute, gid, wg)
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 8, 4, 1)
	x := b.AddCompositeExtract(b.Uint, b.AddLoad(b.UVec3, gid), 0)
	y := b.AddCompositeExtract(b.Uint, b.AddLoad(b.UVec3, wg), 1)
	b.AddStore(b.AddAccessChain(b.Ptr(spirv.StorageClassStorageBuffer, b.Uint), out, b.I(0), x), y)
	b.End()
	return b.Words()
}

// SubpassInput reads input attachment 0 at the fragment's pixel.
func SubpassInput() []uint32 {
	b := NewBuilder()
	b.AddCapability(spirv.CapabilityInputAttachment)
	img := b.AddTypeImage(spirv.ImageDesc{SampledType: b.Float, Dim: spirv.DimSubpassData, Sampled: 2})
	attachment := b.Var(spirv.StorageClassUniformConstant, img, "albedo")
	b.Bind(attachment, 0, 0)
	b.AddDecorate(attachment, spirv.DecorationInputAttachmentIndex, 0)
	out := b.Output(b.Vec4, 0, "FragColor")
	b.Entry(spirv.ExecutionModelFragment, out)
	origin := b.AddConstantComposite(b.IVec2, b.I(0), b.I(0))
	b.AddStore(out, b.AddOp(spirv.OpImageRead, b.Vec4, b.AddLoad(img, attachment), origin))
	b.End()
	return b.Words()
}
